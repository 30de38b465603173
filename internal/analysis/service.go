// Package analysis runs the pipeline: validate, parse, infer phenotypes and
// classify drug risk.
package analysis

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/report"
	"github.com/inodb/vibe-pgx/internal/risk"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

// Store persists assessments across runs, keyed by request fingerprint.
type Store interface {
	LookupAssessments(key string) ([]risk.Assessment, bool, error)
	WriteAssessments(key string, as []risk.Assessment) error
	Prune(maxRows int) (int64, error)
}

// Config controls a Service.
type Config struct {
	FailOn            vcf.Severity // lowest finding severity that rejects the input
	FilterChromosomes bool         // keep only chromosomes of the requested genes
	CacheSize         int          // parse cache entries, 0 disables
	StoreMaxRows      int          // store bound applied after writes, 0 disables
	Workers           int          // AnalyzeBatch parallelism, 0 means NumCPU
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		FailOn:            vcf.SeverityCritical,
		FilterChromosomes: true,
		CacheSize:         100,
		StoreMaxRows:      10000,
	}
}

// Request is one analysis input.
type Request struct {
	Content string   // VCF text
	Drugs   []string // requested drugs, in output order
	Genes   []string // extra genes for the relevance filter, added to the drugs' genes
	Source  string   // file name, for reports
}

// Result is the outcome of one analysis.
type Result struct {
	Fingerprint string
	Source      string
	Validation  *vcf.ValidationReport
	Parsed      *vcf.ParseResult
	Assessments []risk.Assessment
	// Warnings holds skipped-line findings from the parse and one
	// finding per unsupported drug.
	Warnings    []vcf.ValidationError
	ParseCached bool
	StoreCached bool
}

// Report builds the report document for this result. An empty
// meta.VCFFile defaults to the request source.
func (r *Result) Report(meta report.Meta) *report.PGxAnalysisResult {
	if meta.VCFFile == "" {
		meta.VCFFile = r.Source
	}
	return report.Build(report.Input{Parsed: r.Parsed, Assessments: r.Assessments}, meta)
}

// Service orchestrates analyses. It is safe for concurrent use.
type Service struct {
	cfg      Config
	analyzer *risk.Analyzer
	cache    *ParseCache
	store    Store
	storeMu  sync.Mutex
	logger   *zap.Logger
}

// NewService creates a service. A parse cache is created when
// cfg.CacheSize is positive.
func NewService(cfg Config) (*Service, error) {
	s := &Service{
		cfg:      cfg,
		analyzer: risk.NewAnalyzer(),
		logger:   zap.NewNop(),
	}
	if cfg.CacheSize > 0 {
		c, err := NewParseCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// SetLogger sets the logger for the service and its analyzer.
func (s *Service) SetLogger(l *zap.Logger) {
	s.logger = l
	s.analyzer.SetLogger(l)
}

// SetCache replaces the parse cache; nil disables caching.
func (s *Service) SetCache(c *ParseCache) {
	s.cache = c
}

// Cache returns the parse cache, or nil.
func (s *Service) Cache() *ParseCache {
	return s.cache
}

// SetStore attaches an assessment store; nil detaches it.
func (s *Service) SetStore(st Store) {
	s.store = st
}

// Analyze validates, parses and classifies one request. Inputs with
// findings at or above cfg.FailOn are rejected with a *vcf.VCFError
// carrying every finding. Cancellation before completion returns ctx's
// error and no result.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	validation := vcf.Validate(req.Content)
	if err := validation.Err(s.cfg.FailOn); err != nil {
		s.logger.Warn("vcf rejected",
			zap.String("source", req.Source),
			zap.Int("findings", len(validation.Errors)))
		return nil, err
	}

	opts := s.parseOptions(req)
	fingerprint := Fingerprint(req.Content, opts)
	parsed, parseCached := s.parse(req, opts, fingerprint)

	storeKey := fingerprint + "|" + drugsKey(req.Drugs)
	assessments, storeCached := s.lookup(storeKey)
	if !storeCached {
		var err error
		assessments, err = s.analyzer.Analyze(ctx, parsed, req.Drugs)
		if err != nil {
			return nil, err
		}
		s.write(storeKey, assessments)
	}

	warnings := append([]vcf.ValidationError{}, parsed.Warnings...)
	for _, a := range assessments {
		if !a.Supported() {
			warnings = append(warnings, vcf.UnsupportedDrug(a.Drug))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{
		Fingerprint: fingerprint,
		Source:      req.Source,
		Validation:  validation,
		Parsed:      parsed,
		Assessments: assessments,
		Warnings:    warnings,
		ParseCached: parseCached,
		StoreCached: storeCached,
	}, nil
}

// parseOptions derives the relevance filter from the gene panel. The
// requested drugs' genes are always part of the panel.
func (s *Service) parseOptions(req Request) vcf.Options {
	if !s.cfg.FilterChromosomes {
		return vcf.Options{}
	}
	genes := append([]string{}, req.Genes...)
	for _, d := range req.Drugs {
		if g, ok := risk.GeneForDrug(d); ok {
			genes = append(genes, g)
		}
	}
	return vcf.KeepChromosomes(pharmacogene.ChromosomesFor(genes...)...)
}

func (s *Service) parse(req Request, opts vcf.Options, fingerprint string) (*vcf.ParseResult, bool) {
	if s.cache != nil {
		if parsed, ok := s.cache.Get(fingerprint); ok {
			s.logger.Debug("parse cache hit", zap.String("fingerprint", fingerprint))
			return parsed, true
		}
	}

	parsed := vcf.Parse(req.Content, opts)
	for _, w := range parsed.Warnings {
		s.logger.Warn("skipped malformed vcf record",
			zap.String("source", req.Source),
			zap.Int("line", w.Line))
	}
	if s.cache != nil {
		s.cache.Add(fingerprint, parsed)
	}
	return parsed, false
}

func (s *Service) lookup(key string) ([]risk.Assessment, bool) {
	if s.store == nil {
		return nil, false
	}
	as, ok, err := s.store.LookupAssessments(key)
	if err != nil {
		s.logger.Warn("assessment store lookup failed", zap.String("fingerprint", key), zap.Error(err))
		return nil, false
	}
	if ok {
		s.logger.Debug("assessment store hit", zap.String("fingerprint", key))
	}
	return as, ok
}

func (s *Service) write(key string, as []risk.Assessment) {
	if s.store == nil {
		return
	}
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	if err := s.store.WriteAssessments(key, as); err != nil {
		s.logger.Warn("assessment store write failed", zap.String("fingerprint", key), zap.Error(err))
		return
	}
	if s.cfg.StoreMaxRows > 0 {
		if n, err := s.store.Prune(s.cfg.StoreMaxRows); err != nil {
			s.logger.Warn("assessment store prune failed", zap.Error(err))
		} else if n > 0 {
			s.logger.Debug("pruned assessment store", zap.Int64("rows", n))
		}
	}
}

func drugsKey(drugs []string) string {
	trimmed := make([]string, len(drugs))
	for i, d := range drugs {
		trimmed[i] = strings.TrimSpace(d)
	}
	return strings.Join(trimmed, ",")
}
