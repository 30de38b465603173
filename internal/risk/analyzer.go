package risk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

// EvidenceSource names a knowledge source backing an assessment.
type EvidenceSource string

// Evidence sources.
const (
	SourceCPIC     EvidenceSource = "cpic"
	SourcePharmGKB EvidenceSource = "pharmgkb"
	SourceFDA      EvidenceSource = "fda"
)

// Assessment is the risk assessment for one requested drug.
type Assessment struct {
	Drug                   string                 `json:"drug" yaml:"drug"`
	Gene                   string                 `json:"gene" yaml:"gene"`
	Phenotype              pharmacogene.Phenotype `json:"phenotype" yaml:"phenotype"`
	Diplotype              string                 `json:"diplotype" yaml:"diplotype"`
	Level                  Level                  `json:"risk_level" yaml:"risk_level"`
	Scores                 `yaml:",inline"`
	ClinicalNote           string                 `json:"clinical_note" yaml:"clinical_note"`
	Recommendation         string                 `json:"recommendation" yaml:"recommendation"`
	GuidelineURL           string                 `json:"guideline_url,omitempty" yaml:"guideline_url,omitempty"`
	EvidenceSources        []EvidenceSource       `json:"evidence_sources" yaml:"evidence_sources"`
	AlternativeOptions     []string               `json:"alternative_options" yaml:"alternative_options"`
	MonitoringRequirements []string               `json:"monitoring_requirements" yaml:"monitoring_requirements"`
	MatchedMarkers         []string               `json:"matched_markers" yaml:"matched_markers"`
}

// Supported reports whether the drug had a gene mapping.
func (a Assessment) Supported() bool {
	return a.Gene != pharmacogene.UnknownGene
}

// Analyzer turns parsed variants and a drug list into assessments.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer that logs nowhere.
func NewAnalyzer() *Analyzer {
	return &Analyzer{logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and debug messages.
func (a *Analyzer) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Analyze returns one assessment per requested drug, in request order.
// Unsupported drugs produce Unknown assessments rather than errors. The
// only error is ctx's, in which case no assessments are returned.
func (a *Analyzer) Analyze(ctx context.Context, parsed *vcf.ParseResult, drugs []string) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var variants []*vcf.Variant
	wellFormed := 1.0
	if parsed != nil {
		variants = parsed.Variants
		wellFormed = parsed.WellFormedRatio()
	}

	inferred := make(map[string]pharmacogene.Inference)
	out := make([]Assessment, 0, len(drugs))
	for _, drug := range drugs {
		out = append(out, a.assess(drug, variants, wellFormed, inferred))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Analyzer) assess(drug string, variants []*vcf.Variant, wellFormed float64, inferred map[string]pharmacogene.Inference) Assessment {
	drug = strings.TrimSpace(drug)
	profile, ok := drugs[normalizeDrug(drug)]
	if !ok {
		a.logger.Warn("unsupported drug", zap.String("drug", drug))
		return unsupportedAssessment(drug)
	}

	inf, ok := inferred[profile.gene]
	if !ok {
		inf = pharmacogene.Infer(profile.gene, variants)
		inferred[profile.gene] = inf
	}

	c := Classify(drug, profile.gene, inf.Phenotype)
	entry, hasGuideline := guideline.Lookup(profile.gene, drug)

	markers := 0
	if def, ok := pharmacogene.Lookup(profile.gene); ok {
		markers = len(def.Markers)
	}

	sources := []EvidenceSource{}
	if hasGuideline {
		sources = append(sources, SourceCPIC)
	}
	sources = append(sources, SourcePharmGKB, SourceFDA)

	alternatives := []string{}
	if c.Level != Safe {
		alternatives = append(alternatives, profile.alternatives...)
	}

	as := Assessment{
		Drug:      drug,
		Gene:      profile.gene,
		Phenotype: inf.Phenotype,
		Diplotype: inf.Diplotype,
		Level:     c.Level,
		Scores: computeScores(scoreInput{
			phenotype:         inf.Phenotype,
			level:             c.Level,
			hits:              inf.Hits.Total(),
			markers:           markers,
			hasGuideline:      hasGuideline,
			phenotypeSpecific: guideline.PhenotypeSpecific(drug, profile.gene, inf.Phenotype),
			wellFormed:        wellFormed,
		}),
		ClinicalNote:           c.Note,
		Recommendation:         guideline.Recommendation(drug, profile.gene, inf.Phenotype),
		GuidelineURL:           entry.URL,
		EvidenceSources:        sources,
		AlternativeOptions:     alternatives,
		MonitoringRequirements: append([]string{}, profile.monitoring...),
		MatchedMarkers:         append([]string{}, inf.Hits.Markers...),
	}

	a.logger.Debug("assessed drug",
		zap.String("drug", drug),
		zap.String("gene", as.Gene),
		zap.String("phenotype", string(as.Phenotype)),
		zap.String("risk", string(as.Level)))
	return as
}

func unsupportedAssessment(drug string) Assessment {
	return Assessment{
		Drug:                   drug,
		Gene:                   pharmacogene.UnknownGene,
		Phenotype:              pharmacogene.NormalMetabolizer,
		Diplotype:              pharmacogene.UnknownDiplotype,
		Level:                  Unknown,
		Scores:                 unknownScores(),
		ClinicalNote:           unsupportedNote,
		Recommendation:         guideline.Recommendation(drug, pharmacogene.UnknownGene, pharmacogene.NormalMetabolizer),
		EvidenceSources:        []EvidenceSource{},
		AlternativeOptions:     []string{},
		MonitoringRequirements: []string{},
		MatchedMarkers:         []string{},
	}
}
