package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/analysis"
	"github.com/inodb/vibe-pgx/internal/duckdb"
	"github.com/inodb/vibe-pgx/internal/output"
	"github.com/inodb/vibe-pgx/internal/report"
	"github.com/inodb/vibe-pgx/internal/risk"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

type analyzeOptions struct {
	drugs      []string
	genes      []string
	format     string
	outputFile string
	patientID  string
	cacheDB    string
	strict     bool
	noFilter   bool
	quiet      bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [flags] <input.vcf>...",
		Short: "Assess drug risk for one or more VCF files",
		Long: `Validate and parse each VCF, infer metabolizer phenotypes and classify
the risk of every requested drug. Use '-' to read from stdin.

Tab output lists one row per drug; json and yaml write the full report.`,
		Example: `  vibe-pgx analyze --drugs CODEINE patient.vcf
  vibe-pgx analyze --drugs CODEINE,WARFARIN -f json -o report.json patient.vcf.gz
  vibe-pgx analyze --drugs CLOPIDOGREL --strict a.vcf b.vcf
  cat patient.vcf | vibe-pgx analyze --drugs SIMVASTATIN -`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&opts.drugs, "drugs", "d", nil, "Drugs to assess, comma separated (see 'vibe-pgx drugs')")
	f.StringSliceVar(&opts.genes, "genes", nil, "Extra genes for the chromosome pre-filter; the requested drugs' genes are always kept")
	f.StringVarP(&opts.format, "format", "f", "tab", "Output format: tab, json, yaml")
	f.StringVarP(&opts.outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&opts.patientID, "patient-id", "", "Patient ID for the report (default: report.patient_id)")
	f.StringVar(&opts.cacheDB, "cache-db", "", "DuckDB assessment cache (default: cache.db)")
	f.BoolVar(&opts.strict, "strict", false, "Reject inputs with error findings, not only critical ones")
	f.BoolVar(&opts.noFilter, "no-filter", false, "Keep records on every chromosome")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print warnings")

	return cmd
}

func runAnalyze(cmd *cobra.Command, paths []string, opts analyzeOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return usageError{err}
	}
	drugs := cleanList(opts.drugs)
	if len(drugs) == 0 {
		return usagef("--drugs is required (see 'vibe-pgx drugs')")
	}

	cfg, err := serviceConfig(settings)
	if err != nil {
		return err
	}
	if opts.strict {
		cfg.FailOn = vcf.SeverityError
	}
	if opts.noFilter {
		cfg.FilterChromosomes = false
	}

	svc, err := analysis.NewService(cfg)
	if err != nil {
		return err
	}
	svc.SetLogger(logger)

	dbPath := opts.cacheDB
	if dbPath == "" {
		dbPath = settings.Cache.DB
	}
	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening assessment cache: %w", err)
		}
		defer store.Close()
		svc.SetStore(store)
	}

	reqs := make([]analysis.Request, len(paths))
	for i, path := range paths {
		content, err := vcf.ReadFile(path)
		if err != nil {
			return err
		}
		reqs[i] = analysis.Request{
			Content: content,
			Drugs:   drugs,
			Genes:   cleanList(opts.genes),
			Source:  sourceName(path),
		}
	}

	results, err := svc.AnalyzeBatch(cmd.Context(), reqs)
	if err != nil {
		return err
	}

	var (
		firstErr error
		ok       []*analysis.Result
	)
	stderr := cmd.ErrOrStderr()
	for _, r := range results {
		if r.Err != nil {
			logger.Error("analysis failed", zap.String("source", reqs[r.Seq].Source), zap.Error(r.Err))
			if len(results) > 1 {
				fmt.Fprintf(stderr, "%s: %v\n", reqs[r.Seq].Source, r.Err)
			}
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		if !opts.quiet {
			for _, msg := range vcf.FormatMessages(r.Result.Warnings) {
				fmt.Fprintf(stderr, "%s: %s\n", r.Result.Source, msg)
			}
			if isUnsupported(r.Result.Assessments) {
				fmt.Fprintln(stderr, "Hint: run 'vibe-pgx drugs' to list supported drugs")
			}
		}
		ok = append(ok, r.Result)
	}

	if len(ok) > 0 {
		if err := writeResults(cmd, ok, format, opts); err != nil {
			return err
		}
	}

	if firstErr != nil && len(results) > 1 {
		return fmt.Errorf("%d of %d inputs failed: %w", len(results)-len(ok), len(results), firstErr)
	}
	return firstErr
}

func writeResults(cmd *cobra.Command, results []*analysis.Result, format output.Format, opts analyzeOptions) error {
	out, closeOut, err := openOutput(cmd, opts.outputFile)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatTab:
		for _, r := range results {
			if len(results) > 1 {
				if _, err := fmt.Fprintf(out, "## %s\n", r.Source); err != nil {
					closeOut()
					return err
				}
			}
			if err := output.WriteAssessments(out, r.Assessments, format); err != nil {
				closeOut()
				return err
			}
		}
	default:
		patientID := opts.patientID
		if patientID == "" {
			patientID = settings.Report.PatientID
		}
		docs := make([]*report.PGxAnalysisResult, len(results))
		for i, r := range results {
			docs[i] = r.Report(report.Meta{PatientID: patientID})
			if problems := report.Validate(docs[i]); len(problems) > 0 {
				logger.Warn("report failed schema checks", zap.String("source", r.Source), zap.Strings("problems", problems))
			}
		}
		if err := output.WriteReports(out, docs, format); err != nil {
			closeOut()
			return err
		}
	}

	return closeOut()
}

// cleanList drops blanks and surrounding spaces from a flag list.
func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// isUnsupported reports whether any requested drug had no gene mapping.
func isUnsupported(as []risk.Assessment) bool {
	for _, a := range as {
		if !a.Supported() {
			return true
		}
	}
	return false
}
