// Package report builds the PGxAnalysisResult document from an analysis.
//
// Ratios in the document (confidence, annotation_rate, data_completeness)
// are fractions in [0,1]; assessments carry 0-100 scores and are
// converted here.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/risk"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

// PGxAnalysisResult is the top-level report document.
type PGxAnalysisResult struct {
	AnalysisID             string          `json:"analysis_id" yaml:"analysis_id"`
	Timestamp              string          `json:"timestamp" yaml:"timestamp"`
	PatientID              string          `json:"patient_id" yaml:"patient_id"`
	VCFFile                string          `json:"vcf_file" yaml:"vcf_file"`
	VCFVersion             string          `json:"vcf_version" yaml:"vcf_version"`
	VariantsAnalyzed       int             `json:"variants_analyzed" yaml:"variants_analyzed"`
	PharmacogenomicResults []DrugResult    `json:"pharmacogenomic_results" yaml:"pharmacogenomic_results"`
	QualityMetrics         QualityMetrics  `json:"quality_metrics" yaml:"quality_metrics"`
	VariantDetails         []VariantDetail `json:"variant_details,omitempty" yaml:"variant_details,omitempty"`
}

// DrugResult is one drug's entry in the report.
type DrugResult struct {
	Drug               string   `json:"drug" yaml:"drug"`
	Gene               string   `json:"gene" yaml:"gene"`
	Diplotype          string   `json:"diplotype" yaml:"diplotype"`
	Phenotype          string   `json:"phenotype" yaml:"phenotype"`
	RiskLevel          string   `json:"risk_level" yaml:"risk_level"`
	Confidence         float64  `json:"confidence" yaml:"confidence"`
	Recommendation     string   `json:"recommendation" yaml:"recommendation"`
	EvidenceSources    []string `json:"evidence_sources" yaml:"evidence_sources"`
	CPICGuideline      string   `json:"cpic_guideline,omitempty" yaml:"cpic_guideline,omitempty"`
	FDALabel           string   `json:"fda_label,omitempty" yaml:"fda_label,omitempty"`
	VariantImpact      string   `json:"variant_impact,omitempty" yaml:"variant_impact,omitempty"`
	ClinicalAnnotation string   `json:"clinical_annotation,omitempty" yaml:"clinical_annotation,omitempty"`
}

// QualityMetrics summarizes input quality.
type QualityMetrics struct {
	VCFParseSuccess   bool               `json:"vcf_parse_success" yaml:"vcf_parse_success"`
	VariantsAnnotated int                `json:"variants_annotated" yaml:"variants_annotated"`
	AnnotationRate    float64            `json:"annotation_rate" yaml:"annotation_rate"`
	MeanCoverage      string             `json:"mean_coverage,omitempty" yaml:"mean_coverage,omitempty"`
	DataCompleteness  float64            `json:"data_completeness" yaml:"data_completeness"`
	ConfidenceMetrics *ConfidenceMetrics `json:"confidence_metrics,omitempty" yaml:"confidence_metrics,omitempty"`
}

// ConfidenceMetrics are the primary drug's evidence scores as fractions.
type ConfidenceMetrics struct {
	VariantEvidence  float64 `json:"variant_evidence" yaml:"variant_evidence"`
	GuidelineMatch   float64 `json:"guideline_match" yaml:"guideline_match"`
	DataCompleteness float64 `json:"data_completeness" yaml:"data_completeness"`
}

// VariantDetail describes one variant attributed to a pharmacogene.
type VariantDetail struct {
	RSID                 string `json:"rsid" yaml:"rsid"`
	Chromosome           string `json:"chromosome" yaml:"chromosome"`
	Position             string `json:"position" yaml:"position"`
	Gene                 string `json:"gene" yaml:"gene"`
	Reference            string `json:"reference" yaml:"reference"`
	Alternate            string `json:"alternate" yaml:"alternate"`
	Zygosity             string `json:"zygosity" yaml:"zygosity"`
	Genotype             string `json:"genotype" yaml:"genotype"`
	Effect               string `json:"effect" yaml:"effect"`
	ClinicalSignificance string `json:"clinical_significance" yaml:"clinical_significance"`
	PhenotypeAssociation string `json:"phenotype_association" yaml:"phenotype_association"`
}

// Input is the analysis outcome a report is built from.
type Input struct {
	Parsed      *vcf.ParseResult
	Assessments []risk.Assessment
}

// Meta identifies the report. Empty fields get defaults.
type Meta struct {
	AnalysisID string
	PatientID  string
	VCFFile    string
	Now        time.Time
}

// Defaults applied by Build.
const (
	DefaultPatientID = "DEMO-001"
	DefaultVCFFile   = "patient_genome.vcf"
	unspecified      = "Not specified"
	notAvailable     = "N/A"
	timestampLayout  = "2006-01-02T15:04:05.000Z07:00"
)

var sourceNames = map[risk.EvidenceSource]string{
	risk.SourceCPIC:     "CPIC Guideline",
	risk.SourcePharmGKB: "PharmGKB Evidence",
	risk.SourceFDA:      "FDA Pharmacogenomic Label",
}

// NewAnalysisID returns an ID of the form PG-<year>-<8 uppercase hex>.
func NewAnalysisID(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("PG-%d-%s", now.Year(), strings.ToUpper(id[:8]))
}

// Build assembles the report document.
func Build(in Input, meta Meta) *PGxAnalysisResult {
	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}
	if meta.AnalysisID == "" {
		meta.AnalysisID = NewAnalysisID(now)
	}
	if meta.PatientID == "" {
		meta.PatientID = DefaultPatientID
	}
	if meta.VCFFile == "" {
		meta.VCFFile = DefaultVCFFile
	}

	parsed := in.Parsed
	if parsed == nil {
		parsed = &vcf.ParseResult{}
	}

	version := parsed.FileFormat()
	if version == "" {
		version = "unknown"
	}

	phenotypes := make(map[string]pharmacogene.Phenotype)
	results := make([]DrugResult, 0, len(in.Assessments))
	for _, a := range in.Assessments {
		results = append(results, drugResult(a))
		if a.Supported() {
			phenotypes[a.Gene] = a.Phenotype
		}
	}

	details := variantDetails(parsed.Variants, phenotypes)

	annotationRate := 0.0
	if parsed.VariantCount > 0 {
		annotationRate = float64(len(details)) / float64(parsed.VariantCount)
	}

	return &PGxAnalysisResult{
		AnalysisID:             meta.AnalysisID,
		Timestamp:              now.UTC().Format(timestampLayout),
		PatientID:              meta.PatientID,
		VCFFile:                meta.VCFFile,
		VCFVersion:             version,
		VariantsAnalyzed:       parsed.VariantCount,
		PharmacogenomicResults: results,
		QualityMetrics: QualityMetrics{
			VCFParseSuccess:   in.Parsed != nil,
			VariantsAnnotated: len(details),
			AnnotationRate:    round2(annotationRate),
			DataCompleteness:  round2(parsed.WellFormedRatio()),
			ConfidenceMetrics: confidenceMetrics(in.Assessments),
		},
		VariantDetails: details,
	}
}

func drugResult(a risk.Assessment) DrugResult {
	sources := make([]string, 0, len(a.EvidenceSources))
	for _, s := range a.EvidenceSources {
		if name, ok := sourceNames[s]; ok {
			sources = append(sources, name)
		} else {
			sources = append(sources, string(s))
		}
	}

	r := DrugResult{
		Drug:               a.Drug,
		Gene:               a.Gene,
		Diplotype:          a.Diplotype,
		Phenotype:          string(a.Phenotype),
		RiskLevel:          a.Level.Code(),
		Confidence:         round2(a.Confidence / 100),
		Recommendation:     a.Recommendation,
		EvidenceSources:    sources,
		CPICGuideline:      a.GuidelineURL,
		ClinicalAnnotation: a.ClinicalNote,
	}
	if a.Supported() {
		r.VariantImpact = fmt.Sprintf("Impact of %s variant on %s metabolism", a.Gene, a.Drug)
	}
	for _, s := range a.EvidenceSources {
		if s == risk.SourceFDA {
			r.FDALabel = "FDA Pharmacogenomic Label for " + a.Drug
		}
	}
	return r
}

// confidenceMetrics reports the first supported assessment, or nil.
func confidenceMetrics(as []risk.Assessment) *ConfidenceMetrics {
	for _, a := range as {
		if !a.Supported() {
			continue
		}
		return &ConfidenceMetrics{
			VariantEvidence:  round2(a.VariantEvidence / 100),
			GuidelineMatch:   round2(a.GuidelineMatch / 100),
			DataCompleteness: round2(a.DataCompleteness / 100),
		}
	}
	return nil
}

func variantDetails(variants []*vcf.Variant, phenotypes map[string]pharmacogene.Phenotype) []VariantDetail {
	var out []VariantDetail
	for _, v := range variants {
		gene := pharmacogene.AssignGene(v)
		if gene == "" {
			continue
		}

		d := VariantDetail{
			RSID:                 orNA(v.ID),
			Chromosome:           "chr" + v.Chrom,
			Position:             orNA(v.RawPos),
			Gene:                 gene,
			Reference:            orNA(v.Ref),
			Alternate:            orNA(v.Alt),
			Zygosity:             strings.ToUpper(v.Zygosity()),
			Genotype:             v.Genotype(),
			Effect:               v.Effect(),
			ClinicalSignificance: unspecified,
			PhenotypeAssociation: unspecified,
		}
		if _, m, ok := pharmacogene.MarkerFor(v); ok {
			d.ClinicalSignificance = fmt.Sprintf("%s allele (%s)", m.Allele, strings.ReplaceAll(m.Function.String(), "_", " "))
		}
		if p, ok := phenotypes[gene]; ok {
			d.PhenotypeAssociation = fmt.Sprintf("%s %s", gene, p.Description())
		}
		out = append(out, d)
	}
	return out
}

func orNA(s string) string {
	if s == "" || s == "." {
		return notAvailable
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
