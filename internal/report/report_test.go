package report

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/risk"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

const fixture = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA001\n" +
	"22\t42522501\trs3892097\tC\tT\t100\tPASS\tGENE=CYP2D6\tGT\t0/1\n" +
	"22\t42523943\trs1065852\tC\tT\t100\tPASS\tGENE=CYP2D6\tGT\t0/1\n" +
	"22\t10000000\t.\tA\tG\t50\tPASS\tDP=12\tGT\t1/1\n"

func build(t *testing.T, drugs ...string) *PGxAnalysisResult {
	t.Helper()
	parsed := vcf.Parse(fixture, vcf.Options{})
	as, err := risk.NewAnalyzer().Analyze(context.Background(), parsed, drugs)
	require.NoError(t, err)

	return Build(Input{Parsed: parsed, Assessments: as}, Meta{
		PatientID: "PATIENT-7",
		VCFFile:   "sample.vcf",
		Now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
}

func TestBuild(t *testing.T) {
	r := build(t, "CODEINE", "ASPIRIN")

	assert.Regexp(t, regexp.MustCompile(`^PG-2026-[0-9A-F]{8}$`), r.AnalysisID)
	assert.Equal(t, "2026-03-01T12:00:00.000Z", r.Timestamp)
	assert.Equal(t, "PATIENT-7", r.PatientID)
	assert.Equal(t, "sample.vcf", r.VCFFile)
	assert.Equal(t, "VCFv4.2", r.VCFVersion)
	assert.Equal(t, 3, r.VariantsAnalyzed)

	require.Len(t, r.PharmacogenomicResults, 2)
	codeine := r.PharmacogenomicResults[0]
	assert.Equal(t, "CYP2D6", codeine.Gene)
	assert.Equal(t, "PM", codeine.Phenotype)
	assert.Equal(t, "INEFFECTIVE", codeine.RiskLevel)
	assert.Greater(t, codeine.Confidence, 0.0)
	assert.LessOrEqual(t, codeine.Confidence, 1.0)
	assert.Equal(t, []string{"CPIC Guideline", "PharmGKB Evidence", "FDA Pharmacogenomic Label"}, codeine.EvidenceSources)
	assert.Equal(t, "FDA Pharmacogenomic Label for CODEINE", codeine.FDALabel)
	assert.NotEmpty(t, codeine.CPICGuideline)

	aspirin := r.PharmacogenomicResults[1]
	assert.Equal(t, "UNKNOWN", aspirin.RiskLevel)
	assert.Equal(t, "Unknown", aspirin.Gene)
	assert.Empty(t, aspirin.FDALabel)
	assert.Empty(t, aspirin.VariantImpact)

	q := r.QualityMetrics
	assert.True(t, q.VCFParseSuccess)
	assert.Equal(t, 2, q.VariantsAnnotated)
	assert.Equal(t, 0.67, q.AnnotationRate)
	assert.Equal(t, 1.0, q.DataCompleteness)
	require.NotNil(t, q.ConfidenceMetrics)
	assert.LessOrEqual(t, q.ConfidenceMetrics.VariantEvidence, 1.0)

	require.Len(t, r.VariantDetails, 2)
	d := r.VariantDetails[0]
	assert.Equal(t, "rs3892097", d.RSID)
	assert.Equal(t, "chr22", d.Chromosome)
	assert.Equal(t, "42522501", d.Position)
	assert.Equal(t, "HETEROZYGOUS", d.Zygosity)
	assert.Equal(t, "0/1", d.Genotype)
	assert.Equal(t, "SNV", d.Effect)
	assert.Equal(t, "*4 allele (loss of function)", d.ClinicalSignificance)
	assert.Equal(t, "CYP2D6 Poor Metabolizer", d.PhenotypeAssociation)

	assert.Empty(t, Validate(r))
}

func TestBuild_Defaults(t *testing.T) {
	r := Build(Input{}, Meta{})

	assert.Equal(t, DefaultPatientID, r.PatientID)
	assert.Equal(t, DefaultVCFFile, r.VCFFile)
	assert.Equal(t, "unknown", r.VCFVersion)
	assert.False(t, r.QualityMetrics.VCFParseSuccess)
	assert.NotNil(t, r.PharmacogenomicResults)
	assert.Nil(t, r.QualityMetrics.ConfidenceMetrics)
	assert.Empty(t, Validate(r))
}

func TestBuild_JSONShape(t *testing.T) {
	data, err := json.Marshal(build(t, "WARFARIN"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"analysis_id", "timestamp", "patient_id", "vcf_file", "vcf_version", "variants_analyzed", "pharmacogenomic_results", "quality_metrics"} {
		assert.Contains(t, m, key)
	}
}

func TestNewAnalysisID_Unique(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, NewAnalysisID(now), NewAnalysisID(now))
}

func TestValidate_Violations(t *testing.T) {
	r := build(t, "CODEINE")
	r.AnalysisID = ""
	r.Timestamp = "yesterday"
	r.PharmacogenomicResults[0].RiskLevel = "Adjust Dosage"
	r.PharmacogenomicResults[0].Confidence = 87
	r.PharmacogenomicResults[0].EvidenceSources = nil
	r.QualityMetrics.AnnotationRate = 1.5

	errs := Validate(r)

	assert.Len(t, errs, 6)
	assert.Contains(t, errs, "Missing or invalid analysis_id (must be a non-empty string)")
	assert.Contains(t, errs, "Missing or invalid timestamp (must be a valid ISO date string)")
	assert.Contains(t, errs, "pharmacogenomic_results[0].confidence: Invalid confidence value (must be a number between 0 and 1)")
	assert.Contains(t, errs, "quality_metrics.annotation_rate: Invalid annotation_rate (must be a number between 0 and 1)")
}

func TestValidate_Nil(t *testing.T) {
	assert.Equal(t, []string{"Missing report"}, Validate(nil))
}
