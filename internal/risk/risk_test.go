package risk

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

const header = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

func TestClassify_CodeineDirectionality(t *testing.T) {
	assert.Equal(t, Ineffective, Classify("CODEINE", "CYP2D6", pharmacogene.PoorMetabolizer).Level)
	assert.Equal(t, Safe, Classify("codeine", "CYP2D6", pharmacogene.IntermediateMetabolizer).Level)
	assert.Equal(t, Safe, Classify("Codeine", "", pharmacogene.NormalMetabolizer).Level)
	assert.Equal(t, Toxic, Classify("CODEINE", "CYP2D6", pharmacogene.RapidMetabolizer).Level)
	assert.Equal(t, Toxic, Classify("CODEINE", "CYP2D6", pharmacogene.UltraRapidMetabolizer).Level)
}

func TestClassify_EveryDrugHasEveryPhenotype(t *testing.T) {
	for _, drug := range Drugs() {
		gene, ok := GeneForDrug(drug)
		require.True(t, ok)
		_, known := pharmacogene.Lookup(gene)
		assert.True(t, known, "%s maps to unknown gene %s", drug, gene)

		for _, p := range pharmacogene.Phenotypes {
			c := Classify(drug, gene, p)
			assert.NotEqual(t, Unknown, c.Level, "%s/%s", drug, p)
			assert.NotEmpty(t, c.Note, "%s/%s", drug, p)
		}
	}
}

func TestClassify_Total(t *testing.T) {
	c := Classify("ASPIRIN", "", pharmacogene.PoorMetabolizer)
	assert.Equal(t, Unknown, c.Level)
	assert.Equal(t, "Drug-gene interaction not in database.", c.Note)

	assert.Equal(t, Unknown, Classify("CODEINE", "TPMT", pharmacogene.PoorMetabolizer).Level)
	assert.Equal(t, Unknown, Classify("CODEINE", "CYP2D6", pharmacogene.Phenotype("XX")).Level)
}

func TestGeneForDrug(t *testing.T) {
	want := map[string]string{
		"CODEINE":      "CYP2D6",
		"WARFARIN":     "CYP2C9",
		"CLOPIDOGREL":  "CYP2C19",
		"SIMVASTATIN":  "SLCO1B1",
		"AZATHIOPRINE": "TPMT",
		"FLUOROURACIL": "DPYD",
	}
	for drug, gene := range want {
		got, ok := GeneForDrug(" " + drug + " ")
		require.True(t, ok, drug)
		assert.Equal(t, gene, got)
	}

	_, ok := GeneForDrug("ASPIRIN")
	assert.False(t, ok)
	assert.Len(t, Drugs(), len(want))
}

func TestLevel_Code(t *testing.T) {
	assert.Equal(t, "ADJUST_DOSAGE", AdjustDosage.Code())
	assert.Equal(t, "TOXIC", Toxic.Code())

	l, err := ParseLevel("adjust_dosage")
	require.NoError(t, err)
	assert.Equal(t, AdjustDosage, l)

	_, err = ParseLevel("dangerous")
	assert.Error(t, err)
}

func analyze(t *testing.T, content string, drugs ...string) []Assessment {
	t.Helper()
	parsed := vcf.Parse(content, vcf.Options{})
	out, err := NewAnalyzer().Analyze(context.Background(), parsed, drugs)
	require.NoError(t, err)
	return out
}

func TestAnalyze_SingleMarkerCodeine(t *testing.T) {
	content := header + "22\t42522501\trs3892097\tC\tT\t100\tPASS\tDP=100\n"

	out := analyze(t, content, "CODEINE")

	require.Len(t, out, 1)
	a := out[0]
	assert.Equal(t, "CODEINE", a.Drug)
	assert.Equal(t, "CYP2D6", a.Gene)
	assert.Equal(t, pharmacogene.IntermediateMetabolizer, a.Phenotype)
	assert.Equal(t, Safe, a.Level)
	assert.Equal(t, "*1/*4", a.Diplotype)
	assert.Equal(t, []string{"rs3892097"}, a.MatchedMarkers)
	assert.Empty(t, a.AlternativeOptions, "no alternatives for Safe")
	assert.NotEmpty(t, a.MonitoringRequirements)
}

func TestAnalyze_TwoMarkerCodeine(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\tDP=100\n" +
		"22\t42523943\trs1065852\tC\tT\t100\tPASS\tDP=100\n"

	out := analyze(t, content, "CODEINE")

	require.Len(t, out, 1)
	assert.Equal(t, pharmacogene.PoorMetabolizer, out[0].Phenotype)
	assert.Equal(t, Ineffective, out[0].Level)
	assert.Equal(t, "*4/*4", out[0].Diplotype)
	assert.NotEmpty(t, out[0].AlternativeOptions)
	assert.Contains(t, out[0].Recommendation, "AVOID codeine")
}

func TestAnalyze_UnsupportedDrug(t *testing.T) {
	out := analyze(t, header, "ASPIRIN")

	require.Len(t, out, 1)
	a := out[0]
	assert.Equal(t, "ASPIRIN", a.Drug)
	assert.Equal(t, pharmacogene.UnknownGene, a.Gene)
	assert.Equal(t, Unknown, a.Level)
	assert.Equal(t, pharmacogene.NormalMetabolizer, a.Phenotype)
	assert.Equal(t, "?/?", a.Diplotype)
	assert.Zero(t, a.Confidence)
	assert.Zero(t, a.VariantEvidence)
	assert.Zero(t, a.GuidelineMatch)
	assert.Zero(t, a.DataCompleteness)
	assert.Equal(t, "Drug not supported in current specific mapping.", a.ClinicalNote)
	assert.Empty(t, a.EvidenceSources)
	assert.False(t, a.Supported())
}

func TestAnalyze_RequestOrderPreserved(t *testing.T) {
	out := analyze(t, header, "warfarin", "ASPIRIN", "Codeine", "CLOPIDOGREL")

	require.Len(t, out, 4)
	assert.Equal(t, "warfarin", out[0].Drug)
	assert.Equal(t, "ASPIRIN", out[1].Drug)
	assert.Equal(t, "Codeine", out[2].Drug)
	assert.Equal(t, "CLOPIDOGREL", out[3].Drug)
	assert.Equal(t, "CYP2C9", out[0].Gene)
	assert.Equal(t, pharmacogene.UnknownGene, out[1].Gene)
}

func TestAnalyze_EmptyDrugList(t *testing.T) {
	out := analyze(t, header)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAnalyze_NilParseResult(t *testing.T) {
	out, err := NewAnalyzer().Analyze(context.Background(), nil, []string{"CODEINE"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, pharmacogene.NormalMetabolizer, out[0].Phenotype)
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewAnalyzer().Analyze(ctx, vcf.Parse(header, vcf.Options{}), []string{"CODEINE"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestAnalyze_Deterministic(t *testing.T) {
	content := header + "10\t96741053\trs1057910\tA\tC\t100\tPASS\t.\n"
	assert.Equal(t, analyze(t, content, "WARFARIN"), analyze(t, content, "WARFARIN"))
}

func TestAnalyze_ScoreRanges(t *testing.T) {
	content := header +
		"22\t42522501\trs3892097\tC\tT\t100\tPASS\t.\n" +
		"10\t96741053\trs1057910\tA\tC\t100\tPASS\t.\n" +
		"6\t18130918\trs1142345\tT\tC\t100\tPASS\t.\n" +
		"6\t18139228\trs1800460\tC\tT\t100\tPASS\t.\n" +
		"bad line\n"

	for _, a := range analyze(t, content, Drugs()...) {
		assert.GreaterOrEqual(t, a.Confidence, 85.0, a.Drug)
		assert.LessOrEqual(t, a.Confidence, 100.0, a.Drug)
		for _, s := range []float64{a.VariantEvidence, a.GuidelineMatch, a.DataCompleteness} {
			assert.GreaterOrEqual(t, s, 70.0, a.Drug)
			assert.LessOrEqual(t, s, 100.0, a.Drug)
		}
		for _, s := range []float64{a.VariantImpact, a.Severity} {
			assert.GreaterOrEqual(t, s, 1.0, a.Drug)
			assert.LessOrEqual(t, s, 10.0, a.Drug)
		}
		assert.Contains(t, a.EvidenceSources, SourceCPIC, a.Drug)
	}
}

func TestScores_PoorToxicAtCeiling(t *testing.T) {
	s := computeScores(scoreInput{
		phenotype:    pharmacogene.PoorMetabolizer,
		level:        Toxic,
		hits:         2,
		markers:      4,
		hasGuideline: true,
		wellFormed:   1,
	})
	assert.Equal(t, 10.0, s.Severity)
	assert.GreaterOrEqual(t, s.VariantImpact, 8.0)
}

func TestScores_MonotonicInPhenotypeAndLevel(t *testing.T) {
	base := scoreInput{hits: 1, markers: 2, hasGuideline: true, wellFormed: 1, level: Safe}

	order := []pharmacogene.Phenotype{
		pharmacogene.NormalMetabolizer,
		pharmacogene.RapidMetabolizer,
		pharmacogene.IntermediateMetabolizer,
		pharmacogene.UltraRapidMetabolizer,
		pharmacogene.PoorMetabolizer,
	}
	prev := 0.0
	for _, p := range order {
		in := base
		in.phenotype = p
		s := computeScores(in)
		assert.Greater(t, s.VariantImpact, prev, p)
		prev = s.VariantImpact
	}

	prev = 0
	for _, l := range []Level{Safe, Unknown, AdjustDosage, Ineffective, Toxic} {
		in := base
		in.phenotype = pharmacogene.IntermediateMetabolizer
		in.level = l
		s := computeScores(in)
		assert.Greater(t, s.Severity, prev, l)
		prev = s.Severity
	}
}

func TestAssessment_JSON(t *testing.T) {
	out := analyze(t, header, "ASPIRIN")

	data, err := json.Marshal(out[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Unknown", m["risk_level"])
	assert.Equal(t, 1.0, m["severity_score"])
	assert.Equal(t, []any{}, m["evidence_sources"])
	assert.NotContains(t, m, "guideline_url")
}
