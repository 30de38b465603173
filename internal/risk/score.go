package risk

import (
	"math"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
)

// Scores are deterministic evidence scores for one assessment. The first
// four are on a 0-100 scale, the last two on 1-10.
type Scores struct {
	Confidence       float64 `json:"confidence_score" yaml:"confidence_score"`
	VariantEvidence  float64 `json:"variant_evidence_score" yaml:"variant_evidence_score"`
	GuidelineMatch   float64 `json:"guideline_match_score" yaml:"guideline_match_score"`
	DataCompleteness float64 `json:"data_completeness_score" yaml:"data_completeness_score"`
	VariantImpact    float64 `json:"variant_impact_score" yaml:"variant_impact_score"`
	Severity         float64 `json:"severity_score" yaml:"severity_score"`
}

// Phenotype severity on the impact scale.
var phenotypeSeverity = map[pharmacogene.Phenotype]float64{
	pharmacogene.PoorMetabolizer:         8,
	pharmacogene.UltraRapidMetabolizer:   7,
	pharmacogene.IntermediateMetabolizer: 5,
	pharmacogene.RapidMetabolizer:        4,
	pharmacogene.NormalMetabolizer:       2,
}

// evidenceBaseline is the variant evidence score with no impact deviation.
const evidenceBaseline = 85

// scoreInput is everything the scores depend on.
type scoreInput struct {
	phenotype         pharmacogene.Phenotype
	level             Level
	hits              int     // matched allele dosage
	markers           int     // markers defined for the gene
	hasGuideline      bool    // a CPIC entry exists for the pair
	phenotypeSpecific bool    // the recommendation is phenotype-specific
	wellFormed        float64 // fraction of well-formed data lines, 0-1
}

func computeScores(in scoreInput) Scores {
	var s Scores

	s.Confidence = 85 + 3*float64(in.hits)
	if in.hasGuideline {
		s.Confidence += 5
	}
	s.Confidence = clamp(s.Confidence, 85, 100)

	s.VariantEvidence = 70
	if in.markers > 0 {
		s.VariantEvidence += 30 * math.Min(1, float64(in.hits)/float64(in.markers))
	}

	switch {
	case in.phenotypeSpecific:
		s.GuidelineMatch = 95
	case in.hasGuideline:
		s.GuidelineMatch = 85
	default:
		s.GuidelineMatch = 70
	}

	s.DataCompleteness = 70 + 30*clamp(in.wellFormed, 0, 1)

	s.VariantImpact = clamp(phenotypeSeverity[in.phenotype]+(s.VariantEvidence-evidenceBaseline)/15, 1, 10)
	s.Severity = clamp(s.VariantImpact+in.level.severityOffset(), 1, 10)

	s.Confidence = round2(s.Confidence)
	s.VariantEvidence = round2(s.VariantEvidence)
	s.DataCompleteness = round2(s.DataCompleteness)
	s.VariantImpact = round2(s.VariantImpact)
	s.Severity = round2(s.Severity)
	return s
}

// unknownScores are reported for unsupported drugs.
func unknownScores() Scores {
	return Scores{Severity: 1}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
