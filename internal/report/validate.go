package report

import (
	"fmt"
	"slices"
	"time"
)

var riskCodes = []string{"TOXIC", "INEFFECTIVE", "ADJUST_DOSAGE", "SAFE", "UNKNOWN"}

// Validate checks every required field of the document and returns one
// message per violation. An empty result means the document is valid.
func Validate(r *PGxAnalysisResult) []string {
	if r == nil {
		return []string{"Missing report"}
	}

	var errs []string
	required := func(value, field string) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("Missing or invalid %s (must be a non-empty string)", field))
		}
	}

	required(r.AnalysisID, "analysis_id")
	if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
		errs = append(errs, "Missing or invalid timestamp (must be a valid ISO date string)")
	}
	required(r.PatientID, "patient_id")
	required(r.VCFFile, "vcf_file")
	required(r.VCFVersion, "vcf_version")
	if r.VariantsAnalyzed < 0 {
		errs = append(errs, "Missing or invalid variants_analyzed (must be a non-negative number)")
	}

	if r.PharmacogenomicResults == nil {
		errs = append(errs, "Missing or invalid pharmacogenomic_results (must be an array)")
	}
	for i, d := range r.PharmacogenomicResults {
		errs = append(errs, validateDrugResult(d, fmt.Sprintf("pharmacogenomic_results[%d]", i))...)
	}

	errs = append(errs, validateQualityMetrics(r.QualityMetrics, "quality_metrics")...)
	return errs
}

func validateDrugResult(d DrugResult, path string) []string {
	var errs []string
	required := func(value, field, what string) {
		if value == "" {
			errs = append(errs, fmt.Sprintf("%s.%s: Missing or invalid %s (must be a non-empty string)", path, field, what))
		}
	}

	required(d.Drug, "drug", "drug name")
	required(d.Gene, "gene", "gene name")
	required(d.Diplotype, "diplotype", "diplotype")
	required(d.Phenotype, "phenotype", "phenotype")
	if !slices.Contains(riskCodes, d.RiskLevel) {
		errs = append(errs, fmt.Sprintf("%s.risk_level: Invalid risk level (must be one of: TOXIC, INEFFECTIVE, ADJUST_DOSAGE, SAFE, UNKNOWN)", path))
	}
	if !isFraction(d.Confidence) {
		errs = append(errs, fmt.Sprintf("%s.confidence: Invalid confidence value (must be a number between 0 and 1)", path))
	}
	required(d.Recommendation, "recommendation", "recommendation")
	if d.EvidenceSources == nil {
		errs = append(errs, fmt.Sprintf("%s.evidence_sources: Invalid evidence_sources (must be an array of strings)", path))
	}
	return errs
}

func validateQualityMetrics(m QualityMetrics, path string) []string {
	var errs []string
	if m.VariantsAnnotated < 0 {
		errs = append(errs, fmt.Sprintf("%s.variants_annotated: Invalid variants_annotated (must be a non-negative number)", path))
	}
	if !isFraction(m.AnnotationRate) {
		errs = append(errs, fmt.Sprintf("%s.annotation_rate: Invalid annotation_rate (must be a number between 0 and 1)", path))
	}
	if !isFraction(m.DataCompleteness) {
		errs = append(errs, fmt.Sprintf("%s.data_completeness: Invalid data_completeness (must be a number between 0 and 1)", path))
	}
	return errs
}

func isFraction(v float64) bool {
	return v >= 0 && v <= 1
}
