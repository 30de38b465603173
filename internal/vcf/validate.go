package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// maxInfoTagWarnings caps per-line warnings for INFO fields without
// pharmacogenomic annotations.
const maxInfoTagWarnings = 5

// ValidationReport is the outcome of Validate.
type ValidationReport struct {
	IsValid bool
	Errors  []ValidationError
}

// Blocking returns the findings at or above the given severity.
func (r *ValidationReport) Blocking(failOn Severity) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Severity.Rank() >= failOn.Rank() {
			out = append(out, e)
		}
	}
	return out
}

// Err returns a *VCFError carrying every finding if any finding is at or
// above failOn, otherwise nil.
func (r *ValidationReport) Err(failOn Severity) error {
	if len(r.Blocking(failOn)) == 0 {
		return nil
	}
	return &VCFError{Message: "VCF validation failed", Errors: r.Errors}
}

// Validate scans VCF text and reports structural and data-quality issues.
// It never fails; every check runs independently except that an empty
// document short-circuits.
func Validate(content string) *ValidationReport {
	var errs []ValidationError

	if strings.TrimSpace(content) == "" {
		errs = append(errs, ValidationError{
			Type:       TypeValidation,
			Severity:   SeverityCritical,
			Message:    "VCF file is empty",
			Suggestion: "Upload a valid VCF file with genetic data",
		})
		return &ValidationReport{IsValid: false, Errors: errs}
	}

	lines := strings.Split(content, "\n")

	var hasFileFormat, hasColumnHeader bool
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		if version, ok := strings.CutPrefix(line, "##fileformat="); ok && !hasFileFormat {
			hasFileFormat = true
			if !strings.Contains(version, "VCFv4.") {
				errs = append(errs, ValidationError{
					Type:       TypeFormat,
					Severity:   SeverityWarning,
					Message:    "Unexpected VCF format version",
					Details:    fmt.Sprintf("Found: %s. Expected: VCFv4.x", version),
					Suggestion: "Ensure VCF file follows VCFv4.x specification",
				})
			}
		} else if strings.HasPrefix(line, "#CHROM") {
			hasColumnHeader = true
		}
	}

	if !hasFileFormat {
		errs = append(errs, ValidationError{
			Type:       TypeFormat,
			Severity:   SeverityCritical,
			Message:    "Missing mandatory ##fileformat header",
			Suggestion: "Ensure VCF file includes proper ##fileformat=VCFv4.x header",
		})
	}
	if !hasColumnHeader {
		errs = append(errs, ValidationError{
			Type:       TypeFormat,
			Severity:   SeverityCritical,
			Message:    "Missing mandatory column header (#CHROM\\tPOS\\tID\\tREF\\tALT\\tQUAL\\tFILTER\\tINFO)",
			Suggestion: "Ensure VCF file includes proper column header line starting with #CHROM",
		})
	}

	var variantLines, malformedLines, missingInfoTags int
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lineNo := i + 1
		variantLines++

		cols := splitColumns(line)
		if len(cols) < minColumns {
			malformedLines++
			errs = append(errs, ValidationError{
				Type:       TypeFormat,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("Malformed variant record at line %d", lineNo),
				Details:    fmt.Sprintf("Expected at least %d columns, got %d", minColumns, len(cols)),
				Suggestion: "Ensure each variant record has CHROM, POS, ID, REF, ALT, QUAL, FILTER, INFO columns",
				Line:       lineNo,
			})
			continue
		}

		pos, ref, alt, info := cols[1], cols[3], cols[4], cols[7]

		if n, err := strconv.ParseInt(pos, 10, 64); err != nil || n < 0 {
			errs = append(errs, ValidationError{
				Type:       TypeValidation,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("Invalid position at line %d", lineNo),
				Details:    fmt.Sprintf("Position must be numeric, got %q", pos),
				Suggestion: "Ensure position column contains valid numeric values",
				Line:       lineNo,
			})
		}

		if ref == "" || ref == "." {
			errs = append(errs, ValidationError{
				Type:       TypeValidation,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("Missing reference allele at line %d", lineNo),
				Details:    `REF column cannot be empty or "."`,
				Suggestion: "Ensure REF column contains valid nucleotide sequence",
				Line:       lineNo,
			})
		}

		// A missing ALT can be a reference-confirmation record.
		if alt == "" || alt == "." {
			errs = append(errs, ValidationError{
				Type:       TypeValidation,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Missing alternate allele at line %d", lineNo),
				Details:    `ALT column is empty or "."`,
				Suggestion: "Consider if this is intentional or if variants are missing",
				Line:       lineNo,
			})
		}

		if info != "" && info != "." && !hasPGxInfoTag(info) {
			missingInfoTags++
			if missingInfoTags <= maxInfoTagWarnings {
				errs = append(errs, ValidationError{
					Type:       TypeValidation,
					Severity:   SeverityWarning,
					Message:    fmt.Sprintf("Missing pharmacogenomic INFO tags at line %d", lineNo),
					Details:    "INFO field should include GENE, STAR allele, or RSID annotations for pharmacogenomic analysis",
					Suggestion: "Ensure VCF file includes pharmacogenomic annotations in INFO field (GENE, STAR allele, RSID)",
					Line:       lineNo,
				})
			}
		}
	}

	if variantLines == 0 {
		errs = append(errs, ValidationError{
			Type:       TypeMissingData,
			Severity:   SeverityWarning,
			Message:    "No variant records found in VCF file",
			Details:    "File contains headers but no variant data",
			Suggestion: "Verify the VCF file contains genetic variant data",
		})
	}

	if malformedLines > 0 {
		pct := float64(malformedLines) / float64(variantLines) * 100
		errs = append(errs, ValidationError{
			Type:       TypeFormat,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("%d malformed records found (%.2f%% of total)", malformedLines, pct),
			Details:    fmt.Sprintf("Out of %d total records", variantLines),
			Suggestion: "Review and correct malformed variant records",
		})
	}

	isValid := true
	for _, e := range errs {
		if e.Severity.Rank() >= SeverityError.Rank() {
			isValid = false
			break
		}
	}

	return &ValidationReport{IsValid: isValid, Errors: errs}
}

// hasPGxInfoTag reports whether any INFO token looks like a gene,
// star-allele/diplotype or rsID annotation.
func hasPGxInfoTag(info string) bool {
	for _, field := range strings.Split(info, ";") {
		switch {
		case strings.Contains(field, "GENE"):
			return true
		case strings.Contains(field, "STAR"), strings.Contains(field, "ALLELE"), strings.Contains(field, "DIPL"):
			return true
		case strings.Contains(field, "RSID"), strings.HasPrefix(field, "RS"), strings.Contains(field, "rs"):
			return true
		}
	}
	return false
}
