package vcf

import (
	"fmt"
	"strings"
)

// Severity of a validation finding.
type Severity string

// Severity levels, ordered by Rank.
const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Rank returns a numeric rank for comparison (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityWarning, SeverityError, SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q (want warning, error or critical)", s)
}

// ErrorType categorizes a validation finding.
type ErrorType string

// Finding categories.
const (
	TypeFormat             ErrorType = "format"
	TypeValidation         ErrorType = "validation"
	TypeMissingData        ErrorType = "missing_data"
	TypeUnsupportedFeature ErrorType = "unsupported_feature"
	TypeCorruption         ErrorType = "corruption"
)

// ValidationError is a single finding produced by Validate or Parse.
type ValidationError struct {
	Type       ErrorType `json:"type"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Line       int       `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Severity, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Severity, e.Message)
}

// VCFError carries the full list of findings when a caller elects to fail
// on structural problems.
type VCFError struct {
	Message string
	Errors  []ValidationError
}

func (e *VCFError) Error() string {
	n := 0
	for _, ve := range e.Errors {
		if ve.Severity.Rank() >= SeverityError.Rank() {
			n++
		}
	}
	return fmt.Sprintf("%s: %d blocking issue(s) in %d finding(s)", e.Message, n, len(e.Errors))
}

// IOError reports a failure to read the VCF source.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read vcf: %v", e.Err)
	}
	return fmt.Sprintf("read vcf %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FormatMessages renders findings as "[SEVERITY] message" lines, with a
// Details line when present.
func FormatMessages(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Severity)), e.Message)
		if e.Details != "" {
			msg += "\nDetails: " + e.Details
		}
		out = append(out, msg)
	}
	return out
}

// UnsupportedDrug returns the warning recorded for a drug with no gene mapping.
func UnsupportedDrug(drug string) ValidationError {
	return ValidationError{
		Type:       TypeUnsupportedFeature,
		Severity:   SeverityWarning,
		Message:    "Unsupported drug: " + drug,
		Details:    "This medication is not currently supported for pharmacogenomic analysis",
		Suggestion: "Select from the list of supported medications",
	}
}
