package output

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-pgx/internal/report"
	"github.com/inodb/vibe-pgx/internal/risk"
)

// Format selects an output encoding.
type Format string

// Supported output formats.
const (
	FormatTab  Format = "tab"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name, case-insensitively. "yml" is
// accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "tab", "json", "yaml":
		return Format(f), nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want tab, json or yaml)", s)
}

// WriteReport writes one report document as JSON or YAML.
func WriteReport(w io.Writer, doc *report.PGxAnalysisResult, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	}
	return fmt.Errorf("report output needs json or yaml, got %q", format)
}

// WriteReports writes a single document as-is and several as a list.
func WriteReports(w io.Writer, docs []*report.PGxAnalysisResult, format Format) error {
	if len(docs) == 1 {
		return WriteReport(w, docs[0], format)
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, docs)
	case FormatYAML:
		return writeYAML(w, docs)
	}
	return fmt.Errorf("report output needs json or yaml, got %q", format)
}

// WriteAssessments writes raw assessments.
func WriteAssessments(w io.Writer, as []risk.Assessment, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, as)
	case FormatYAML:
		return writeYAML(w, as)
	case FormatTab:
		tw := NewTabWriter(w)
		if err := tw.WriteHeader(); err != nil {
			return err
		}
		for i := range as {
			if err := tw.Write(&as[i]); err != nil {
				return err
			}
		}
		return tw.Flush()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
