// Package output provides assessment and report output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-pgx/internal/risk"
)

// TabWriter writes assessments in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Drug",
			"Gene",
			"Diplotype",
			"Phenotype",
			"Risk",
			"Severity",
			"Confidence",
			"Markers",
			"Recommendation",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single assessment.
func (tw *TabWriter) Write(a *risk.Assessment) error {
	markers := "-"
	if len(a.MatchedMarkers) > 0 {
		markers = strings.Join(a.MatchedMarkers, ",")
	}

	values := []string{
		a.Drug,
		a.Gene,
		a.Diplotype,
		string(a.Phenotype),
		a.Level.Code(),
		strconv.FormatFloat(a.Severity, 'f', -1, 64),
		strconv.FormatFloat(a.Confidence, 'f', -1, 64),
		markers,
		noTabs(a.Recommendation),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func noTabs(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}
