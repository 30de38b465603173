package output

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/inodb/vibe-pgx/internal/vcf"
)

// FindingsWriter writes validation findings as an aligned table.
type FindingsWriter struct {
	w        *tabwriter.Writer
	counts   map[vcf.Severity]int
	total    int
	minLevel vcf.Severity // findings below this severity are counted, not shown
}

// NewFindingsWriter creates a findings writer that shows findings at or
// above minLevel.
func NewFindingsWriter(w io.Writer, minLevel vcf.Severity) *FindingsWriter {
	return &FindingsWriter{
		w:        tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		counts:   make(map[vcf.Severity]int),
		minLevel: minLevel,
	}
}

// WriteHeader writes the table header.
func (f *FindingsWriter) WriteHeader() error {
	_, err := fmt.Fprintln(f.w, "Severity\tLine\tType\tMessage\tDetails")
	return err
}

// Write records one finding and writes it if it meets the threshold.
func (f *FindingsWriter) Write(e vcf.ValidationError) error {
	f.total++
	f.counts[e.Severity]++

	if e.Severity.Rank() < f.minLevel.Rank() {
		return nil
	}

	line := "-"
	if e.Line > 0 {
		line = strconv.Itoa(e.Line)
	}
	details := e.Details
	if details == "" {
		details = "-"
	}
	_, err := fmt.Fprintf(f.w, "%s\t%s\t%s\t%s\t%s\n", e.Severity, line, e.Type, e.Message, details)
	return err
}

// Flush flushes the writer.
func (f *FindingsWriter) Flush() error {
	return f.w.Flush()
}

// Summary returns the number of findings of each severity.
func (f *FindingsWriter) Summary() (total, critical, errs, warnings int) {
	return f.total, f.counts[vcf.SeverityCritical], f.counts[vcf.SeverityError], f.counts[vcf.SeverityWarning]
}

// WriteSummary writes a summary of the findings.
func (f *FindingsWriter) WriteSummary(w io.Writer, valid bool) {
	status := "valid"
	if !valid {
		status = "invalid"
	}
	fmt.Fprintf(w, "\nValidation Summary: %s\n", status)
	fmt.Fprintf(w, "  Findings:  %d\n", f.total)
	fmt.Fprintf(w, "  Critical:  %d\n", f.counts[vcf.SeverityCritical])
	fmt.Fprintf(w, "  Errors:    %d\n", f.counts[vcf.SeverityError])
	fmt.Fprintf(w, "  Warnings:  %d\n", f.counts[vcf.SeverityWarning])
}
