// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// minColumns is the number of mandatory VCF columns (CHROM..INFO).
const minColumns = 8

// Options controls which records the parser keeps.
type Options struct {
	// Chromosomes restricts output to records on these normalized
	// chromosomes. This is a relevance pre-filter that avoids holding
	// records no pharmacogene can use; it has no bearing on correctness.
	// A nil or empty set keeps every chromosome.
	Chromosomes map[string]bool
}

// KeepChromosomes returns Options that keep only the given chromosomes.
func KeepChromosomes(chroms ...string) Options {
	set := make(map[string]bool, len(chroms))
	for _, c := range chroms {
		set[NormalizeChrom(c)] = true
	}
	return Options{Chromosomes: set}
}

// Key returns a stable string form of the options, for cache keys.
func (o Options) Key() string {
	if len(o.Chromosomes) == 0 {
		return "*"
	}
	chroms := make([]string, 0, len(o.Chromosomes))
	for c := range o.Chromosomes {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)
	return strings.Join(chroms, ",")
}

func (o Options) keep(chrom string) bool {
	return len(o.Chromosomes) == 0 || o.Chromosomes[chrom]
}

// ParseResult is the outcome of parsing a whole VCF document.
type ParseResult struct {
	Metadata       []string          // Header lines, including #CHROM
	Variants       []*Variant        // Kept data records in file order
	VariantCount   int               // len(Variants)
	SampleNames    []string          // Sample names from the #CHROM line
	Warnings       []ValidationError // One per skipped malformed line
	DataLines      int               // Non-empty, non-header lines seen
	MalformedLines int               // Data lines with fewer than 8 columns
	FilteredLines  int               // Well-formed lines dropped by the chromosome filter
}

// FileFormat returns the ##fileformat value (e.g. "VCFv4.2"), or "".
func (r *ParseResult) FileFormat() string {
	for _, line := range r.Metadata {
		if v, ok := strings.CutPrefix(line, "##fileformat="); ok {
			return v
		}
	}
	return ""
}

// WellFormedRatio returns the fraction of data lines that had all
// mandatory columns. A file without data lines is fully well formed.
func (r *ParseResult) WellFormedRatio() float64 {
	if r.DataLines == 0 {
		return 1
	}
	return float64(r.DataLines-r.MalformedLines) / float64(r.DataLines)
}

// Parser reads variants from VCF text one record at a time.
type Parser struct {
	reader      *bufio.Reader
	opts        Options
	lineNumber  int
	header      []string
	sampleNames []string
	warnings    []ValidationError
	dataLines   int
	malformed   int
	filtered    int
}

// NewParserFromReader creates a parser from an io.Reader.
// Header lines are collected as they are encountered; a missing #CHROM
// line is not an error here (Validate reports it).
func NewParserFromReader(r io.Reader, opts Options) *Parser {
	return &Parser{
		reader: bufio.NewReader(r),
		opts:   opts,
	}
}

// Next reads the next kept variant.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if err == io.EOF && line == "" {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimSpace(line)
		if line != "" {
			if v := p.parseLine(line); v != nil {
				return v, nil
			}
		}
		if err == io.EOF {
			return nil, nil
		}
	}
}

// parseLine handles a single trimmed, non-empty line. It returns nil for
// header, malformed and filtered lines.
func (p *Parser) parseLine(line string) *Variant {
	if strings.HasPrefix(line, "#") {
		p.header = append(p.header, line)
		if strings.HasPrefix(line, "#CHROM") {
			if fields := splitColumns(line); len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
		}
		return nil
	}

	p.dataLines++
	fields := splitColumns(line)
	if len(fields) < minColumns {
		p.malformed++
		p.warnings = append(p.warnings, ValidationError{
			Type:       TypeFormat,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("Skipping malformed VCF record at line %d", p.lineNumber),
			Details:    fmt.Sprintf("Expected at least %d columns, got %d", minColumns, len(fields)),
			Suggestion: "Verify the format of this variant record",
			Line:       p.lineNumber,
		})
		return nil
	}

	chrom := NormalizeChrom(fields[0])
	if !p.opts.keep(chrom) {
		p.filtered++
		return nil
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 0 {
		pos = InvalidPos
	}

	v := &Variant{
		Chrom:   chrom,
		RawChr:  fields[0],
		Pos:     pos,
		RawPos:  fields[1],
		ID:      fields[2],
		Ref:     fields[3],
		Alt:     fields[4],
		Qual:    fields[5],
		Filter:  fields[6],
		Info:    parseInfo(fields[7]),
		RawInfo: fields[7],
		Line:    p.lineNumber,
	}

	// Capture FORMAT + sample columns if present
	if len(fields) > minColumns {
		v.Format = fields[8]
		v.Samples = fields[9:]
	}

	return v
}

// splitColumns splits a data or #CHROM line on runs of tabs.
func splitColumns(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool { return r == '\t' })
}

// parseInfo parses the INFO field into a map.
// Flags and empty values are recorded as "true"; the first '=' separates
// key from value.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "." || info == "" {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		key, val, _ := strings.Cut(kv, "=")
		if key == "" {
			continue
		}
		if val == "" {
			val = "true"
		}
		result[key] = val
	}

	return result
}

// Header returns the VCF header lines seen so far.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Warnings returns findings for lines skipped so far.
func (p *Parser) Warnings() []ValidationError {
	return p.warnings
}

// Parse parses a whole VCF document. It never fails on content: malformed
// lines are skipped and reported in Warnings.
func Parse(content string, opts Options) *ParseResult {
	p := NewParserFromReader(strings.NewReader(content), opts)

	variants := []*Variant{}
	for {
		// strings.Reader cannot fail, so the error is always nil.
		v, _ := p.Next()
		if v == nil {
			break
		}
		variants = append(variants, v)
	}

	return &ParseResult{
		Metadata:       p.header,
		Variants:       variants,
		VariantCount:   len(variants),
		SampleNames:    p.sampleNames,
		Warnings:       p.warnings,
		DataLines:      p.dataLines,
		MalformedLines: p.malformed,
		FilteredLines:  p.filtered,
	}
}

// ReadFile reads a whole VCF document. Supports both plain VCF and
// gzipped VCF (.vcf.gz) files; use "-" for stdin.
// All failures are reported as *IOError.
func ReadFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", &IOError{Path: path, Err: err}
		}
		return string(data), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	defer file.Close()

	br := bufio.NewReader(file)

	// Check for gzip magic number (0x1f, 0x8b)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", &IOError{Path: path, Err: fmt.Errorf("create gzip reader: %w", err)}
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	return string(data), nil
}
