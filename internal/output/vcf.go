package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

// INFO keys added by VCFWriter.
const (
	InfoGene     = "PGX_GENE"
	InfoAllele   = "PGX_ALLELE"
	InfoFunction = "PGX_FUNCTION"
)

var pgxInfoHeaders = []string{
	`##INFO=<ID=PGX_GENE,Number=1,Type=String,Description="Pharmacogene the record is attributed to (vibe-pgx)">`,
	`##INFO=<ID=PGX_ALLELE,Number=1,Type=String,Description="Star allele of the matched pharmacogene marker">`,
	`##INFO=<ID=PGX_FUNCTION,Number=1,Type=String,Description="Function of the matched marker allele (loss_of_function or increased_function)">`,
}

// VCFWriter writes VCF records with pharmacogene INFO fields. Records
// outside every pharmacogene are written unchanged.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines with the PGX INFO
// definitions inserted before #CHROM.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "##INFO=<ID=PGX_") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			for _, h := range pgxInfoHeaders {
				if _, err := vw.w.WriteString(h + "\n"); err != nil {
					return err
				}
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one record. ann may be nil.
func (vw *VCFWriter) Write(v *vcf.Variant, ann *pharmacogene.Annotation) error {
	info := stripPGxInfo(v.RawInfo)

	var extra []string
	if ann != nil {
		extra = append(extra, InfoGene+"="+ann.Gene)
		if ann.Marker != nil {
			extra = append(extra, InfoAllele+"="+ann.Marker.Allele, InfoFunction+"="+ann.Marker.Function.String())
		}
	}
	if len(extra) > 0 {
		if info == "." {
			info = strings.Join(extra, ";")
		} else {
			info += ";" + strings.Join(extra, ";")
		}
	}

	var lb strings.Builder
	lb.Grow(256)
	chrom := v.RawChr
	if chrom == "" {
		chrom = v.Chrom
	}
	for i, col := range []string{chrom, v.RawPos, v.ID, v.Ref, v.Alt, dotIfEmpty(v.Qual), dotIfEmpty(v.Filter), info} {
		if i > 0 {
			lb.WriteByte('\t')
		}
		lb.WriteString(col)
	}
	if v.Format != "" {
		lb.WriteByte('\t')
		lb.WriteString(v.Format)
		for _, s := range v.Samples {
			lb.WriteByte('\t')
			lb.WriteString(s)
		}
	}
	lb.WriteByte('\n')

	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// stripPGxInfo removes PGX_* fields left by an earlier run.
func stripPGxInfo(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	// Fast path: nothing to strip
	if !strings.Contains(rawInfo, "PGX_") {
		return rawInfo
	}

	var kept []string
	for _, field := range strings.Split(rawInfo, ";") {
		if strings.HasPrefix(field, "PGX_") {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, ";")
}

func dotIfEmpty(s string) string {
	if s == "" {
		return "."
	}
	return s
}
