// Package vcf provides VCF file parsing functionality.
package vcf

import "strings"

// InvalidPos marks a record whose POS column did not parse as a
// non-negative integer. The record is still emitted; Validate reports it.
const InvalidPos int64 = -1

// Zygosity values derived from the first sample's GT field.
const (
	ZygosityHomozygous   = "Homozygous"
	ZygosityHeterozygous = "Heterozygous"
	ZygosityHemizygous   = "Hemizygous"
	ZygosityMissing      = "Missing"
)

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom   string            // Chromosome name, "chr" prefix stripped (e.g., "22")
	RawChr  string            // CHROM column as written
	Pos     int64             // 1-based genomic position, InvalidPos if unparseable
	RawPos  string            // POS column as written
	ID      string            // Variant identifier (rsID or ".")
	Ref     string            // Reference allele
	Alt     string            // Alternate allele(s), comma separated
	Qual    string            // Quality column as written
	Filter  string            // Filter status (PASS or filter name)
	Info    map[string]string // INFO field key-value pairs, flags map to "true"
	RawInfo string            // INFO column as written
	Format  string            // FORMAT column, empty if absent
	Samples []string          // Per-sample columns after FORMAT
	Line    int               // 1-based source line number
}

// HasValidPos reports whether POS parsed as a non-negative integer.
func (v *Variant) HasValidPos() bool {
	return v.Pos != InvalidPos
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// IsInsertion returns true if the variant is an insertion.
func (v *Variant) IsInsertion() bool {
	return len(v.Alt) > len(v.Ref)
}

// IsDeletion returns true if the variant is a deletion.
func (v *Variant) IsDeletion() bool {
	return len(v.Ref) > len(v.Alt)
}

// FirstAlt returns the first alternate allele.
func (v *Variant) FirstAlt() string {
	if i := strings.IndexByte(v.Alt, ','); i >= 0 {
		return v.Alt[:i]
	}
	return v.Alt
}

// Effect classifies the allele change of the first alternate allele.
func (v *Variant) Effect() string {
	alt := v.FirstAlt()
	switch {
	case alt == "" || alt == ".":
		return "Missing"
	case len(v.Ref) > len(alt):
		return "Deletion"
	case len(v.Ref) < len(alt):
		return "Insertion"
	case len(v.Ref) == 1:
		return "SNV"
	default:
		return "Substitution"
	}
}

// SampleField returns the value of a FORMAT key for the given sample index.
func (v *Variant) SampleField(sample int, key string) (string, bool) {
	if v.Format == "" || sample < 0 || sample >= len(v.Samples) {
		return "", false
	}
	keys := strings.Split(v.Format, ":")
	values := strings.Split(v.Samples[sample], ":")
	for i, k := range keys {
		if k == key && i < len(values) {
			return values[i], true
		}
	}
	return "", false
}

// Genotype returns the GT of the first sample, or "./." when absent.
func (v *Variant) Genotype() string {
	if gt, ok := v.SampleField(0, "GT"); ok && gt != "" {
		return gt
	}
	return "./."
}

// alleles splits a GT value on either separator.
func alleles(gt string) []string {
	return strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
}

// Zygosity derives zygosity from the first sample's genotype.
func (v *Variant) Zygosity() string {
	a := alleles(v.Genotype())
	switch {
	case len(a) == 1 && a[0] != ".":
		return ZygosityHemizygous
	case len(a) != 2:
		return ZygosityMissing
	case a[0] == "." || a[1] == ".":
		return ZygosityMissing
	case a[0] == a[1]:
		return ZygosityHomozygous
	default:
		return ZygosityHeterozygous
	}
}

// AltDosage returns the number of non-reference alleles carried by the
// first sample. Records without sample data are assumed to carry one.
func (v *Variant) AltDosage() int {
	gt, ok := v.SampleField(0, "GT")
	if !ok {
		return 1
	}
	n := 0
	for _, a := range alleles(gt) {
		if a != "0" && a != "." {
			n++
		}
	}
	return n
}

// NormalizeChrom strips a leading "chr" prefix, case-insensitively.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		return chrom[3:]
	}
	return chrom
}
