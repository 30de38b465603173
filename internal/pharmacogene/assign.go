package pharmacogene

import (
	"strings"

	"github.com/inodb/vibe-pgx/internal/vcf"
)

// INFO keys that may carry a gene symbol, checked in order.
var geneInfoKeys = []string{"GENE", "GENEINFO", "SYMBOL", "GENENAME"}

// AssignGene attributes a record to a pharmacogene. INFO annotations win,
// then marker rsIDs, then the gene loci. Returns "" when nothing matches.
func AssignGene(v *vcf.Variant) string {
	for _, key := range geneInfoKeys {
		val, ok := v.Info[key]
		if !ok {
			continue
		}
		if g := geneFromAnnotation(val); g != "" {
			return g
		}
	}

	if g, _, ok := MarkerFor(v); ok {
		return g
	}

	if v.HasValidPos() {
		if found := loci.Find(v.Chrom, v.Pos); len(found) > 0 {
			return found[0]
		}
	}
	return ""
}

// MarkerFor returns the first table marker a record carries.
func MarkerFor(v *vcf.Variant) (string, Marker, bool) {
	for _, g := range geneTable {
		for _, m := range g.Markers {
			if MatchesMarker(v, g.Chromosome, m.ID) {
				return g.Symbol, m, true
			}
		}
	}
	return "", Marker{}, false
}

// geneFromAnnotation resolves values such as "CYP2D6", "cyp2c19",
// "CYP2D6:1565" or "OATP1B1|SLCO1B1".
func geneFromAnnotation(val string) string {
	for _, tok := range strings.FieldsFunc(val, func(r rune) bool {
		return r == ':' || r == '|' || r == ',' || r == '&'
	}) {
		if g, ok := Lookup(tok); ok {
			return g.Symbol
		}
	}
	return ""
}

// GenesAt returns every pharmacogene whose locus contains chrom:pos.
func GenesAt(chrom string, pos int64) []string {
	return loci.Find(vcf.NormalizeChrom(chrom), pos)
}

// Annotation is the pharmacogene attribution of one record.
type Annotation struct {
	Gene   string
	Marker *Marker // nil unless the record carries a table marker
}

// Annotate attributes a record to a gene and, when the record carries one,
// the marker it matched. ok is false for records outside every gene.
func Annotate(v *vcf.Variant) (Annotation, bool) {
	gene := AssignGene(v)
	if gene == "" {
		return Annotation{}, false
	}
	ann := Annotation{Gene: gene}
	if g, m, found := MarkerFor(v); found && g == gene {
		ann.Marker = &m
	}
	return ann, true
}
