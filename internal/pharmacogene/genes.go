// Package pharmacogene holds the static pharmacogene knowledge base and the
// heuristic phenotype inference built on it.
//
// Coordinates are GRCh37. The tables are built once at package
// initialization and never mutated; every accessor returns copies, so the
// package is safe for concurrent use.
package pharmacogene

import (
	"sort"
	"strings"

	"github.com/inodb/vibe-pgx/internal/vcf"
)

// MarkerFunction describes the functional consequence of a marker allele.
type MarkerFunction int

const (
	// LossOfFunction covers no-function and decreased-function alleles.
	LossOfFunction MarkerFunction = iota
	// IncreasedFunction covers gain-of-function alleles (e.g. CYP2C19*17).
	IncreasedFunction
)

func (f MarkerFunction) String() string {
	if f == IncreasedFunction {
		return "increased_function"
	}
	return "loss_of_function"
}

// Marker is a variant identifier tied to a functional allele.
type Marker struct {
	ID       string         // rsID
	Allele   string         // star allele or common name, display only
	Function MarkerFunction // effect on enzyme/transporter activity
}

// GeneDefinition describes one pharmacogene.
type GeneDefinition struct {
	Symbol     string   // HGNC symbol (e.g., CYP2D6)
	Name       string   // Display name
	Chromosome string   // Normalized chromosome (no "chr")
	Start      int64    // Gene start (1-based, GRCh37)
	End        int64    // Gene end (1-based, inclusive)
	Markers    []Marker // Ordered marker variants
	// CopyNumberGain is set for genes whose duplications increase
	// activity; duplication records inside the locus count as
	// increased-function hits.
	CopyNumberGain bool
}

// MarkerIDs returns the marker rsIDs in table order.
func (g GeneDefinition) MarkerIDs() []string {
	ids := make([]string, len(g.Markers))
	for i, m := range g.Markers {
		ids[i] = m.ID
	}
	return ids
}

// Contains returns true if the given position is within the gene boundaries.
func (g GeneDefinition) Contains(chrom string, pos int64) bool {
	return vcf.NormalizeChrom(chrom) == g.Chromosome && pos >= g.Start && pos <= g.End
}

// UnknownGene is the gene reported for drugs without a gene mapping.
const UnknownGene = "Unknown"

var geneTable = []GeneDefinition{
	{
		Symbol: "CYP2D6", Name: "Cytochrome P450 2D6", Chromosome: "22",
		Start: 42522501, End: 42526883,
		Markers: []Marker{
			{ID: "rs3892097", Allele: "*4", Function: LossOfFunction},
			{ID: "rs1065852", Allele: "*10", Function: LossOfFunction},
			{ID: "rs16947", Allele: "*2", Function: LossOfFunction},
			{ID: "rs28371725", Allele: "*41", Function: LossOfFunction},
		},
		CopyNumberGain: true,
	},
	{
		Symbol: "CYP2C19", Name: "Cytochrome P450 2C19", Chromosome: "10",
		Start: 96522463, End: 96612671,
		Markers: []Marker{
			{ID: "rs4244285", Allele: "*2", Function: LossOfFunction},
			{ID: "rs4986893", Allele: "*3", Function: LossOfFunction},
			{ID: "rs12248560", Allele: "*17", Function: IncreasedFunction},
		},
	},
	{
		Symbol: "CYP2C9", Name: "Cytochrome P450 2C9", Chromosome: "10",
		Start: 96698415, End: 96749147,
		Markers: []Marker{
			{ID: "rs1799853", Allele: "*2", Function: LossOfFunction},
			{ID: "rs1057910", Allele: "*3", Function: LossOfFunction},
		},
	},
	{
		Symbol: "VKORC1", Name: "Vitamin K Epoxide Reductase", Chromosome: "16",
		Start: 31102175, End: 31106118,
		Markers: []Marker{
			{ID: "rs9923231", Allele: "-1639G>A", Function: LossOfFunction},
		},
	},
	{
		Symbol: "SLCO1B1", Name: "Solute Carrier Organic Anion Transporter 1B1", Chromosome: "12",
		Start: 21284128, End: 21392730,
		Markers: []Marker{
			{ID: "rs4149056", Allele: "*5", Function: LossOfFunction},
		},
	},
	{
		Symbol: "TPMT", Name: "Thiopurine S-Methyltransferase", Chromosome: "6",
		Start: 18128545, End: 18155374,
		Markers: []Marker{
			{ID: "rs1142345", Allele: "*3A", Function: LossOfFunction},
			{ID: "rs1800460", Allele: "*2", Function: LossOfFunction},
			{ID: "rs1800462", Allele: "*3C", Function: LossOfFunction},
		},
	},
	{
		Symbol: "DPYD", Name: "Dihydropyrimidine Dehydrogenase", Chromosome: "1",
		Start: 97543299, End: 98386615,
		Markers: []Marker{
			{ID: "rs3918290", Allele: "*2A", Function: LossOfFunction},
			{ID: "rs67376798", Allele: "c.2846A>T", Function: LossOfFunction},
			{ID: "rs56038477", Allele: "c.1236G>A", Function: LossOfFunction},
			{ID: "rs1861112", Allele: "c.1129-5923C>G", Function: LossOfFunction},
		},
	},
}

// Alternative spellings seen in INFO annotations.
var geneAliases = map[string]string{
	"CYT2D6":  "CYP2D6",
	"CYT2C19": "CYP2C19",
	"CYT2C9":  "CYP2C9",
	"SLC01B1": "SLCO1B1",
	"OATP1B1": "SLCO1B1",
	"TYMP":    "DPYD",
}

var (
	genesBySymbol map[string]int
	loci          *LocusIndex
)

func init() {
	genesBySymbol = make(map[string]int, len(geneTable))
	for i, g := range geneTable {
		genesBySymbol[g.Symbol] = i
	}
	loci = BuildLocusIndex(geneTable)
}

func clone(g GeneDefinition) GeneDefinition {
	g.Markers = append([]Marker(nil), g.Markers...)
	return g
}

// Lookup returns the definition for a gene symbol or known alias,
// case-insensitively.
func Lookup(symbol string) (GeneDefinition, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if canonical, ok := geneAliases[s]; ok {
		s = canonical
	}
	i, ok := genesBySymbol[s]
	if !ok {
		return GeneDefinition{}, false
	}
	return clone(geneTable[i]), true
}

// Genes returns every gene definition in table order.
func Genes() []GeneDefinition {
	out := make([]GeneDefinition, len(geneTable))
	for i, g := range geneTable {
		out[i] = clone(g)
	}
	return out
}

// Symbols returns every gene symbol in table order.
func Symbols() []string {
	out := make([]string, len(geneTable))
	for i, g := range geneTable {
		out[i] = g.Symbol
	}
	return out
}

// ChromosomesFor returns the sorted, distinct chromosomes of the given
// genes. With no symbols, every gene in the table is used. Unknown
// symbols are ignored.
func ChromosomesFor(symbols ...string) []string {
	if len(symbols) == 0 {
		symbols = Symbols()
	}
	seen := make(map[string]bool)
	var out []string
	for _, s := range symbols {
		g, ok := Lookup(s)
		if !ok || seen[g.Chromosome] {
			continue
		}
		seen[g.Chromosome] = true
		out = append(out, g.Chromosome)
	}
	sort.Strings(out)
	return out
}
