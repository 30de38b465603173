package pharmacogene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-pgx/internal/vcf"
)

// Phenotype is a metabolizer status.
type Phenotype string

// Metabolizer statuses.
const (
	PoorMetabolizer         Phenotype = "PM"
	IntermediateMetabolizer Phenotype = "IM"
	NormalMetabolizer       Phenotype = "NM"
	RapidMetabolizer        Phenotype = "RM"
	UltraRapidMetabolizer   Phenotype = "UM"
)

// Phenotypes lists every metabolizer status, from least to most activity.
var Phenotypes = []Phenotype{
	PoorMetabolizer,
	IntermediateMetabolizer,
	NormalMetabolizer,
	RapidMetabolizer,
	UltraRapidMetabolizer,
}

var phenotypeNames = map[Phenotype]string{
	PoorMetabolizer:         "Poor Metabolizer",
	IntermediateMetabolizer: "Intermediate Metabolizer",
	NormalMetabolizer:       "Normal Metabolizer",
	RapidMetabolizer:        "Rapid Metabolizer",
	UltraRapidMetabolizer:   "Ultrarapid Metabolizer",
}

// Description returns the long form, e.g. "Poor Metabolizer".
func (p Phenotype) Description() string {
	if name, ok := phenotypeNames[p]; ok {
		return name
	}
	return string(p)
}

// Valid reports whether p is one of the five statuses.
func (p Phenotype) Valid() bool {
	_, ok := phenotypeNames[p]
	return ok
}

// ParsePhenotype accepts either the abbreviation or the long form.
func ParsePhenotype(s string) (Phenotype, error) {
	s = strings.TrimSpace(s)
	for _, p := range Phenotypes {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Description()) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown phenotype %q", s)
}

// Hits counts allele dosage of matched markers for one gene.
type Hits struct {
	LossOfFunction    int      `json:"loss_of_function"`
	IncreasedFunction int      `json:"increased_function"`
	Markers           []string `json:"markers,omitempty"` // matched marker rsIDs in table order
}

// Total returns all matched allele dosage.
func (h Hits) Total() int {
	return h.LossOfFunction + h.IncreasedFunction
}

// Inference is the outcome of phenotype inference for one gene.
type Inference struct {
	Gene      string    `json:"gene"`
	Phenotype Phenotype `json:"phenotype"`
	Diplotype string    `json:"diplotype"`
	Hits      Hits      `json:"hits"`
}

// InferPhenotype estimates the metabolizer status for gene from the parsed
// variants. Unknown genes and empty variant sets yield NormalMetabolizer.
func InferPhenotype(gene string, variants []*vcf.Variant) Phenotype {
	return Infer(gene, variants).Phenotype
}

// Infer is InferPhenotype with the supporting hit counts and diplotype.
//
// This is a marker-count heuristic, not star-allele calling: phased
// haplotypes are never reconstructed. Each marker contributes the alt
// allele dosage of its strongest matching record (at most 2), and the
// gene's rule maps the totals to a status.
func Infer(gene string, variants []*vcf.Variant) Inference {
	def, ok := Lookup(gene)
	if !ok {
		return Inference{
			Gene:      gene,
			Phenotype: NormalMetabolizer,
			Diplotype: Diplotype(gene, NormalMetabolizer),
		}
	}

	hits := CountHits(def, variants)
	p := ruleFor(def.Symbol)(hits)
	return Inference{
		Gene:      def.Symbol,
		Phenotype: p,
		Diplotype: Diplotype(def.Symbol, p),
		Hits:      hits,
	}
}

// CountHits tallies marker hits for a gene.
func CountHits(def GeneDefinition, variants []*vcf.Variant) Hits {
	var h Hits
	for _, m := range def.Markers {
		dosage := 0
		for _, v := range variants {
			if MatchesMarker(v, def.Chromosome, m.ID) {
				dosage = max(dosage, min(v.AltDosage(), 2))
			}
		}
		if dosage == 0 {
			continue
		}
		h.Markers = append(h.Markers, m.ID)
		if m.Function == IncreasedFunction {
			h.IncreasedFunction += dosage
		} else {
			h.LossOfFunction += dosage
		}
	}

	if def.CopyNumberGain {
		gain := 0
		for _, v := range variants {
			if def.Contains(v.Chrom, v.Pos) && isDuplication(v) {
				gain = max(gain, min(v.AltDosage(), 2))
			}
		}
		h.IncreasedFunction += gain
	}
	return h
}

// MatchesMarker reports whether a record carries the marker: the ID equals
// or contains the rsID (case-insensitive), or, on the gene's chromosome,
// an INFO key equals the rsID.
func MatchesMarker(v *vcf.Variant, chrom, rsID string) bool {
	id := strings.ToLower(v.ID)
	marker := strings.ToLower(rsID)
	if id != "." && strings.Contains(id, marker) {
		return true
	}
	if v.Chrom != chrom {
		return false
	}
	_, ok := v.Info[rsID]
	return ok
}

// isDuplication detects copy number gain records.
func isDuplication(v *vcf.Variant) bool {
	alt := strings.ToUpper(v.Alt)
	if strings.Contains(alt, "<DUP") || strings.Contains(alt, "<CNV") {
		return true
	}
	if strings.EqualFold(v.Info["SVTYPE"], "DUP") {
		return true
	}
	if cn, err := strconv.Atoi(v.Info["CN"]); err == nil && cn >= 3 {
		return true
	}
	return false
}

type phenotypeRule func(Hits) Phenotype

var geneRules = map[string]phenotypeRule{
	"CYP2D6":  cyp2d6Rule,
	"CYP2C19": cyp2c19Rule,
	"CYP2C9":  lossOfFunctionRule,
	"SLCO1B1": lossOfFunctionRule,
	"TPMT":    lossOfFunctionRule,
	"DPYD":    lossOfFunctionRule,
}

func ruleFor(symbol string) phenotypeRule {
	if r, ok := geneRules[symbol]; ok {
		return r
	}
	return countRule
}

// countRule: two or more hits of any kind → PM, one → IM.
func countRule(h Hits) Phenotype {
	switch n := h.Total(); {
	case n >= 2:
		return PoorMetabolizer
	case n == 1:
		return IntermediateMetabolizer
	default:
		return NormalMetabolizer
	}
}

func lossOfFunctionRule(h Hits) Phenotype {
	switch {
	case h.LossOfFunction >= 2:
		return PoorMetabolizer
	case h.LossOfFunction == 1:
		return IntermediateMetabolizer
	default:
		return NormalMetabolizer
	}
}

// cyp2d6Rule offsets a single loss-of-function allele with a duplication.
func cyp2d6Rule(h Hits) Phenotype {
	switch {
	case h.LossOfFunction >= 2:
		return PoorMetabolizer
	case h.IncreasedFunction > 0 && h.LossOfFunction == 0:
		return UltraRapidMetabolizer
	case h.IncreasedFunction > 0:
		return NormalMetabolizer
	case h.LossOfFunction == 1:
		return IntermediateMetabolizer
	default:
		return NormalMetabolizer
	}
}

// cyp2c19Rule: loss of function dominates *17.
func cyp2c19Rule(h Hits) Phenotype {
	switch {
	case h.LossOfFunction >= 2:
		return PoorMetabolizer
	case h.LossOfFunction == 1:
		return IntermediateMetabolizer
	case h.IncreasedFunction >= 2:
		return UltraRapidMetabolizer
	case h.IncreasedFunction == 1:
		return RapidMetabolizer
	default:
		return NormalMetabolizer
	}
}
