package pharmacogene

// Representative diplotypes per phenotype. Display only; inference does
// not resolve haplotypes.
var diplotypes = map[string]map[Phenotype]string{
	"CYP2D6": {
		PoorMetabolizer:         "*4/*4",
		IntermediateMetabolizer: "*1/*4",
		NormalMetabolizer:       "*1/*1",
		RapidMetabolizer:        "*1/*2",
		UltraRapidMetabolizer:   "*1/*1xN",
	},
	"CYP2C19": {
		PoorMetabolizer:         "*2/*2",
		IntermediateMetabolizer: "*1/*2",
		NormalMetabolizer:       "*1/*1",
		RapidMetabolizer:        "*1/*17",
		UltraRapidMetabolizer:   "*17/*17",
	},
	"CYP2C9": {
		PoorMetabolizer:         "*3/*3",
		IntermediateMetabolizer: "*1/*3",
		NormalMetabolizer:       "*1/*1",
	},
	"VKORC1": {
		PoorMetabolizer:         "A/A",
		IntermediateMetabolizer: "G/A",
		NormalMetabolizer:       "G/G",
	},
	"SLCO1B1": {
		PoorMetabolizer:         "*5/*5",
		IntermediateMetabolizer: "*1/*5",
		NormalMetabolizer:       "*1/*1",
	},
	"TPMT": {
		PoorMetabolizer:         "*3A/*3A",
		IntermediateMetabolizer: "*1/*3A",
		NormalMetabolizer:       "*1/*1",
	},
	"DPYD": {
		PoorMetabolizer:         "*2A/*2A",
		IntermediateMetabolizer: "*1/*2A",
		NormalMetabolizer:       "*1/*1",
	},
}

// UnknownDiplotype is shown when no representative diplotype exists.
const UnknownDiplotype = "?/?"

// Diplotype returns a representative diplotype string for the gene and
// phenotype.
func Diplotype(gene string, p Phenotype) string {
	if def, ok := Lookup(gene); ok {
		if d, ok := diplotypes[def.Symbol][p]; ok {
			return d
		}
		if p == NormalMetabolizer {
			return "*1/*1"
		}
	}
	return UnknownDiplotype
}
