// Package risk classifies drug response risk from metabolizer phenotypes.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
)

// Level is a drug response risk category.
type Level string

// Risk levels.
const (
	Toxic        Level = "Toxic"
	Ineffective  Level = "Ineffective"
	AdjustDosage Level = "Adjust Dosage"
	Safe         Level = "Safe"
	Unknown      Level = "Unknown"
)

// Levels lists every risk level, most severe first.
var Levels = []Level{Toxic, Ineffective, AdjustDosage, Safe, Unknown}

// Code returns the report form, e.g. "ADJUST_DOSAGE".
func (l Level) Code() string {
	return strings.ReplaceAll(strings.ToUpper(string(l)), " ", "_")
}

// ParseLevel accepts either the display or the report form.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for _, l := range Levels {
		if strings.EqualFold(s, string(l)) || strings.EqualFold(s, l.Code()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// severityOffset is added to the variant impact score.
func (l Level) severityOffset() float64 {
	switch l {
	case Toxic:
		return 3
	case Ineffective:
		return 2
	case AdjustDosage:
		return 1
	case Safe:
		return -1
	}
	return 0
}

// Classification is the outcome of a drug-phenotype lookup.
type Classification struct {
	Level Level  `json:"risk_level"`
	Note  string `json:"clinical_note"`
}

const (
	notInDatabaseNote  = "Drug-gene interaction not in database."
	unsupportedNote    = "Drug not supported in current specific mapping."
	standardDosingNote = "Standard dosing."
)

type drugProfile struct {
	gene         string
	rows         map[pharmacogene.Phenotype]Classification
	alternatives []string
	monitoring   []string
}

// Every supported drug has a row for every phenotype.
var drugs = map[string]drugProfile{
	"CODEINE": {
		gene: "CYP2D6",
		rows: map[pharmacogene.Phenotype]Classification{
			pharmacogene.PoorMetabolizer:         {Ineffective, "Poor metabolizer: Codeine will not convert to morphine. No analgesic effect."},
			pharmacogene.IntermediateMetabolizer: {Safe, "Monitor response."},
			pharmacogene.NormalMetabolizer:       {Safe, standardDosingNote},
			pharmacogene.RapidMetabolizer:        {Toxic, "Rapid metabolizer: Risk of morphine overdose."},
			pharmacogene.UltraRapidMetabolizer:   {Toxic, "Ultra-rapid metabolizer: High risk of life-threatening toxicity."},
		},
		alternatives: []string{"Morphine", "Oxycodone", "Non-opioid analgesics"},
		monitoring:   []string{"Pain control", "Respiratory depression"},
	},
	"WARFARIN": {
		gene: "CYP2C9",
		rows: map[pharmacogene.Phenotype]Classification{
			pharmacogene.PoorMetabolizer:         {Toxic, "Significantly reduced metabolism. High bleeding risk. Lower dose required."},
			pharmacogene.IntermediateMetabolizer: {AdjustDosage, "Reduced metabolism. Lower dose required."},
			pharmacogene.NormalMetabolizer:       {Safe, standardDosingNote},
			pharmacogene.RapidMetabolizer:        {Safe, standardDosingNote},
			pharmacogene.UltraRapidMetabolizer:   {Safe, standardDosingNote},
		},
		alternatives: []string{"Apixaban", "Rivaroxaban", "Dabigatran"},
		monitoring:   []string{"INR", "Signs of bleeding"},
	},
	"CLOPIDOGREL": {
		gene: "CYP2C19",
		rows: map[pharmacogene.Phenotype]Classification{
			pharmacogene.PoorMetabolizer:         {Ineffective, "Prodrug cannot be activated. High risk of thrombosis."},
			pharmacogene.IntermediateMetabolizer: {Ineffective, "Reduced activation. Consider alternative."},
			pharmacogene.NormalMetabolizer:       {Safe, standardDosingNote},
			pharmacogene.RapidMetabolizer:        {Safe, standardDosingNote},
			pharmacogene.UltraRapidMetabolizer:   {Safe, standardDosingNote},
		},
		alternatives: []string{"Prasugrel", "Ticagrelor"},
		monitoring:   []string{"Platelet function testing", "Cardiovascular events"},
	},
	"SIMVASTATIN": {
		gene: "SLCO1B1",
		rows: map[pharmacogene.Phenotype]Classification{
			pharmacogene.PoorMetabolizer:         {Toxic, "Poor transporter function: high simvastatin exposure. High risk of myopathy."},
			pharmacogene.IntermediateMetabolizer: {AdjustDosage, "Decreased transporter function. Use a lower dose or an alternative statin."},
			pharmacogene.NormalMetabolizer:       {Safe, standardDosingNote},
			pharmacogene.RapidMetabolizer:        {Safe, standardDosingNote},
			pharmacogene.UltraRapidMetabolizer:   {Safe, standardDosingNote},
		},
		alternatives: []string{"Pravastatin", "Rosuvastatin", "Fluvastatin", "Pitavastatin"},
		monitoring:   []string{"Muscle symptoms", "Creatine kinase"},
	},
	"AZATHIOPRINE": {
		gene: "TPMT",
		rows: map[pharmacogene.Phenotype]Classification{
			pharmacogene.PoorMetabolizer:         {Toxic, "Absent TPMT activity. High risk of life-threatening myelosuppression."},
			pharmacogene.IntermediateMetabolizer: {AdjustDosage, "Reduced TPMT activity. Start at a reduced dose."},
			pharmacogene.NormalMetabolizer:       {Safe, standardDosingNote},
			pharmacogene.RapidMetabolizer:        {Safe, standardDosingNote},
			pharmacogene.UltraRapidMetabolizer:   {Safe, standardDosingNote},
		},
		alternatives: []string{"Methotrexate", "Mycophenolate mofetil"},
		monitoring:   []string{"Complete blood count", "Liver function tests"},
	},
	"FLUOROURACIL": {
		gene: "DPYD",
		rows: map[pharmacogene.Phenotype]Classification{
			pharmacogene.PoorMetabolizer:         {Toxic, "DPD deficiency. High risk of severe or fatal toxicity."},
			pharmacogene.IntermediateMetabolizer: {AdjustDosage, "Partial DPD deficiency. Reduce starting dose by 50%."},
			pharmacogene.NormalMetabolizer:       {Safe, standardDosingNote},
			pharmacogene.RapidMetabolizer:        {Safe, standardDosingNote},
			pharmacogene.UltraRapidMetabolizer:   {Safe, standardDosingNote},
		},
		alternatives: []string{"Alternative chemotherapy regimen"},
		monitoring:   []string{"Complete blood count", "Mucositis and diarrhea", "Neurotoxicity"},
	},
}

func normalizeDrug(drug string) string {
	return strings.ToUpper(strings.TrimSpace(drug))
}

// GeneForDrug returns the gene that governs a drug's response.
func GeneForDrug(drug string) (string, bool) {
	p, ok := drugs[normalizeDrug(drug)]
	if !ok {
		return "", false
	}
	return p.gene, true
}

// Drugs returns every supported drug name, sorted.
func Drugs() []string {
	out := make([]string, 0, len(drugs))
	for d := range drugs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Classify maps a drug, gene and phenotype to a risk level and clinical
// note. It is total: unsupported drugs, a gene other than the drug's
// governing gene, and unrecognized phenotypes all resolve to Unknown.
// An empty gene means the drug's own gene.
func Classify(drug, gene string, p pharmacogene.Phenotype) Classification {
	profile, ok := drugs[normalizeDrug(drug)]
	if !ok {
		return Classification{Level: Unknown, Note: notInDatabaseNote}
	}
	if gene != "" && !strings.EqualFold(gene, profile.gene) {
		return Classification{Level: Unknown, Note: notInDatabaseNote}
	}
	if c, ok := profile.rows[p]; ok {
		return c
	}
	return Classification{Level: Unknown, Note: notInDatabaseNote}
}
