// Package guideline holds CPIC drug-gene guideline metadata and renders
// phenotype-specific recommendation text.
package guideline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
)

// Strength is the CPIC evidence grade.
type Strength string

// Evidence grades.
const (
	StrengthA Strength = "A" // strong
	StrengthB Strength = "B" // moderate
	StrengthC Strength = "C" // weak
	StrengthD Strength = "D" // very weak
)

// Description returns the grade in words.
func (s Strength) Description() string {
	switch s {
	case StrengthA:
		return "Strong"
	case StrengthB:
		return "Moderate"
	case StrengthC:
		return "Weak"
	case StrengthD:
		return "Very weak"
	}
	return "Unknown"
}

// Entry is one CPIC guideline for a gene-drug pair. Optional fields are
// empty when the guideline does not state them.
type Entry struct {
	Drug               string   `json:"drug" yaml:"drug"`
	Gene               string   `json:"gene" yaml:"gene"`
	URL                string   `json:"guideline_url" yaml:"guideline_url"`
	Recommendation     string   `json:"recommendation" yaml:"recommendation"`
	Strength           Strength `json:"strength" yaml:"strength"`
	Population         string   `json:"population" yaml:"population"`
	DosageAdjustment   string   `json:"dosage_adjustment,omitempty" yaml:"dosage_adjustment,omitempty"`
	AlternativeTherapy string   `json:"alternative_therapy,omitempty" yaml:"alternative_therapy,omitempty"`
	Monitoring         string   `json:"monitoring,omitempty" yaml:"monitoring,omitempty"`
}

// Key returns the composite table key for a gene-drug pair.
func Key(gene, drug string) string {
	return strings.ToUpper(strings.TrimSpace(gene)) + "-" + strings.ToUpper(strings.TrimSpace(drug))
}

var entries = map[string]Entry{
	"CYP2D6-CODEINE": {
		Drug:               "Codeine",
		Gene:               "CYP2D6",
		URL:                "https://cpicpgx.org/guidelines/guideline-for-codeine-and-cyp2d6/",
		Recommendation:     "Avoid codeine in CYP2D6 PMs due to lack of analgesic efficacy. Avoid in UMs due to risk of morphine overdose.",
		Strength:           StrengthA,
		Population:         "General population",
		DosageAdjustment:   "Alternative analgesic recommended",
		AlternativeTherapy: "Morphine, oxycodone, or other non-CYP2D6-dependent opioids",
		Monitoring:         "None required for alternative therapy",
	},
	"CYP2C19-CLOPIDOGREL": {
		Drug:               "Clopidogrel",
		Gene:               "CYP2C19",
		URL:                "https://cpicpgx.org/guidelines/guideline-for-clopidogrel-and-cyp2c19/",
		Recommendation:     "Use alternative antiplatelet therapy (prasugrel/ticagrelor) in CYP2C19 PMs due to increased cardiovascular risk.",
		Strength:           StrengthA,
		Population:         "Patients undergoing PCI",
		DosageAdjustment:   "Not recommended - use alternative therapy",
		AlternativeTherapy: "Prasugrel or Ticagrelor",
		Monitoring:         "Platelet function testing may be considered",
	},
	"CYP2C9-WARFARIN": {
		Drug:               "Warfarin",
		Gene:               "CYP2C9",
		URL:                "https://cpicpgx.org/guidelines/guideline-for-warfarin-and-cyp2c9-and-vkorc1/",
		Recommendation:     "Initiate warfarin at reduced dose and/or decrease maintenance dose based on CYP2C9 genotype.",
		Strength:           StrengthA,
		Population:         "Anticoagulation candidates",
		DosageAdjustment:   "Reduce initial dose by 15-25% for *1/*2, 30-40% for *1/*3, 40-60% for *2/*2, *2/*3, *3/*3",
		AlternativeTherapy: "Direct oral anticoagulants (DOACs)",
		Monitoring:         "More frequent INR monitoring initially",
	},
	"SLCO1B1-SIMVASTATIN": {
		Drug:               "Simvastatin",
		Gene:               "SLCO1B1",
		URL:                "https://cpicpgx.org/guidelines/guideline-for-statins-and-slco1b1/",
		Recommendation:     "Avoid simvastatin ≥40mg daily in patients with one or more decreased function alleles.",
		Strength:           StrengthA,
		Population:         "Dyslipidemia patients",
		DosageAdjustment:   "Use lower dose simvastatin (<20mg) or alternative statin",
		AlternativeTherapy: "Pravastatin, rosuvastatin, fluvastatin, pitavastatin",
		Monitoring:         "Monitor for muscle symptoms and CK levels",
	},
	"TPMT-AZATHIOPRINE": {
		Drug:               "Azathioprine",
		Gene:               "TPMT",
		URL:                "https://cpicpgx.org/guidelines/guideline-for-thiopurines-and-tpmt/",
		Recommendation:     "Reduce azathioprine dose by 30-70% in intermediate metabolizers; avoid in poor metabolizers.",
		Strength:           StrengthA,
		Population:         "All patients prior to thiopurine therapy",
		DosageAdjustment:   "Reduce dose by 30-70% for IMs, avoid in PMs",
		AlternativeTherapy: "Methotrexate, mycophenolate mofetil",
		Monitoring:         "Frequent CBC monitoring during initiation",
	},
	"DPYD-FLUOROURACIL": {
		Drug:               "Fluorouracil",
		Gene:               "DPYD",
		URL:                "https://cpicpgx.org/guidelines/guideline-for-fluoropyrimidines-and-dpyd/",
		Recommendation:     "Avoid fluoropyrimidines in patients with two decreased function alleles; consider dose reduction for one decreased function allele.",
		Strength:           StrengthA,
		Population:         "Cancer patients",
		DosageAdjustment:   "Avoid in PMs, consider 50% dose reduction in IMs",
		AlternativeTherapy: "Capecitabine with caution, alternative chemotherapy regimens",
		Monitoring:         "Intensive monitoring for toxicity, early intervention",
	},
}

// Lookup returns the guideline for a gene-drug pair, case-insensitively.
func Lookup(gene, drug string) (Entry, bool) {
	e, ok := entries[Key(gene, drug)]
	return e, ok
}

// All returns every guideline ordered by key.
func All() []Entry {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = entries[k]
	}
	return out
}

// Phenotype-specific overrides of the guideline text, by uppercased drug.
var phenotypeText = map[pharmacogene.Phenotype]map[string]string{
	pharmacogene.PoorMetabolizer: {
		"CODEINE":      "AVOID codeine due to risk of inadequate analgesia. Consider alternative analgesics.",
		"CLOPIDOGREL":  "AVOID clopidogrel. Use alternative antiplatelet therapy (prasugrel or ticagrelor).",
		"WARFARIN":     "Reduce warfarin dose by 40-60% based on genotype. Monitor INR closely.",
		"AZATHIOPRINE": "AVOID azathioprine or significantly reduce dose. Monitor CBC frequently.",
		"FLUOROURACIL": "AVOID fluorouracil due to high risk of severe toxicity. Consider alternative chemotherapy.",
	},
	pharmacogene.IntermediateMetabolizer: {
		"WARFARIN":     "Reduce warfarin dose by 15-25% based on genotype. Monitor INR closely.",
		"AZATHIOPRINE": "Consider 30-50% dose reduction. Monitor CBC frequently.",
		"FLUOROURACIL": "Consider 50% dose reduction. Monitor closely for toxicity.",
	},
	pharmacogene.UltraRapidMetabolizer: {
		"CODEINE": "AVOID codeine due to risk of morphine overdose. Consider alternative analgesics.",
	},
}

const (
	standardDosingText = "Standard dosing appropriate based on clinical factors."
	rapidCYP2C19Text   = "May require closer monitoring but standard dosing is typically appropriate."
)

// PhenotypeSpecific reports whether Recommendation renders text specific
// to the phenotype rather than the guideline's general recommendation.
func PhenotypeSpecific(drug, gene string, p pharmacogene.Phenotype) bool {
	if _, ok := Lookup(gene, drug); !ok {
		return false
	}
	_, ok := phenotypeText[p][strings.ToUpper(strings.TrimSpace(drug))]
	return ok
}

// Recommendation renders actionable text for a drug, gene and phenotype.
// Normal metabolizers get standard dosing text. Without a guideline it
// falls back to a generic clinical-judgment string.
func Recommendation(drug, gene string, p pharmacogene.Phenotype) string {
	e, ok := Lookup(gene, drug)
	if !ok {
		return fmt.Sprintf("No specific CPIC guideline available for %s and %s. Use standard dosing with clinical judgment.", drug, gene)
	}

	if text, ok := phenotypeText[p][strings.ToUpper(strings.TrimSpace(drug))]; ok {
		return text
	}
	switch p {
	case pharmacogene.NormalMetabolizer:
		return standardDosingText
	case pharmacogene.RapidMetabolizer:
		if e.Gene == "CYP2C19" {
			return rapidCYP2C19Text
		}
	}
	return e.Recommendation
}
