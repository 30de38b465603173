package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-pgx/internal/guideline"
	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/risk"
)

func newGenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genes",
		Short: "List the supported pharmacogenes and their markers",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Gene\tName\tLocation (GRCh37)\tMarkers")
			for _, g := range pharmacogene.Genes() {
				markers := make([]string, len(g.Markers))
				for i, m := range g.Markers {
					markers[i] = fmt.Sprintf("%s(%s)", m.ID, m.Allele)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s:%d-%d\t%s\n", g.Symbol, g.Name, g.Chromosome, g.Start, g.End, strings.Join(markers, ","))
			}
			return tw.Flush()
		},
	}
}

func newDrugsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drugs",
		Short: "List the supported drugs with their gene and CPIC guideline",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Drug\tGene\tEvidence\tGuideline")
			for _, drug := range risk.Drugs() {
				gene, _ := risk.GeneForDrug(drug)
				evidence, url := "-", "-"
				if e, ok := guideline.Lookup(gene, drug); ok {
					evidence = fmt.Sprintf("%s (%s)", e.Strength, e.Strength.Description())
					url = e.URL
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", drug, gene, evidence, url)
			}
			return tw.Flush()
		},
	}
}
