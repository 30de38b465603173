package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/output"
	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

func newAnnotateCmd() *cobra.Command {
	var (
		outputFile string
		pgxOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "annotate [flags] <input.vcf>",
		Short: "Tag VCF records with the pharmacogene and marker they hit",
		Long: `Write the input VCF with PGX_GENE, PGX_ALLELE and PGX_FUNCTION INFO fields
on every record attributed to a pharmacogene. Inputs with critical findings are
rejected and malformed records are dropped.`,
		Example: `  vibe-pgx annotate patient.vcf > patient.pgx.vcf
  vibe-pgx annotate --pgx-only -o hits.vcf patient.vcf.gz`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := vcf.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := vcf.Validate(content).Err(vcf.SeverityCritical); err != nil {
				return err
			}
			parsed := vcf.Parse(content, vcf.Options{})
			for _, w := range parsed.Warnings {
				logger.Warn("skipped malformed vcf record", zap.String("source", sourceName(args[0])), zap.Int("line", w.Line))
			}

			out, closeOut, err := openOutput(cmd, outputFile)
			if err != nil {
				return err
			}

			vw := output.NewVCFWriter(out, parsed.Metadata)
			if err := vw.WriteHeader(); err != nil {
				closeOut()
				return err
			}

			var tagged int
			for _, v := range parsed.Variants {
				ann, ok := pharmacogene.Annotate(v)
				if !ok {
					if pgxOnly {
						continue
					}
					err = vw.Write(v, nil)
				} else {
					tagged++
					err = vw.Write(v, &ann)
				}
				if err != nil {
					closeOut()
					return err
				}
			}
			if err := vw.Flush(); err != nil {
				closeOut()
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Annotated %d of %d records\n", tagged, parsed.VariantCount)
			return closeOut()
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&pgxOnly, "pgx-only", false, "Only write records attributed to a pharmacogene")

	return cmd
}
