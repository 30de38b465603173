package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-pgx/internal/output"
	"github.com/inodb/vibe-pgx/internal/vcf"
)

func newValidateCmd() *cobra.Command {
	var (
		minSeverity string
		failOn      string
		messages    bool
	)

	cmd := &cobra.Command{
		Use:   "validate [flags] <input.vcf>",
		Short: "Check a VCF file for structural and data-quality problems",
		Long: `Report every finding in a VCF file. Exits with status 1 when a finding is
at or above --fail-on.`,
		Example: `  vibe-pgx validate patient.vcf
  vibe-pgx validate --min-severity error --fail-on critical patient.vcf.gz`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			minLevel, err := vcf.ParseSeverity(minSeverity)
			if err != nil {
				return usageError{err}
			}
			threshold, err := vcf.ParseSeverity(failOn)
			if err != nil {
				return usageError{err}
			}

			content, err := vcf.ReadFile(args[0])
			if err != nil {
				return err
			}
			report := vcf.Validate(content)

			if messages {
				var shown []vcf.ValidationError
				for _, e := range report.Errors {
					if e.Severity.Rank() >= minLevel.Rank() {
						shown = append(shown, e)
					}
				}
				for _, msg := range vcf.FormatMessages(shown) {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
			} else {
				fw := output.NewFindingsWriter(cmd.OutOrStdout(), minLevel)
				if err := fw.WriteHeader(); err != nil {
					return err
				}
				for _, e := range report.Errors {
					if err := fw.Write(e); err != nil {
						return err
					}
				}
				if err := fw.Flush(); err != nil {
					return err
				}
				fw.WriteSummary(cmd.ErrOrStderr(), report.IsValid)
			}

			if blocking := report.Blocking(threshold); len(blocking) > 0 {
				return fmt.Errorf("%s: %d finding(s) at or above %s", sourceName(args[0]), len(blocking), threshold)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&minSeverity, "min-severity", "warning", "Lowest severity to show: warning, error, critical")
	cmd.Flags().StringVar(&failOn, "fail-on", "error", "Lowest severity that fails validation")
	cmd.Flags().BoolVar(&messages, "messages", false, "Print findings as messages instead of a table")

	return cmd
}
