package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/policy-sync/internal/cli"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/spf13/cobra"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "template <policies|claims>",
		Short:     "Write an empty import template workbook",
		Long:      `Write an .xlsx workbook with the preferred column headers and one sample row.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"policies", "claims"},
		RunE:      runTemplate,
	}
	cmd.Flags().StringP("output", "o", "", "output file (default: <kind>-template.xlsx)")
	return cmd
}

func runTemplate(cmd *cobra.Command, args []string) error {
	kind := args[0]
	aliases, ok := rowparse.AliasesFor(kind)
	if !ok {
		return fmt.Errorf("unknown template %q, use policies or claims", kind)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = kind + "-template.xlsx"
	}

	f, err := os.Create(output) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := tabular.WriteTemplate(f, aliases.TemplateHeaders(), aliases.TemplateSample()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Wrote "+output))
	return nil
}
