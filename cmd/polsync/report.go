package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/policy-sync/internal/analytics"
	"github.com/Veraticus/policy-sync/internal/cli"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Portfolio reports",
	}

	lossRatio := &cobra.Command{
		Use:   "loss-ratio",
		Short: "Claims paid against premium earned, per company",
		Long: `Report the loss ratio of the operator's portfolio for a period.

Premium is earned pro rata over each policy's term. Only closed claims dated
inside the period count as paid.`,
		RunE: runLossRatio,
	}
	lossRatio.Flags().String("from", "", "period start (default: January 1 of the end year)")
	lossRatio.Flags().String("to", "", "period end (default: today)")
	cmd.AddCommand(lossRatio)

	return cmd
}

func runLossRatio(cmd *cobra.Command, _ []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	period := analytics.Period{}
	if to == "" {
		period.To = time.Now().UTC().Truncate(24 * time.Hour)
	} else {
		t, err := rowparse.ParseDate(to)
		if err != nil {
			return fmt.Errorf("invalid --to %q: %w", to, err)
		}
		period.To = t
	}
	if from == "" {
		period.From = time.Date(period.To.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := rowparse.ParseDate(from)
		if err != nil {
			return fmt.Errorf("invalid --from %q: %w", from, err)
		}
		period.From = t
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	ic, err := importContext(cmd.Context(), settings)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reporter, err := analytics.NewReporter(store)
	if err != nil {
		return err
	}
	report, err := reporter.LossRatio(cmd.Context(), ic.OperatorID, period)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Loss ratio %s to %s",
		period.From.Format(time.DateOnly), period.To.Format(time.DateOnly))))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderLossRatio(report))
	return nil
}
