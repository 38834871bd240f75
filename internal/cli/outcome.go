package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/policy-sync/internal/analytics"
	"github.com/Veraticus/policy-sync/internal/reconcile"
)

// RenderOutcome renders an import summary box followed by its diagnostics.
func RenderOutcome(title string, o *reconcile.Outcome) string {
	if o.DryRun {
		title += " (dry run, nothing written)"
	}

	var b strings.Builder
	line := func(icon, label string, n int) {
		fmt.Fprintf(&b, "%s %-10s %s\n", icon, label, NumberStyle.Render(fmt.Sprint(n)))
	}
	line(SuccessIcon, "Inserted", o.Inserted)
	line(SuccessIcon, "Updated", o.Updated)
	line(ArchiveIcon, "Archived", o.Archived)
	line(SkipIcon, "Skipped", o.Skipped)
	line(ErrorIcon, "Failed", o.Failed)
	fmt.Fprintf(&b, "%s\n", SubtleStyle.Render(fmt.Sprintf("%d rows read, %d blank, source %s", o.Total, o.Blank, o.Source)))
	if !o.SkippedAmount.IsZero() {
		fmt.Fprintf(&b, "%s\n", SubtleStyle.Render("Skipped transactional amount: "+o.SkippedAmount.StringFixed(2)))
	}

	out := RenderBox(title, strings.TrimRight(b.String(), "\n"))

	if len(o.Errors) > 0 {
		out += "\n" + ErrorStyle.Bold(true).Render("Errors") + "\n"
		for _, e := range o.Errors {
			out += FormatError(e) + "\n"
		}
		if o.DroppedErrors > 0 {
			out += SubtleStyle.Render(fmt.Sprintf("... and %d more", o.DroppedErrors)) + "\n"
		}
	}
	if len(o.Warnings) > 0 {
		out += "\n" + WarningStyle.Bold(true).Render("Warnings") + "\n"
		for _, w := range o.Warnings {
			out += FormatWarning(w) + "\n"
		}
		if o.DroppedWarnings > 0 {
			out += SubtleStyle.Render(fmt.Sprintf("... and %d more", o.DroppedWarnings)) + "\n"
		}
	}
	return out
}

// RenderLossRatio renders a loss ratio report as a table.
func RenderLossRatio(r *analytics.Report) string {
	headers := []string{"Company", "Policies", "Earned premium", "Claims", "Paid", "Loss ratio"}
	rows := make([][]string, 0, len(r.Companies)+1)
	for _, c := range r.Companies {
		rows = append(rows, figuresRow(c.CompanyName, c))
	}
	rows = append(rows, figuresRow("Total", r.Total))

	title := fmt.Sprintf("Loss ratio %s to %s", r.Period.From.Format("02.01.2006"), r.Period.To.Format("02.01.2006"))
	out := FormatTitle(title) + "\n" + RenderTable(headers, rows) + "\n"
	if r.Unlinked > 0 {
		out += SubtleStyle.Render(fmt.Sprintf("%d paid claims have no policy in the system and only count toward the total", r.Unlinked)) + "\n"
	}
	return out
}

func figuresRow(name string, f analytics.Figures) []string {
	return []string{
		name,
		fmt.Sprint(f.Policies),
		f.EarnedPremium.StringFixed(2),
		fmt.Sprint(f.Claims),
		f.ClaimsPaid.StringFixed(2),
		f.LossRatio.StringFixed(2) + "%",
	}
}
