package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultDiagnosticsLimit caps the error and warning lists of an Outcome.
const DefaultDiagnosticsLimit = 20

// Outcome summarizes one import run. Every non-blank row lands in exactly one
// of Inserted, Updated, Skipped or Failed.
type Outcome struct {
	SkippedAmount   decimal.Decimal `json:"skipped_amount"`
	Source          string          `json:"source"`
	Errors          []string        `json:"errors"`
	Warnings        []string        `json:"warnings"`
	Total           int             `json:"total"`
	Inserted        int             `json:"inserted"`
	Updated         int             `json:"updated"`
	Skipped         int             `json:"skipped"`
	Failed          int             `json:"failed"`
	Blank           int             `json:"blank"`
	Archived        int             `json:"archived"`
	DroppedErrors   int             `json:"dropped_errors"`
	DroppedWarnings int             `json:"dropped_warnings"`
	DryRun          bool            `json:"dry_run"`
	limit           int
}

func newOutcome(source string, limit int, dryRun bool) *Outcome {
	if limit <= 0 {
		limit = DefaultDiagnosticsLimit
	}
	return &Outcome{
		Source:   source,
		Errors:   []string{},
		Warnings: []string{},
		limit:    limit,
		DryRun:   dryRun,
	}
}

// Success is the number of rows written.
func (o *Outcome) Success() int {
	return o.Inserted + o.Updated
}

// Balanced reports whether every counted row is accounted for.
func (o *Outcome) Balanced() bool {
	return o.Inserted+o.Updated+o.Skipped+o.Failed == o.Total
}

func (o *Outcome) fail(line int, err error) {
	o.Failed++
	o.addError(line, err.Error())
}

func (o *Outcome) addError(line int, msg string) {
	if len(o.Errors) >= o.limit {
		o.DroppedErrors++
		return
	}
	o.Errors = append(o.Errors, rowMessage(line, msg))
}

func (o *Outcome) addWarning(line int, msg string) {
	if len(o.Warnings) >= o.limit {
		o.DroppedWarnings++
		return
	}
	o.Warnings = append(o.Warnings, rowMessage(line, msg))
}

func rowMessage(line int, msg string) string {
	if line <= 0 {
		return msg
	}
	return fmt.Sprintf("row %d: %s", line, msg)
}
