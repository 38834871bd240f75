// Package reconcile decides, row by row, what an uploaded policy or claim
// file means for the stored records and then writes those decisions.
//
// A run is a single sequential pass. Reference data is fetched once at the
// start and the in-memory indexes evolve as rows are decided, so a later row
// sees the inserts and renewals of earlier rows in the same file.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/google/uuid"
)

var (
	// ErrBatchWrite means the grouped insert of a run failed and none of its
	// rows were written.
	ErrBatchWrite = errors.New("batch insert failed")
	// ErrNoTable is returned when a run is started without decoded input.
	ErrNoTable = errors.New("no table to import")
)

// Options configures an Engine.
type Options struct {
	Logger *slog.Logger
	// OnSuccess is called once after a run that wrote at least one row.
	OnSuccess func()
	// Progress is called after each row is decided.
	Progress         func(done, total int)
	Now              func() time.Time
	Retry            service.RetryOptions
	DiagnosticsLimit int
	// DryRun decides every row but writes nothing.
	DryRun bool
}

// Engine runs imports against a store.
type Engine struct {
	store service.Storage
	log   *slog.Logger
	now   func() time.Time
	newID func() string
	opts  Options
}

// NewEngine creates an engine. The engine holds no state between runs.
func NewEngine(store service.Storage, opts Options) *Engine {
	e := &Engine{
		store: store,
		opts:  opts,
		log:   opts.Logger,
		now:   opts.Now,
		newID: uuid.NewString,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

type decideFunc func(r *refs, cols *rowparse.Columns, row tabular.Row, out *Outcome) Decision

// ImportPolicies reconciles a policy file.
func (e *Engine) ImportPolicies(ctx context.Context, table *tabular.Table, ic ImportContext) (*Outcome, error) {
	return e.run(ctx, "policies", table, ic, rowparse.PolicyAliases, false, e.decidePolicy,
		rowparse.FieldPolicyNumber, rowparse.FieldCompany, rowparse.FieldPolicyType,
		rowparse.FieldStartDate, rowparse.FieldEndDate, rowparse.FieldPremium)
}

// ImportClaims reconciles a claim file.
func (e *Engine) ImportClaims(ctx context.Context, table *tabular.Table, ic ImportContext) (*Outcome, error) {
	return e.run(ctx, "claims", table, ic, rowparse.ClaimAliases, true, e.decideClaim,
		rowparse.FieldClaimDate, rowparse.FieldAmount)
}

func (e *Engine) run(ctx context.Context, kind string, table *tabular.Table, ic ImportContext,
	aliases rowparse.AliasTable, withClaims bool, decide decideFunc, required ...rowparse.Field,
) (*Outcome, error) {
	if err := ic.validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrNoTable
	}

	out := newOutcome(table.Source, e.opts.DiagnosticsLimit, e.opts.DryRun)
	cols := rowparse.ResolveColumns(table.Headers, aliases)
	for _, f := range cols.Missing(required...) {
		out.addWarning(0, fmt.Sprintf("no column found for %s", f.Label()))
	}

	r, err := e.loadRefs(ctx, ic, withClaims)
	if err != nil {
		return nil, err
	}

	e.log.Info("Starting import",
		"kind", kind,
		"source", table.Source,
		"rows", len(table.Rows),
		"operator", ic.OperatorID,
		"dry_run", e.opts.DryRun)

	decisions := make([]Decision, 0, len(table.Rows))
	for i, row := range table.Rows {
		d := decide(r, cols, row, out)
		e.tally(out, d)
		if d.Action == ActionInsert || d.Action == ActionUpdate {
			decisions = append(decisions, d)
		}
		if e.opts.Progress != nil {
			e.opts.Progress(i+1, len(table.Rows))
		}
	}

	execErr := e.execute(ctx, r, decisions, out)
	e.finish(kind, out)
	return out, execErr
}

func (e *Engine) tally(out *Outcome, d Decision) {
	e.log.Debug("Row decided", "line", d.Line, "action", d.Action.String(), "reason", d.Reason)

	if d.Action == ActionSkip && d.Reason == SkipBlank {
		out.Blank++
		return
	}
	out.Total++
	switch d.Action {
	case ActionSkip:
		out.Skipped++
	case ActionFail:
		out.fail(d.Line, d.Err)
	}
}

func (e *Engine) finish(kind string, out *Outcome) {
	e.log.Info("Import finished",
		"kind", kind,
		"source", out.Source,
		"total", out.Total,
		"inserted", out.Inserted,
		"updated", out.Updated,
		"skipped", out.Skipped,
		"failed", out.Failed,
		"archived", out.Archived,
		"skipped_amount", out.SkippedAmount.String())

	if out.Success() > 0 && !out.DryRun && e.opts.OnSuccess != nil {
		e.opts.OnSuccess()
	}
}

// addSkippedAmount adds a transactional row's amount to the audit total.
// The amount is informational, so an unreadable one only warns.
func (e *Engine) addSkippedAmount(out *Outcome, line int, raw string) {
	amount, err := rowparse.ParseOptionalAmount(raw)
	if err != nil {
		out.addWarning(line, fmt.Sprintf("skipped row amount %q not counted: %v", raw, err))
		return
	}
	out.SkippedAmount = out.SkippedAmount.Add(amount)
}
