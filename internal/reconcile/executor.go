package reconcile

import (
	"context"
	"fmt"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/model"
)

// execute writes decisions in three steps: new clients as one batch, then
// each update and archival on its own, then the row inserts as one batch.
// A failed individual write fails only its row. A failed batch aborts every
// insert of the run and is returned as a fatal error; updates already made
// stay made.
func (e *Engine) execute(ctx context.Context, r *refs, decisions []Decision, out *Outcome) error {
	if e.opts.DryRun {
		for _, d := range decisions {
			e.countWritten(out, d)
		}
		return nil
	}

	if pending := r.clients.Pending(); len(pending) > 0 {
		if err := e.retry(ctx, func() error { return e.store.InsertClients(ctx, pending) }); err != nil {
			writes := 0
			for _, d := range decisions {
				if d.Action == ActionInsert || d.Action == ActionUpdate {
					writes++
				}
			}
			return e.abort(out, writes, fmt.Errorf("new clients: %w", err))
		}
	}

	inserts := make([]Decision, 0, len(decisions))
	// dropped holds renewals that were not written; a later renewal of one of
	// them would point at a record that never exists.
	dropped := make(map[*model.Policy]bool)
	for _, d := range decisions {
		switch d.Action {
		case ActionUpdate:
			if err := e.retry(ctx, func() error { return e.update(ctx, d) }); err != nil {
				e.log.Warn("Row update failed", "line", d.Line, "error", err)
				out.fail(d.Line, fmt.Errorf("update failed: %w", err))
				continue
			}
			out.Updated++

		case ActionInsert:
			if d.predecessorPending && dropped[d.Predecessor] {
				dropped[d.Policy] = true
				out.fail(d.Line, fmt.Errorf("renewal of policy %s dropped, the policy it renews was not written", d.Predecessor.PolicyNumber))
				continue
			}
			if d.Predecessor != nil && !d.predecessorPending {
				pred := d.Predecessor
				at := e.now()
				if pred.ArchivedAt != nil {
					at = *pred.ArchivedAt
				}
				if err := e.retry(ctx, func() error { return e.store.ArchivePolicy(ctx, pred.ID, at) }); err != nil {
					e.log.Warn("Archiving renewed policy failed", "line", d.Line, "policy", pred.ID, "error", err)
					out.fail(d.Line, fmt.Errorf("archiving policy %s failed, renewal not written: %w", pred.PolicyNumber, err))
					dropped[d.Policy] = true
					continue
				}
				out.Archived++
			}
			inserts = append(inserts, d)
		}
	}

	if len(inserts) == 0 {
		return nil
	}
	if err := e.insertBatch(ctx, inserts); err != nil {
		return e.abort(out, len(inserts), err)
	}
	for _, d := range inserts {
		out.Inserted++
		if d.predecessorPending {
			out.Archived++
		}
	}
	return nil
}

func (e *Engine) countWritten(out *Outcome, d Decision) {
	switch d.Action {
	case ActionInsert:
		out.Inserted++
		if d.Predecessor != nil {
			out.Archived++
		}
	case ActionUpdate:
		out.Updated++
	}
}

// abort records lost rows as failures and returns the fatal batch error.
func (e *Engine) abort(out *Outcome, lost int, err error) error {
	e.log.Error("Batch insert failed", "rows", lost, "error", err)
	out.Failed += lost
	out.addError(0, fmt.Sprintf("%d rows not written: %v", lost, err))
	return common.NewUserError("import aborted, no new records were written", fmt.Errorf("%w: %w", ErrBatchWrite, err))
}

func (e *Engine) update(ctx context.Context, d Decision) error {
	switch {
	case d.Policy != nil:
		return e.store.UpdatePolicy(ctx, d.Policy)
	case d.Claim != nil:
		return e.store.UpdateClaim(ctx, d.Claim)
	}
	return nil
}

func (e *Engine) insertBatch(ctx context.Context, inserts []Decision) error {
	var policies []model.Policy
	var claims []model.Claim
	for _, d := range inserts {
		switch {
		case d.Policy != nil:
			policies = append(policies, *d.Policy)
		case d.Claim != nil:
			claims = append(claims, *d.Claim)
		}
	}

	if len(policies) > 0 {
		if err := e.retry(ctx, func() error { return e.store.InsertPolicies(ctx, policies) }); err != nil {
			return err
		}
	}
	if len(claims) > 0 {
		return e.retry(ctx, func() error { return e.store.InsertClaims(ctx, claims) })
	}
	return nil
}

func (e *Engine) retry(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, op, e.opts.Retry)
}
