package reconcile

import (
	"fmt"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/resolve"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/Veraticus/policy-sync/internal/tabular"
)

// decidePolicy applies the policy rules: a new natural key is inserted, a
// later end date renews the active record, anything else is a duplicate.
func (e *Engine) decidePolicy(r *refs, cols *rowparse.Columns, row tabular.Row, out *Outcome) Decision {
	if row.IsBlank() {
		return skip(row.Line, SkipBlank)
	}

	if marker, ok := transactionMarker(
		cols.Get(row, rowparse.FieldCompany),
		cols.Get(row, rowparse.FieldPolicyType),
		cols.Get(row, rowparse.FieldDescription),
	); ok {
		e.addSkippedAmount(out, row.Line, cols.Get(row, rowparse.FieldPremium))
		e.log.Debug("Skipping transactional row", "line", row.Line, "marker", marker)
		return skip(row.Line, SkipTransactional)
	}

	rec, err := rowparse.ParsePolicy(row, cols)
	if err != nil {
		return fail(row.Line, err)
	}

	company, err := r.companies.Resolve(rec.Company)
	if err != nil {
		return fail(row.Line, err)
	}

	existing := r.policies.Active(rec.PolicyNumber, company.ID, rec.Type)
	if existing != nil && !r.policies.InScope(existing) {
		return fail(row.Line, &resolve.ResolutionError{
			Kind:   resolve.KindPolicy,
			Input:  rec.PolicyNumber,
			Reason: "is active under another client",
		})
	}
	if existing != nil && !existing.EndDate.Before(rec.EndDate) {
		return skip(row.Line, SkipDuplicate)
	}

	clientID, created, err := policyClient(r, rec, existing)
	if err != nil {
		return fail(row.Line, err)
	}

	if !rec.KnownType {
		out.addWarning(row.Line, fmt.Sprintf("unknown policy type %q stored as %s", rec.TypeText, model.PolicyTypeOther))
	}

	now := e.now()
	p := &model.Policy{
		ID:           e.newID(),
		OwnerID:      r.clients.OwnerID(),
		ClientID:     clientID,
		CompanyID:    company.ID,
		PolicyNumber: rec.PolicyNumber,
		Type:         rec.Type,
		StartDate:    rec.StartDate,
		EndDate:      rec.EndDate,
		Premium:      rec.Premium,
		Status:       model.PolicyStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rec.Type.IsMotor() || rec.Type == model.PolicyTypeOther {
		p.Plate = rec.Plate
	}
	if rec.Type.IsProperty() || rec.Type == model.PolicyTypeOther {
		p.Address = rec.Address
	}

	d := Decision{Line: row.Line, Action: ActionInsert, Policy: p}
	if existing != nil {
		p.PreviousPolicyID = existing.ID
		d.Predecessor = existing
		d.predecessorPending = r.pendingPolicies[existing]
		existing.Archive(now)
		r.policies.Retire(existing)
	}
	r.clients.Commit(created)
	r.policies.Add(p)
	r.pendingPolicies[p] = true
	return d
}

// policyClient picks the client of a new policy record. A renewal row
// without identity columns keeps the predecessor's client. A client the row
// introduces is returned uncommitted.
func policyClient(r *refs, rec *rowparse.PolicyRecord, predecessor *model.Policy) (string, *model.Client, error) {
	if predecessor != nil && !r.clients.Scoped() && !rec.Client.HasIdentifier() {
		return predecessor.ClientID, nil, nil
	}
	client, created, err := r.clients.Resolve(rec.Client)
	if err != nil {
		return "", nil, err
	}
	if created {
		return client.ID, client, nil
	}
	return client.ID, nil, nil
}
