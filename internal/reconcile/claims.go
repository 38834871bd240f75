package reconcile

import (
	"fmt"
	"strings"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/normalize"
	"github.com/Veraticus/policy-sync/internal/resolve"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/Veraticus/policy-sync/internal/tabular"
)

// SynthesizedClaimPrefix starts every claim number made up for rows that
// carry none.
const SynthesizedClaimPrefix = "OTO-"

const maxSynthesisAttempts = 16

// decideClaim applies the claim rules: the claim number is the natural key,
// a changed claim is updated in place and an unchanged one is a duplicate.
func (e *Engine) decideClaim(r *refs, cols *rowparse.Columns, row tabular.Row, out *Outcome) Decision {
	if row.IsBlank() {
		return skip(row.Line, SkipBlank)
	}

	if marker, ok := transactionMarker(
		cols.Get(row, rowparse.FieldCompany),
		cols.Get(row, rowparse.FieldDescription),
		cols.Get(row, rowparse.FieldStatus),
	); ok {
		e.addSkippedAmount(out, row.Line, cols.Get(row, rowparse.FieldAmount))
		e.log.Debug("Skipping transactional row", "line", row.Line, "marker", marker)
		return skip(row.Line, SkipTransactional)
	}

	rec, err := rowparse.ParseClaim(row, cols)
	if err != nil {
		return fail(row.Line, err)
	}

	var companyID string
	if rec.Company != "" {
		company, err := r.companies.Resolve(rec.Company)
		if err != nil {
			return fail(row.Line, err)
		}
		companyID = company.ID
	}

	var policy *model.Policy
	if rec.PolicyNumber != "" {
		policy = r.policies.Find(rec.PolicyNumber, companyID, rec.Type)
	}

	clientID, created, err := claimClient(r, rec, policy)
	if err != nil {
		return fail(row.Line, err)
	}

	now := e.now()
	candidate := &model.Claim{
		OwnerID:      r.clients.OwnerID(),
		ClientID:     clientID,
		PolicyNumber: rec.PolicyNumber,
		ClaimNumber:  rec.ClaimNumber,
		ClaimDate:    rec.ClaimDate,
		Amount:       rec.Amount,
		Status:       model.ClaimStatusFor(rec.Amount, rec.Rejected),
		Description:  rec.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if policy != nil {
		candidate.PolicyID = policy.ID
	}

	if candidate.ClaimNumber == "" {
		// Rows without a number can only be recognized by content.
		for _, prev := range r.synthesized {
			if prev.SameContent(candidate) {
				return skip(row.Line, SkipDuplicate)
			}
		}
		candidate.ClaimNumber, err = e.synthesizeClaimNumber(r)
		if err != nil {
			return fail(row.Line, err)
		}
		r.synthesized = append(r.synthesized, candidate)
		out.addWarning(row.Line, fmt.Sprintf("no claim number, assigned %s", candidate.ClaimNumber))
	}
	number := candidate.ClaimNumber

	key := normalize.Key(number)
	existing := r.claims[key]
	if existing != nil {
		if existing.SameContent(candidate) {
			return skip(row.Line, SkipDuplicate)
		}
		if r.pendingClaims[existing] {
			return fail(row.Line, fmt.Errorf("claim number %q appears more than once in the file with different values", number))
		}
		updated := *existing
		updated.ClientID = candidate.ClientID
		updated.PolicyID = candidate.PolicyID
		updated.PolicyNumber = candidate.PolicyNumber
		updated.ClaimDate = candidate.ClaimDate
		updated.Amount = candidate.Amount
		updated.Status = candidate.Status
		updated.Description = candidate.Description
		updated.UpdatedAt = now
		r.claims[key] = &updated
		r.clients.Commit(created)
		return Decision{Line: row.Line, Action: ActionUpdate, Claim: &updated}
	}

	if rec.PolicyNumber != "" && policy == nil {
		out.addWarning(row.Line, fmt.Sprintf("policy %q is not in the system, claim kept with the number only", rec.PolicyNumber))
	}

	candidate.ID = e.newID()
	r.clients.Commit(created)
	r.claims[key] = candidate
	r.pendingClaims[candidate] = true
	return Decision{Line: row.Line, Action: ActionInsert, Claim: candidate}
}

// claimClient determines the claimant: the batch scope, a known identity,
// the matched policy's client, or a newly created client, in that order.
// The new client is returned uncommitted so a row that fails later leaves
// nothing behind.
func claimClient(r *refs, rec *rowparse.ClaimRecord, policy *model.Policy) (string, *model.Client, error) {
	if client := r.clients.Lookup(rec.Client); client != nil {
		return client.ID, nil, nil
	}
	if policy != nil && policy.ClientID != "" {
		return policy.ClientID, nil, nil
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

// synthesizeClaimNumber returns OTO-<timestamp>-<8 hex>, retrying on the
// unlikely collision with a number already known to the run.
func (e *Engine) synthesizeClaimNumber(r *refs) (string, error) {
	stamp := e.now().Format("20060102150405")
	for range maxSynthesisAttempts {
		suffix := strings.ReplaceAll(e.newID(), "-", "")
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		number := SynthesizedClaimPrefix + stamp + "-" + suffix
		if _, taken := r.claims[normalize.Key(number)]; !taken {
			return number, nil
		}
	}
	return "", &resolve.ResolutionError{Kind: "claim number", Reason: "could not be generated without a collision"}
}
