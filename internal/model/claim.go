package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the settlement state of a claim.
type ClaimStatus string

// Claim status constants.
const (
	ClaimStatusOpen     ClaimStatus = "open"
	ClaimStatusClosed   ClaimStatus = "closed"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// ClaimStatusFor derives a claim's status from its paid amount.
// A zero amount is still open, a positive amount has been paid and is closed,
// and an explicit rejection wins over both.
func ClaimStatusFor(amount decimal.Decimal, rejected bool) ClaimStatus {
	switch {
	case rejected:
		return ClaimStatusRejected
	case amount.IsPositive():
		return ClaimStatusClosed
	default:
		return ClaimStatusOpen
	}
}

// Claim is a loss notification against a policy.
// PolicyID is empty when the claim refers to a policy that is not in the
// system; PolicyNumber then describes it.
type Claim struct {
	ClaimDate    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Amount       decimal.Decimal
	ID           string
	OwnerID      string
	ClientID     string
	PolicyID     string
	PolicyNumber string
	ClaimNumber  string
	Status       ClaimStatus
	Description  string
}

// SameContent reports whether two claims carry the same reconciled fields.
func (c *Claim) SameContent(other *Claim) bool {
	return c.ClaimDate.Equal(other.ClaimDate) &&
		c.Amount.Equal(other.Amount) &&
		c.Status == other.Status &&
		c.PolicyID == other.PolicyID &&
		c.ClientID == other.ClientID &&
		c.Description == other.Description
}
