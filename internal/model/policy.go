// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyType is the canonical line of business of a policy.
type PolicyType string

// Policy type constants.
const (
	PolicyTypeKasko     PolicyType = "kasko"
	PolicyTypeTrafik    PolicyType = "trafik"
	PolicyTypeDASK      PolicyType = "dask"
	PolicyTypeKonut     PolicyType = "konut"
	PolicyTypeIsyeri    PolicyType = "isyeri"
	PolicyTypeSaglik    PolicyType = "saglik"
	PolicyTypeFerdiKaza PolicyType = "ferdi_kaza"
	PolicyTypeSeyahat   PolicyType = "seyahat"
	PolicyTypeNakliyat  PolicyType = "nakliyat"
	PolicyTypeOther     PolicyType = "other"
)

// IsMotor reports whether the policy type is a motor line that carries a plate.
func (t PolicyType) IsMotor() bool {
	return t == PolicyTypeKasko || t == PolicyTypeTrafik
}

// IsProperty reports whether the policy type is a property line that carries an address.
func (t PolicyType) IsProperty() bool {
	return t == PolicyTypeDASK || t == PolicyTypeKonut || t == PolicyTypeIsyeri
}

// PolicyStatus is the lifecycle state of a stored policy.
type PolicyStatus string

// Policy status constants.
const (
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusArchived PolicyStatus = "archived"
)

// Policy is an insurance contract issued by a company for a client.
// A renewal chain is formed by PreviousPolicyID back-references; every
// record but the newest is archived.
type Policy struct {
	StartDate        time.Time
	EndDate          time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ArchivedAt       *time.Time
	Premium          decimal.Decimal
	ID               string
	OwnerID          string
	ClientID         string
	CompanyID        string
	PolicyNumber     string
	Type             PolicyType
	Plate            string
	Address          string
	Status           PolicyStatus
	PreviousPolicyID string
	DocumentPath     string
}

// IsActive reports whether the policy is the live record of its chain.
func (p *Policy) IsActive() bool {
	return p.Status == PolicyStatusActive
}

// Archive marks the policy as superseded at the given time.
func (p *Policy) Archive(at time.Time) {
	p.Status = PolicyStatusArchived
	p.ArchivedAt = &at
	p.UpdatedAt = at
}

// EarnedPremium returns the pro-rata share of the premium attributable to the
// part of the validity period that lies before asOf.
func (p *Policy) EarnedPremium(asOf time.Time) decimal.Decimal {
	total := p.EndDate.Sub(p.StartDate)
	if total <= 0 || !asOf.After(p.StartDate) {
		return decimal.Zero
	}
	if !asOf.Before(p.EndDate) {
		return p.Premium
	}
	elapsed := asOf.Sub(p.StartDate)
	fraction := decimal.NewFromFloat(elapsed.Hours()).Div(decimal.NewFromFloat(total.Hours()))
	return p.Premium.Mul(fraction)
}
