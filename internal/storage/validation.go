// Package storage provides the SQLite persistence layer for policies, claims,
// clients and insurance companies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/policy-sync/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidClient    = errors.New("invalid client")
	ErrInvalidPolicy    = errors.New("invalid policy")
	ErrInvalidClaim     = errors.New("invalid claim")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateClient(c *model.Client) error {
	if c == nil {
		return fmt.Errorf("%w: client", ErrNilParameter)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidClient)
	}
	if c.OwnerID == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidClient)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidClient)
	}
	if c.NationalID == "" && c.TaxID == "" {
		return fmt.Errorf("%w: needs a national id or tax id", ErrInvalidClient)
	}
	return nil
}

func validatePolicy(p *model.Policy) error {
	if p == nil {
		return fmt.Errorf("%w: policy", ErrNilParameter)
	}
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidPolicy)
	case p.OwnerID == "":
		return fmt.Errorf("%w: missing owner", ErrInvalidPolicy)
	case p.CompanyID == "":
		return fmt.Errorf("%w: missing company", ErrInvalidPolicy)
	case strings.TrimSpace(p.PolicyNumber) == "":
		return fmt.Errorf("%w: missing policy number", ErrInvalidPolicy)
	case p.Type == "":
		return fmt.Errorf("%w: missing type", ErrInvalidPolicy)
	case p.StartDate.IsZero() || p.EndDate.IsZero():
		return fmt.Errorf("%w: missing validity dates", ErrInvalidPolicy)
	case p.EndDate.Before(p.StartDate):
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, ErrInvalidDateRange)
	case p.Premium.IsNegative():
		return fmt.Errorf("%w: negative premium", ErrInvalidPolicy)
	}
	switch p.Status {
	case model.PolicyStatusActive, model.PolicyStatusArchived:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidPolicy, p.Status)
	}
	return nil
}

func validateClaim(c *model.Claim) error {
	if c == nil {
		return fmt.Errorf("%w: claim", ErrNilParameter)
	}
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidClaim)
	case c.OwnerID == "":
		return fmt.Errorf("%w: missing owner", ErrInvalidClaim)
	case c.ClientID == "":
		return fmt.Errorf("%w: missing client", ErrInvalidClaim)
	case strings.TrimSpace(c.ClaimNumber) == "":
		return fmt.Errorf("%w: missing claim number", ErrInvalidClaim)
	case c.ClaimDate.IsZero():
		return fmt.Errorf("%w: missing claim date", ErrInvalidClaim)
	case c.Amount.IsNegative():
		return fmt.Errorf("%w: negative amount", ErrInvalidClaim)
	}
	switch c.Status {
	case model.ClaimStatusOpen, model.ClaimStatusClosed, model.ClaimStatusRejected:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidClaim, c.Status)
	}
	return nil
}

// nullString stores empty strings as NULL so optional references satisfy
// foreign keys.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
