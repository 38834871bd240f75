// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Veraticus/policy-sync/internal/model"
)

// PolicyFilter defines filtering options for policy queries.
// Results are always ordered by creation time, then id.
type PolicyFilter struct {
	OwnerID         string
	ClientID        string
	CompanyID       string
	PolicyNumber    string
	IncludeArchived bool
}

// ClaimFilter defines filtering options for claim queries.
type ClaimFilter struct {
	From     *time.Time
	To       *time.Time
	OwnerID  string
	ClientID string
}

// Storage defines the contract for our persistence layer. It plays the part of
// the external record store: reads are fresh on every call, InsertX calls are
// all-or-nothing for their slice, and every other write touches one row.
type Storage interface {
	// Company operations
	GetCompanies(ctx context.Context) ([]model.Company, error)
	CreateCompany(ctx context.Context, name string) (*model.Company, error)

	// Client operations
	GetClients(ctx context.Context, ownerID string) ([]model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	InsertClients(ctx context.Context, clients []model.Client) error

	// Policy operations
	GetPolicies(ctx context.Context, filter PolicyFilter) ([]model.Policy, error)
	InsertPolicies(ctx context.Context, policies []model.Policy) error
	UpdatePolicy(ctx context.Context, policy *model.Policy) error
	ArchivePolicy(ctx context.Context, id string, at time.Time) error

	// Claim operations
	GetClaims(ctx context.Context, filter ClaimFilter) ([]model.Claim, error)
	InsertClaims(ctx context.Context, claims []model.Claim) error
	UpdateClaim(ctx context.Context, claim *model.Claim) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Session exposes the authenticated operator.
type Session interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// ErrNoSession is returned by a Session with no authenticated user.
var ErrNoSession = errors.New("no authenticated user")

// StaticSession is a Session for a fixed operator id, such as one read from
// configuration or a request header.
type StaticSession string

// CurrentUserID returns the operator id, or ErrNoSession when it is blank.
func (s StaticSession) CurrentUserID(_ context.Context) (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
