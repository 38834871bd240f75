// Package analytics computes portfolio figures over stored policies and
// claims: earned premium and loss ratio, overall and per insurance company.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("period end is before its start")
	// ErrNoStorage is returned by NewReporter without a store.
	ErrNoStorage = errors.New("storage dependency is required")
)

var hundred = decimal.NewFromInt(100)

// Period is an inclusive reporting window.
type Period struct {
	From time.Time
	To   time.Time
}

// Validate checks that the period is not reversed.
func (p Period) Validate() error {
	if p.To.Before(p.From) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidPeriod, p.From.Format(time.DateOnly), p.To.Format(time.DateOnly))
	}
	return nil
}

// Figures are the totals of one group of policies.
type Figures struct {
	EarnedPremium decimal.Decimal `json:"earned_premium"`
	ClaimsPaid    decimal.Decimal `json:"claims_paid"`
	// LossRatio is a percentage; it is zero when nothing was earned.
	LossRatio   decimal.Decimal `json:"loss_ratio"`
	CompanyID   string          `json:"company_id,omitempty"`
	CompanyName string          `json:"company_name,omitempty"`
	Policies    int             `json:"policies"`
	Claims      int             `json:"claims"`
}

// Report is the loss ratio of an operator's portfolio over a period.
type Report struct {
	Period    Period    `json:"period"`
	Total     Figures   `json:"total"`
	Companies []Figures `json:"companies"`
	// Unlinked counts paid claims whose policy is not in the system. They
	// are part of the total but of no company.
	Unlinked int `json:"unlinked"`
}

// Reporter builds reports from a store.
type Reporter struct {
	store service.Storage
}

// NewReporter creates a reporter.
func NewReporter(store service.Storage) (*Reporter, error) {
	if store == nil {
		return nil, ErrNoStorage
	}
	return &Reporter{store: store}, nil
}

// LossRatio computes earned premium and closed claim payments for the
// operator's policies in the period. Archived policies count for the part of
// their validity that falls inside the period.
func (r *Reporter) LossRatio(ctx context.Context, ownerID string, period Period) (*Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	companies, err := r.store.GetCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	policies, err := r.store.GetPolicies(ctx, service.PolicyFilter{OwnerID: ownerID, IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	claims, err := r.store.GetClaims(ctx, service.ClaimFilter{OwnerID: ownerID, From: &period.From, To: &period.To})
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}

	groups := make(map[string]*Figures)
	group := func(companyID string) *Figures {
		g, ok := groups[companyID]
		if !ok {
			g = &Figures{CompanyID: companyID, CompanyName: names[companyID]}
			groups[companyID] = g
		}
		return g
	}

	report := &Report{Period: period}
	byID := make(map[string]*model.Policy, len(policies))
	for i := range policies {
		p := &policies[i]
		byID[p.ID] = p

		earned := EarnedInPeriod(p, period)
		if earned.IsZero() {
			continue
		}
		g := group(p.CompanyID)
		g.EarnedPremium = g.EarnedPremium.Add(earned)
		g.Policies++
		report.Total.EarnedPremium = report.Total.EarnedPremium.Add(earned)
		report.Total.Policies++
	}

	for _, c := range claims {
		if c.Status != model.ClaimStatusClosed {
			continue
		}
		report.Total.ClaimsPaid = report.Total.ClaimsPaid.Add(c.Amount)
		report.Total.Claims++

		p, ok := byID[c.PolicyID]
		if !ok {
			report.Unlinked++
			continue
		}
		g := group(p.CompanyID)
		g.ClaimsPaid = g.ClaimsPaid.Add(c.Amount)
		g.Claims++
	}

	for _, g := range groups {
		finalize(g)
		report.Companies = append(report.Companies, *g)
	}
	finalize(&report.Total)
	sort.Slice(report.Companies, func(i, j int) bool {
		if report.Companies[i].CompanyName != report.Companies[j].CompanyName {
			return report.Companies[i].CompanyName < report.Companies[j].CompanyName
		}
		return report.Companies[i].CompanyID < report.Companies[j].CompanyID
	})
	return report, nil
}

// EarnedInPeriod is the part of a policy's premium earned between the start
// of period.From and the end of period.To.
func EarnedInPeriod(p *model.Policy, period Period) decimal.Decimal {
	end := period.To.AddDate(0, 0, 1)
	return p.EarnedPremium(end).Sub(p.EarnedPremium(period.From))
}

// Ratio returns paid / earned as a percentage rounded to two places.
func Ratio(paid, earned decimal.Decimal) decimal.Decimal {
	if !earned.IsPositive() {
		return decimal.Zero
	}
	return paid.Div(earned).Mul(hundred).Round(2)
}

func finalize(f *Figures) {
	f.LossRatio = Ratio(f.ClaimsPaid, f.EarnedPremium)
	f.EarnedPremium = f.EarnedPremium.Round(2)
	f.ClaimsPaid = f.ClaimsPaid.Round(2)
}
