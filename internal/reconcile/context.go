package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/normalize"
	"github.com/Veraticus/policy-sync/internal/resolve"
	"github.com/Veraticus/policy-sync/internal/service"
)

// ErrScopeNotOwned is returned when the preselected client belongs to
// another operator.
var ErrScopeNotOwned = errors.New("client scope is not owned by the operator")

// ImportContext carries the per-run session state every resolution step
// needs: who is importing, and optionally the one client all rows belong to.
type ImportContext struct {
	OperatorID  string
	ClientScope string
}

// NewImportContext reads the operator from the session.
func NewImportContext(ctx context.Context, session service.Session, clientScope string) (ImportContext, error) {
	id, err := session.CurrentUserID(ctx)
	if err != nil {
		return ImportContext{}, common.NewUserError("cannot import without a signed-in operator",
			fmt.Errorf("%w: %w", common.ErrNoOperator, err))
	}
	return ImportContext{OperatorID: id, ClientScope: strings.TrimSpace(clientScope)}, nil
}

func (ic ImportContext) validate() error {
	if strings.TrimSpace(ic.OperatorID) == "" {
		return common.NewUserError("cannot import without a signed-in operator", common.ErrNoOperator)
	}
	return nil
}

// refs is the reference data of one run, fetched once at the start.
type refs struct {
	companies       *resolve.Companies
	clients         *resolve.Clients
	policies        *resolve.Policies
	claims          map[string]*model.Claim
	synthesized     []*model.Claim
	pendingPolicies map[*model.Policy]bool
	pendingClaims   map[*model.Claim]bool
}

func (e *Engine) loadRefs(ctx context.Context, ic ImportContext, withClaims bool) (*refs, error) {
	companies, err := e.store.GetCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}

	var scope *model.Client
	if ic.ClientScope != "" {
		scope, err = e.store.GetClient(ctx, ic.ClientScope)
		if err != nil {
			return nil, common.NewUserError("selected client is not available", err)
		}
		if scope.OwnerID != ic.OperatorID {
			return nil, common.NewUserError("selected client is not available", ErrScopeNotOwned)
		}
	}

	clients, err := e.store.GetClients(ctx, ic.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	policies, err := e.store.GetPolicies(ctx, service.PolicyFilter{
		OwnerID:         ic.OperatorID,
		IncludeArchived: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	r := &refs{
		companies:       resolve.NewCompanies(companies),
		clients:         resolve.NewClients(ic.OperatorID, clients, scope),
		policies:        resolve.NewPolicies(policies),
		claims:          make(map[string]*model.Claim),
		pendingPolicies: make(map[*model.Policy]bool),
		pendingClaims:   make(map[*model.Claim]bool),
	}
	if scope != nil {
		r.policies.Restrict(scope.ID)
	}

	if withClaims {
		claims, err := e.store.GetClaims(ctx, service.ClaimFilter{OwnerID: ic.OperatorID})
		if err != nil {
			return nil, fmt.Errorf("failed to load claims: %w", err)
		}
		for i := range claims {
			key := normalize.Key(claims[i].ClaimNumber)
			if _, dup := r.claims[key]; !dup {
				r.claims[key] = &claims[i]
			}
			if strings.HasPrefix(claims[i].ClaimNumber, SynthesizedClaimPrefix) {
				r.synthesized = append(r.synthesized, &claims[i])
			}
		}
	}

	return r, nil
}
