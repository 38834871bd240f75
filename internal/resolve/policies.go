package resolve

import (
	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/normalize"
)

// PolicyKey is the natural key of a policy: normalized number, company, type.
type PolicyKey struct {
	Number    string
	CompanyID string
	Type      model.PolicyType
}

// KeyOf returns the natural key of a stored policy.
func KeyOf(p *model.Policy) PolicyKey {
	return PolicyKey{Number: normalize.Key(p.PolicyNumber), CompanyID: p.CompanyID, Type: p.Type}
}

// Policies indexes the operator's policies for one run. Only active records
// are reachable by natural key; lookups by number alone see every record of
// the client scope, active ones first, each group in fetch order.
//
// The natural-key index always spans every client of the operator, since the
// store allows one active record per key across all of them.
type Policies struct {
	byKey    map[PolicyKey]*model.Policy
	byNumber map[string][]*model.Policy
	scope    string
	ordered  []*model.Policy
}

// NewPolicies indexes policies in the order they were fetched.
func NewPolicies(policies []model.Policy) *Policies {
	p := &Policies{
		byKey:    make(map[PolicyKey]*model.Policy, len(policies)),
		byNumber: make(map[string][]*model.Policy, len(policies)),
	}
	for i := range policies {
		p.Add(&policies[i])
	}
	return p
}

// Restrict limits number-only lookups to the policies of one client.
func (p *Policies) Restrict(clientID string) {
	p.scope = clientID
}

// InScope reports whether pol belongs to the client scope, if any.
func (p *Policies) InScope(pol *model.Policy) bool {
	return p.scope == "" || pol.ClientID == p.scope
}

// Add indexes a policy, typically a pending insert, so later rows see it.
func (p *Policies) Add(pol *model.Policy) {
	p.ordered = append(p.ordered, pol)
	num := normalize.Key(pol.PolicyNumber)
	p.byNumber[num] = append(p.byNumber[num], pol)
	if pol.IsActive() {
		if _, exists := p.byKey[KeyOf(pol)]; !exists {
			p.byKey[KeyOf(pol)] = pol
		}
	}
}

// Retire removes an archived policy from the natural-key index.
func (p *Policies) Retire(pol *model.Policy) {
	key := KeyOf(pol)
	if p.byKey[key] == pol {
		delete(p.byKey, key)
	}
}

// Active returns the active policy with the natural key, if any.
func (p *Policies) Active(number, companyID string, typ model.PolicyType) *model.Policy {
	return p.byKey[PolicyKey{Number: normalize.Key(number), CompanyID: companyID, Type: typ}]
}

// Find resolves a policy reference as precisely as the row allows: by
// natural key when company and type are known, else by number within the
// company, else by number alone. The number fallbacks only consider policies
// in scope. Returns nil when nothing matches.
func (p *Policies) Find(number, companyID string, typ model.PolicyType) *model.Policy {
	num := normalize.Key(number)
	if num == "" {
		return nil
	}
	if companyID != "" && typ != "" {
		if pol := p.byKey[PolicyKey{Number: num, CompanyID: companyID, Type: typ}]; pol != nil {
			return pol
		}
	}

	candidates := p.byNumber[num]
	pick := func(active bool) *model.Policy {
		for _, pol := range candidates {
			if pol.IsActive() != active || !p.InScope(pol) {
				continue
			}
			if companyID != "" && pol.CompanyID != companyID {
				continue
			}
			return pol
		}
		return nil
	}
	if pol := pick(true); pol != nil {
		return pol
	}
	return pick(false)
}

// All returns every indexed policy in fetch order followed by pending inserts.
func (p *Policies) All() []*model.Policy {
	return p.ordered
}
