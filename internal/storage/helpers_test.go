package storage

import (
	"time"

	"github.com/Veraticus/policy-sync/internal/service"
)

func servicePolicyFilter(owner, client string) service.PolicyFilter {
	return service.PolicyFilter{OwnerID: owner, ClientID: client}
}

func allPolicies(owner string) service.PolicyFilter {
	return service.PolicyFilter{OwnerID: owner, IncludeArchived: true}
}

func claimRange(owner string, from, to *time.Time) service.ClaimFilter {
	return service.ClaimFilter{OwnerID: owner, From: from, To: to}
}
