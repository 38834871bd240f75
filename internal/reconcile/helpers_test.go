package reconcile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/Veraticus/policy-sync/internal/testutil"
	"github.com/stretchr/testify/require"
)

const operator = "agent-1"

var (
	fixedNow  = time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	testCtx   = ImportContext{OperatorID: operator}
	fastRetry = service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
)

var policyHeader = []string{
	"Poliçe No", "Sigorta Şirketi", "Poliçe Türü", "Başlangıç Tarihi", "Bitiş Tarihi",
	"Prim", "Müşteri Adı", "TC Kimlik No", "Açıklama",
}

var claimHeader = []string{
	"Hasar No", "Poliçe No", "Hasar Tarihi", "Hasar Tutarı", "Durum", "Müşteri Adı", "TC Kimlik No", "Açıklama",
}

func table(t *testing.T, header []string, rows ...[]string) *tabular.Table {
	t.Helper()
	records := append([][]string{header}, rows...)
	tbl, err := tabular.FromRecords("test.csv", records)
	require.NoError(t, err)
	return tbl
}

func newTestEngine(store service.Storage, mutate ...func(*Options)) *Engine {
	opts := Options{
		Now:   func() time.Time { return fixedNow },
		Retry: fastRetry,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return NewEngine(store, opts)
}

func setup(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDB(t, "ABC Sigorta", "Türkiye Sigorta")
}

func allPolicies(t *testing.T, store service.Storage) []model.Policy {
	t.Helper()
	policies, err := store.GetPolicies(context.Background(), service.PolicyFilter{OwnerID: operator, IncludeArchived: true})
	require.NoError(t, err)
	return policies
}

func allClaims(t *testing.T, store service.Storage) []model.Claim {
	t.Helper()
	claims, err := store.GetClaims(context.Background(), service.ClaimFilter{OwnerID: operator})
	require.NoError(t, err)
	return claims
}

// faultyStore injects write failures into a real store.
type faultyStore struct {
	service.Storage
	updateClaimErrs    map[string]error
	insertPoliciesErrs []error
	archiveErr         error
	insertClientsErr   error
	mu                 sync.Mutex
	insertPolicyCalls  int
}

func (f *faultyStore) InsertPolicies(ctx context.Context, policies []model.Policy) error {
	f.mu.Lock()
	f.insertPolicyCalls++
	var err error
	if len(f.insertPoliciesErrs) > 0 {
		err, f.insertPoliciesErrs = f.insertPoliciesErrs[0], f.insertPoliciesErrs[1:]
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Storage.InsertPolicies(ctx, policies)
}

func (f *faultyStore) ArchivePolicy(ctx context.Context, id string, at time.Time) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	return f.Storage.ArchivePolicy(ctx, id, at)
}

func (f *faultyStore) UpdateClaim(ctx context.Context, c *model.Claim) error {
	if err := f.updateClaimErrs[c.ClaimNumber]; err != nil {
		return err
	}
	return f.Storage.UpdateClaim(ctx, c)
}

func (f *faultyStore) InsertClients(ctx context.Context, clients []model.Client) error {
	if f.insertClientsErr != nil {
		return f.insertClientsErr
	}
	return f.Storage.InsertClients(ctx, clients)
}
