package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "agent-1"

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func seedCompany(t *testing.T, store *SQLiteStorage, name string) *model.Company {
	t.Helper()
	c, err := store.CreateCompany(context.Background(), name)
	require.NoError(t, err)
	return c
}

func seedClient(t *testing.T, store *SQLiteStorage, nationalID string) *model.Client {
	t.Helper()
	c := model.Client{ID: uuid.NewString(), OwnerID: testOwner, Name: "Ayşe Yılmaz", NationalID: nationalID}
	require.NoError(t, store.InsertClients(context.Background(), []model.Client{c}))
	return &c
}

func newPolicy(clientID, companyID, number string, end time.Time) model.Policy {
	return model.Policy{
		ID:           uuid.NewString(),
		OwnerID:      testOwner,
		ClientID:     clientID,
		CompanyID:    companyID,
		PolicyNumber: number,
		Type:         model.PolicyTypeKasko,
		StartDate:    end.AddDate(-1, 0, 0),
		EndDate:      end,
		Premium:      decimal.RequireFromString("1250.50"),
		Plate:        "34 ABC 123",
		Status:       model.PolicyStatusActive,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	v, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, v)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestCompanies(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	seedCompany(t, store, "Türkiye Sigorta")
	seedCompany(t, store, "Allianz Sigorta")

	_, err := store.CreateCompany(ctx, "ALLIANZ SIGORTA")
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	companies, err := store.GetCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Allianz Sigorta", companies[0].Name)
	assert.Equal(t, "Türkiye Sigorta", companies[1].Name)
}

func TestClients(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := seedClient(t, store, "12345678901")
	corp := model.Client{ID: uuid.NewString(), OwnerID: testOwner, Name: "Acme Ltd", TaxID: "1234567890", Email: "info@acme.test"}
	other := model.Client{ID: uuid.NewString(), OwnerID: "agent-2", Name: "Mehmet", NationalID: "10987654321"}
	require.NoError(t, store.InsertClients(ctx, []model.Client{corp, other}))

	clients, err := store.GetClients(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, first.ID, clients[0].ID)
	assert.Equal(t, "1234567890", clients[1].TaxID)
	assert.Empty(t, clients[1].NationalID)

	got, err := store.GetClient(ctx, corp.ID)
	require.NoError(t, err)
	assert.Equal(t, "info@acme.test", got.Email)

	_, err = store.GetClient(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.InsertClients(ctx, []model.Client{{ID: "x", OwnerID: testOwner, Name: "No Id"}})
	assert.ErrorIs(t, err, ErrInvalidClient)
}

func TestPolicies_InsertAndFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	company := seedCompany(t, store, "ABC Sigorta")
	client := seedClient(t, store, "12345678901")
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	p1 := newPolicy(client.ID, company.ID, "P-1", end)
	p2 := newPolicy("", company.ID, "P-2", end)
	p2.Type = model.PolicyTypeDASK
	p2.Plate = ""
	p2.Address = "Kadıköy, İstanbul"
	require.NoError(t, store.InsertPolicies(ctx, []model.Policy{p1, p2}))

	all, err := store.GetPolicies(ctx, servicePolicyFilter(testOwner, ""))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "P-1", all[0].PolicyNumber)
	assert.True(t, p1.Premium.Equal(all[0].Premium))
	assert.True(t, end.Equal(all[0].EndDate))
	assert.Equal(t, "34 ABC 123", all[0].Plate)
	assert.Equal(t, model.PolicyTypeDASK, all[1].Type)
	assert.Empty(t, all[1].ClientID)
	assert.Nil(t, all[1].ArchivedAt)

	byClient, err := store.GetPolicies(ctx, servicePolicyFilter(testOwner, client.ID))
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, p1.ID, byClient[0].ID)
}

func TestPolicies_BatchIsAtomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	company := seedCompany(t, store, "ABC Sigorta")
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	good := newPolicy("", company.ID, "P-1", end)
	orphan := newPolicy("", "no-such-company", "P-2", end)
	err := store.InsertPolicies(ctx, []model.Policy{good, orphan})
	require.Error(t, err)

	got, err := store.GetPolicies(ctx, servicePolicyFilter(testOwner, ""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPolicies_ArchiveAndRenew(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	company := seedCompany(t, store, "ABC Sigorta")
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	old := newPolicy("", company.ID, "P-1", end)
	require.NoError(t, store.InsertPolicies(ctx, []model.Policy{old}))

	dup := newPolicy("", company.ID, "P-1", end.AddDate(1, 0, 0))
	err := store.InsertPolicies(ctx, []model.Policy{dup})
	require.ErrorIs(t, err, common.ErrDuplicateEntry, "a second active record for the same key must be rejected")

	at := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.ArchivePolicy(ctx, old.ID, at))
	require.ErrorIs(t, store.ArchivePolicy(ctx, old.ID, at), common.ErrNotFound)

	dup.PreviousPolicyID = old.ID
	require.NoError(t, store.InsertPolicies(ctx, []model.Policy{dup}))

	active, err := store.GetPolicies(ctx, servicePolicyFilter(testOwner, ""))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, old.ID, active[0].PreviousPolicyID)

	all, err := store.GetPolicies(ctx, allPolicies(testOwner))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.PolicyStatusArchived, all[0].Status)
	require.NotNil(t, all[0].ArchivedAt)
	assert.True(t, at.Equal(*all[0].ArchivedAt))
}

func TestPolicies_Update(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	company := seedCompany(t, store, "ABC Sigorta")
	p := newPolicy("", company.ID, "P-1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.InsertPolicies(ctx, []model.Policy{p}))

	p.DocumentPath = "/docs/P-1.pdf"
	require.NoError(t, store.UpdatePolicy(ctx, &p))

	got, err := store.GetPolicies(ctx, servicePolicyFilter(testOwner, ""))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/docs/P-1.pdf", got[0].DocumentPath)

	p.ID = "missing"
	assert.ErrorIs(t, store.UpdatePolicy(ctx, &p), common.ErrNotFound)
}

func TestClaims(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	client := seedClient(t, store, "12345678901")
	claimDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := model.Claim{
		ID:           uuid.NewString(),
		OwnerID:      testOwner,
		ClientID:     client.ID,
		PolicyNumber: "OUT-OF-SYSTEM-9",
		ClaimNumber:  "H-1",
		ClaimDate:    claimDate,
		Amount:       decimal.Zero,
		Status:       model.ClaimStatusOpen,
	}
	require.NoError(t, store.InsertClaims(ctx, []model.Claim{c}))

	dup := c
	dup.ID = uuid.NewString()
	require.ErrorIs(t, store.InsertClaims(ctx, []model.Claim{dup}), common.ErrDuplicateEntry)

	c.Amount = decimal.NewFromInt(5000)
	c.Status = model.ClaimStatusClosed
	require.NoError(t, store.UpdateClaim(ctx, &c))

	from := claimDate.AddDate(0, 0, -1)
	to := claimDate.AddDate(0, 0, 1)
	got, err := store.GetClaims(ctx, claimRange(testOwner, &from, &to))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ClaimStatusClosed, got[0].Status)
	assert.Equal(t, "5000", got[0].Amount.String())
	assert.Empty(t, got[0].PolicyID)
	assert.Equal(t, "OUT-OF-SYSTEM-9", got[0].PolicyNumber)

	later := claimDate.AddDate(0, 1, 0)
	got, err = store.GetClaims(ctx, claimRange(testOwner, &later, nil))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = store.GetClaims(ctx, claimRange(testOwner, &to, &from))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err           error
		name          string
		wantRetryable bool
		wantDuplicate bool
	}{
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, wantRetryable: true},
		{name: "locked", err: fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), wantRetryable: true},
		{name: "unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, wantDuplicate: true},
		{name: "foreign key", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}},
		{name: "other", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.wantRetryable, common.IsRetryable(got))
			assert.Equal(t, tt.wantDuplicate, errors.Is(got, common.ErrDuplicateEntry))
		})
	}
	assert.NoError(t, classifyError(nil))
}
