// Package testutil provides test helpers shared by the import, api and
// analytics packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/storage"
	"github.com/google/uuid"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage   *storage.SQLiteStorage
	t         *testing.T
	Companies map[string]model.Company
}

// SetupTestDB creates a new in-memory test database seeded with the given
// insurance companies. It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, "ABC Sigorta", "Türkiye Sigorta")
//	abc := db.Company("ABC Sigorta")
func SetupTestDB(t *testing.T, companies ...string) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{
		Storage:   store,
		Companies: make(map[string]model.Company, len(companies)),
		t:         t,
	}
	for _, name := range companies {
		c, err := store.CreateCompany(ctx, name)
		if err != nil {
			t.Fatalf("failed to seed company %q: %v", name, err)
		}
		db.Companies[name] = *c
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return db
}

// Company returns the seeded company with the given name or fails the test.
func (db *TestDB) Company(name string) model.Company {
	db.t.Helper()
	c, ok := db.Companies[name]
	if !ok {
		db.t.Fatalf("company %q was not seeded", name)
	}
	return c
}

// AddClient stores a client owned by owner and returns it.
func (db *TestDB) AddClient(owner, name, nationalID, taxID string) model.Client {
	db.t.Helper()
	c := model.Client{
		ID:         uuid.NewString(),
		OwnerID:    owner,
		Name:       name,
		NationalID: nationalID,
		TaxID:      taxID,
	}
	if err := db.Storage.InsertClients(context.Background(), []model.Client{c}); err != nil {
		db.t.Fatalf("failed to seed client %q: %v", name, err)
	}
	return c
}

// AddPolicies stores policies, assigning ids and the active status where unset.
func (db *TestDB) AddPolicies(policies ...model.Policy) {
	db.t.Helper()
	for i := range policies {
		if policies[i].ID == "" {
			policies[i].ID = uuid.NewString()
		}
		if policies[i].Status == "" {
			policies[i].Status = model.PolicyStatusActive
		}
	}
	if err := db.Storage.InsertPolicies(context.Background(), policies); err != nil {
		db.t.Fatalf("failed to seed policies: %v", err)
	}
}

// AddClaims stores claims.
func (db *TestDB) AddClaims(claims ...model.Claim) {
	db.t.Helper()
	for i := range claims {
		if claims[i].ID == "" {
			claims[i].ID = uuid.NewString()
		}
	}
	if err := db.Storage.InsertClaims(context.Background(), claims); err != nil {
		db.t.Fatalf("failed to seed claims: %v", err)
	}
}
