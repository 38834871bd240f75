package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS companies (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL UNIQUE COLLATE NOCASE,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS clients (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL,
					national_id TEXT,
					tax_id TEXT,
					phone TEXT,
					email TEXT,
					address TEXT,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_clients_owner ON clients(owner_id)`,
				`CREATE INDEX idx_clients_national_id ON clients(owner_id, national_id)`,
				`CREATE INDEX idx_clients_tax_id ON clients(owner_id, tax_id)`,

				`CREATE TABLE IF NOT EXISTS policies (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					client_id TEXT REFERENCES clients(id),
					company_id TEXT NOT NULL REFERENCES companies(id),
					policy_number TEXT NOT NULL,
					type TEXT NOT NULL,
					start_date DATETIME NOT NULL,
					end_date DATETIME NOT NULL,
					premium TEXT NOT NULL,
					plate TEXT,
					address TEXT,
					status TEXT NOT NULL DEFAULT 'active',
					archived_at DATETIME,
					previous_policy_id TEXT REFERENCES policies(id),
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_policies_owner ON policies(owner_id)`,
				`CREATE INDEX idx_policies_number ON policies(policy_number)`,

				`CREATE TABLE IF NOT EXISTS claims (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					client_id TEXT NOT NULL REFERENCES clients(id),
					policy_id TEXT REFERENCES policies(id),
					policy_number TEXT,
					claim_number TEXT NOT NULL,
					claim_date DATETIME NOT NULL,
					amount TEXT NOT NULL,
					status TEXT NOT NULL,
					description TEXT,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					UNIQUE(owner_id, claim_number)
				)`,
				`CREATE INDEX idx_claims_date ON claims(claim_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add document attachments to policies",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE policies ADD COLUMN document_path TEXT`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Enforce one active policy per natural key",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE UNIQUE INDEX idx_policies_active_key
				ON policies(owner_id, policy_number, company_id, type)
				WHERE status = 'active'`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Debug("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return v, nil
}
