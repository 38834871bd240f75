package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/model"
)

const clientColumns = `id, owner_id, name, national_id, tax_id, phone, email, address, created_at`

// GetClients returns the clients owned by an operator in creation order.
func (s *SQLiteStorage) GetClients(ctx context.Context, ownerID string) ([]model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE owner_id = ?
		ORDER BY created_at, rowid
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// GetClient returns a single client by id.
func (s *SQLiteStorage) GetClient(ctx context.Context, id string) (*model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, common.ErrNotFound)
	}
	return c, err
}

// InsertClients writes all clients in one transaction.
func (s *SQLiteStorage) InsertClients(ctx context.Context, clients []model.Client) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(clients) == 0 {
		return nil
	}
	for i := range clients {
		if err := validateClient(&clients[i]); err != nil {
			return fmt.Errorf("client at index %d: %w", i, err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO clients (`+clientColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		now := time.Now().UTC()
		for i := range clients {
			c := &clients[i]
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if _, err := stmt.ExecContext(ctx,
				c.ID, c.OwnerID, c.Name,
				nullString(c.NationalID), nullString(c.TaxID),
				nullString(c.Phone), nullString(c.Email), nullString(c.Address),
				c.CreatedAt,
			); err != nil {
				return classifyError(fmt.Errorf("failed to insert client %s: %w", c.ID, err))
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(r rowScanner) (*model.Client, error) {
	var c model.Client
	var nationalID, taxID, phone, email, address sql.NullString
	err := r.Scan(&c.ID, &c.OwnerID, &c.Name, &nationalID, &taxID, &phone, &email, &address, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	c.NationalID = nationalID.String
	c.TaxID = taxID.String
	c.Phone = phone.String
	c.Email = email.String
	c.Address = address.String
	return &c, nil
}
