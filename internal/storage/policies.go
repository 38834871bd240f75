package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/service"
)

const policyColumns = `id, owner_id, client_id, company_id, policy_number, type,
	start_date, end_date, premium, plate, address, status, archived_at,
	previous_policy_id, document_path, created_at, updated_at`

// GetPolicies returns policies matching the filter in insertion order.
// Archived records are excluded unless the filter asks for them.
func (s *SQLiteStorage) GetPolicies(ctx context.Context, filter service.PolicyFilter) ([]model.Policy, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.ClientID != "" {
		where = append(where, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.CompanyID != "" {
		where = append(where, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.PolicyNumber != "" {
		where = append(where, "policy_number = ?")
		args = append(args, filter.PolicyNumber)
	}
	if !filter.IncludeArchived {
		where = append(where, "status = ?")
		args = append(args, model.PolicyStatusActive)
	}

	query := `SELECT ` + policyColumns + ` FROM policies`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var policies []model.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *p)
	}
	return policies, rows.Err()
}

// InsertPolicies writes all policies in one transaction; any failure leaves
// none of them stored.
func (s *SQLiteStorage) InsertPolicies(ctx context.Context, policies []model.Policy) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(policies) == 0 {
		return nil
	}
	for i := range policies {
		if err := validatePolicy(&policies[i]); err != nil {
			return fmt.Errorf("policy at index %d: %w", i, err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO policies (`+policyColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		now := time.Now().UTC()
		for i := range policies {
			p := &policies[i]
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			if p.UpdatedAt.IsZero() {
				p.UpdatedAt = p.CreatedAt
			}
			if _, err := stmt.ExecContext(ctx,
				p.ID, p.OwnerID, nullString(p.ClientID), p.CompanyID, p.PolicyNumber, string(p.Type),
				p.StartDate, p.EndDate, p.Premium, nullString(p.Plate), nullString(p.Address),
				string(p.Status), p.ArchivedAt, nullString(p.PreviousPolicyID), nullString(p.DocumentPath),
				p.CreatedAt, p.UpdatedAt,
			); err != nil {
				return classifyError(fmt.Errorf("failed to insert policy %s: %w", p.PolicyNumber, err))
			}
		}
		return nil
	})
}

// UpdatePolicy rewrites the mutable fields of an existing policy.
func (s *SQLiteStorage) UpdatePolicy(ctx context.Context, p *model.Policy) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePolicy(p); err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE policies
		SET client_id = ?, start_date = ?, end_date = ?, premium = ?, plate = ?,
			address = ?, document_path = ?, updated_at = ?
		WHERE id = ?
	`, nullString(p.ClientID), p.StartDate, p.EndDate, p.Premium, nullString(p.Plate),
		nullString(p.Address), nullString(p.DocumentPath), p.UpdatedAt, p.ID)
	if err != nil {
		return classifyError(fmt.Errorf("failed to update policy %s: %w", p.PolicyNumber, err))
	}
	return expectOneRow(res, "policy "+p.ID)
}

// ArchivePolicy moves an active policy to the archived state.
func (s *SQLiteStorage) ArchivePolicy(ctx context.Context, id string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE policies
		SET status = ?, archived_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, model.PolicyStatusArchived, at, at, id, model.PolicyStatusActive)
	if err != nil {
		return classifyError(fmt.Errorf("failed to archive policy %s: %w", id, err))
	}
	return expectOneRow(res, "active policy "+id)
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return nil
}

func scanPolicy(r rowScanner) (*model.Policy, error) {
	var p model.Policy
	var typ, status string
	var clientID, plate, address, previousID, documentPath sql.NullString
	var archivedAt sql.NullTime

	err := r.Scan(
		&p.ID, &p.OwnerID, &clientID, &p.CompanyID, &p.PolicyNumber, &typ,
		&p.StartDate, &p.EndDate, &p.Premium, &plate, &address, &status, &archivedAt,
		&previousID, &documentPath, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan policy: %w", err)
	}

	p.Type = model.PolicyType(typ)
	p.Status = model.PolicyStatus(status)
	p.ClientID = clientID.String
	p.Plate = plate.String
	p.Address = address.String
	p.PreviousPolicyID = previousID.String
	p.DocumentPath = documentPath.String
	if archivedAt.Valid {
		t := archivedAt.Time
		p.ArchivedAt = &t
	}
	return &p, nil
}
