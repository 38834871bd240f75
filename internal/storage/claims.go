package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/service"
)

const claimColumns = `id, owner_id, client_id, policy_id, policy_number, claim_number,
	claim_date, amount, status, description, created_at, updated_at`

// GetClaims returns claims matching the filter in insertion order.
func (s *SQLiteStorage) GetClaims(ctx context.Context, filter service.ClaimFilter) ([]model.Claim, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: %v is before %v", ErrInvalidDateRange, *filter.To, *filter.From)
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
	if filter.From != nil {
		where = append(where, "claim_date >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where = append(where, "claim_date <= ?")
		args = append(args, filter.To.UTC())
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// InsertClaims writes all claims in one transaction.
func (s *SQLiteStorage) InsertClaims(ctx context.Context, claims []model.Claim) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(claims) == 0 {
		return nil
	}
	for i := range claims {
		if err := validateClaim(&claims[i]); err != nil {
			return fmt.Errorf("claim at index %d: %w", i, err)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO claims (`+claimColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		now := time.Now().UTC()
		for i := range claims {
			c := &claims[i]
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
			if c.UpdatedAt.IsZero() {
				c.UpdatedAt = c.CreatedAt
			}
			if _, err := stmt.ExecContext(ctx,
				c.ID, c.OwnerID, c.ClientID, nullString(c.PolicyID), nullString(c.PolicyNumber),
				c.ClaimNumber, c.ClaimDate, c.Amount, string(c.Status), nullString(c.Description),
				c.CreatedAt, c.UpdatedAt,
			); err != nil {
				return classifyError(fmt.Errorf("failed to insert claim %s: %w", c.ClaimNumber, err))
			}
		}
		return nil
	})
}

// UpdateClaim rewrites the reconciled fields of an existing claim.
func (s *SQLiteStorage) UpdateClaim(ctx context.Context, c *model.Claim) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClaim(c); err != nil {
		return err
	}

	c.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE claims
		SET client_id = ?, policy_id = ?, policy_number = ?, claim_date = ?, amount = ?,
			status = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, c.ClientID, nullString(c.PolicyID), nullString(c.PolicyNumber), c.ClaimDate, c.Amount,
		string(c.Status), nullString(c.Description), c.UpdatedAt, c.ID)
	if err != nil {
		return classifyError(fmt.Errorf("failed to update claim %s: %w", c.ClaimNumber, err))
	}
	return expectOneRow(res, "claim "+c.ID)
}

func scanClaim(r rowScanner) (*model.Claim, error) {
	var c model.Claim
	var status string
	var policyID, policyNumber, description sql.NullString

	err := r.Scan(
		&c.ID, &c.OwnerID, &c.ClientID, &policyID, &policyNumber, &c.ClaimNumber,
		&c.ClaimDate, &c.Amount, &status, &description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan claim: %w", err)
	}
	c.Status = model.ClaimStatus(status)
	c.PolicyID = policyID.String
	c.PolicyNumber = policyNumber.String
	c.Description = description.String
	return &c, nil
}
