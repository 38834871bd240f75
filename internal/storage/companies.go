package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/google/uuid"
)

// GetCompanies returns every insurance company ordered by name.
func (s *SQLiteStorage) GetCompanies(ctx context.Context) ([]model.Company, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM companies
		ORDER BY name COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// CreateCompany adds an insurance company. Names are unique without regard to case.
func (s *SQLiteStorage) CreateCompany(ctx context.Context, name string) (*model.Company, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	c := &model.Company{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, created_at) VALUES (?, ?, ?)
	`, c.ID, c.Name, c.CreatedAt)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to create company %q: %w", name, err))
	}
	return c, nil
}
