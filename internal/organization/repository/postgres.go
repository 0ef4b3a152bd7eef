package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/organization/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an organization repository that uses the given db (pool or transaction) for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	return scanOrg(r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM organizations WHERE id = $1`, id))
}

// GetByName returns the oldest organization with the given name, or nil if none.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	return scanOrg(r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE name = $1 ORDER BY created_at, id LIMIT 1`, name))
}

// Create persists the organization. The organization must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Organization) error {
	if err := o.Validate(); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO organizations (id, name) VALUES ($1, $2) RETURNING created_at`, o.ID, o.Name,
	).Scan(&o.CreatedAt)
}

func scanOrg(row *sql.Row) (*domain.Organization, error) {
	var o domain.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
