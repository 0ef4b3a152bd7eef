package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/project/domain"
)

const projectColumns = `id, organization_id, name, description, COALESCE(created_by::text, ''), created_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a project repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListByOrg returns the organization's projects, newest first.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE organization_id = $1 ORDER BY created_at DESC, id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Project{}
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// GetByID returns the project, or nil if it does not exist in orgID.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND organization_id = $2`, id, orgID,
	).Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persists p and fills ID and CreatedAt from the database.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO projects (organization_id, name, description, created_by)
		 VALUES ($1, $2, $3, NULLIF($4, '')::uuid) RETURNING id, created_at`,
		p.OrgID, p.Name, p.Description, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
}

// Delete removes the project; dependent rows go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
