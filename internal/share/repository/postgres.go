package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/share/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a share token repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Rotate revokes the previous tokens and inserts the new one. The insert selects from projects so
// a project of another organization inserts nothing.
func (r *PostgresRepository) Rotate(ctx context.Context, t *domain.ShareToken) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}
	err := r.db.QueryRowContext(ctx,
		`WITH revoked AS (
			UPDATE share_tokens SET revoked_at = now()
			WHERE organization_id = $1 AND project_id = $2 AND revoked_at IS NULL
		)
		INSERT INTO share_tokens (organization_id, project_id, secret_hash, created_by)
		SELECT p.organization_id, p.id, $3, NULLIF($4, '')::uuid FROM projects p
		WHERE p.id = $2 AND p.organization_id = $1
		RETURNING id, created_at`,
		t.OrgID, t.ProjectID, t.SecretHash, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Revoke marks every active token of the project revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, orgID, projectID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE share_tokens SET revoked_at = now()
		 WHERE organization_id = $1 AND project_id = $2 AND revoked_at IS NULL`, orgID, projectID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetActive returns the unrevoked token with id, or nil if none exists.
func (r *PostgresRepository) GetActive(ctx context.Context, id string) (*domain.ShareToken, error) {
	var (
		t         domain.ShareToken
		createdBy sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, project_id, secret_hash, created_by, created_at, revoked_at
		 FROM share_tokens WHERE id = $1 AND revoked_at IS NULL`, id,
	).Scan(&t.ID, &t.OrgID, &t.ProjectID, &t.SecretHash, &createdBy, &t.CreatedAt, &t.RevokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.CreatedBy = createdBy.String
	return &t, nil
}
