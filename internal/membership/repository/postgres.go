package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a membership repository that uses the given db (pool or transaction) for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByUserAndOrg returns the membership for user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	var (
		m    domain.Membership
		role string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, organization_id, role, created_at FROM users_organizations
		 WHERE user_id = $1 AND organization_id = $2`, userID, orgID,
	).Scan(&m.UserID, &m.OrgID, &role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}

// ListForUser returns the user's memberships joined with organization names.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]domain.OrgMembership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.name, uo.role
		 FROM users_organizations uo
		 JOIN organizations o ON o.id = uo.organization_id
		 WHERE uo.user_id = $1
		 ORDER BY uo.created_at ASC, uo.organization_id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.OrgMembership{}
	for rows.Next() {
		var (
			m    domain.OrgMembership
			role string
		)
		if err := rows.Scan(&m.OrgID, &m.OrgName, &role); err != nil {
			return nil, err
		}
		// Unknown stored roles are carried as-is; the permission check denies them.
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create persists the membership.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	if _, err := domain.ParseRole(string(m.Role)); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO users_organizations (user_id, organization_id, role) VALUES ($1, $2, $3) RETURNING created_at`,
		m.UserID, m.OrgID, string(m.Role),
	).Scan(&m.CreatedAt)
}
