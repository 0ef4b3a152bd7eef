package repository

import (
	"context"
	"database/sql"

	"taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// ListByOrg returns up to limit audit logs for the org, newest first.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.organization_id, a.user_id, COALESCE(u.email, ''), a.action, a.resource,
		        a.resource_id, a.ip, a.metadata, a.created_at
		 FROM audit_log a
		 LEFT JOIN users u ON u.id = a.user_id
		 WHERE a.organization_id = $1
		 ORDER BY a.created_at DESC, a.id
		 LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.AuditLog{}
	for rows.Next() {
		var (
			a           domain.AuditLog
			org, userID sql.NullString
		)
		if err := rows.Scan(&a.ID, &org, &userID, &a.UserEmail, &a.Action, &a.Resource,
			&a.ResourceID, &a.IP, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.OrgID = org.String
		a.UserID = userID.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, organization_id, user_id, action, resource, resource_id, metadata, ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, nullable(a.OrgID), nullable(a.UserID), a.Action, a.Resource, a.ResourceID, a.Metadata, a.IP, a.CreatedAt)
	return err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
