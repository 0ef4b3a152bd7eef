package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/comment/domain"
	"taskhub/backend/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a comment repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const commentSelect = `SELECT c.id, c.organization_id, c.task_id, c.user_id, COALESCE(u.email, ''), c.body, c.created_at
	FROM comments c LEFT JOIN users u ON u.id = c.user_id`

// ListByTask returns the task's comments in creation order.
func (r *PostgresRepository) ListByTask(ctx context.Context, orgID, taskID string) ([]*domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		commentSelect+` WHERE c.organization_id = $1 AND c.task_id = $2 ORDER BY c.created_at ASC, c.id`,
		orgID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.OrgID, &c.TaskID, &c.UserID, &c.UserEmail, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetByID returns the comment, or nil if it does not exist in orgID.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1 AND c.organization_id = $2`, id, orgID).
		Scan(&c.ID, &c.OrgID, &c.TaskID, &c.UserID, &c.UserEmail, &c.Body, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts the comment through a select on tasks so a task of another organization inserts nothing.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Comment) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (organization_id, task_id, user_id, body)
		 SELECT t.organization_id, t.id, $3, $4 FROM tasks t WHERE t.id = $2 AND t.organization_id = $1
		 RETURNING id, created_at`,
		c.OrgID, c.TaskID, c.UserID, c.Body,
	).Scan(&c.ID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the comment.
func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
