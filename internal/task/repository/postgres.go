package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/task/domain"
)

const taskColumns = `id, organization_id, project_id, title, description, status,
	COALESCE(created_by::text, ''), created_at, updated_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var status string
	if err := s.Scan(&t.ID, &t.OrgID, &t.ProjectID, &t.Title, &t.Description, &status,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	return &t, nil
}

// ListByProject returns the project's tasks in creation order.
func (r *PostgresRepository) ListByProject(ctx context.Context, orgID, projectID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE organization_id = $1 AND project_id = $2
		 ORDER BY created_at ASC, id`, orgID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID returns the task, or nil if it does not exist in orgID.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND organization_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// Create persists t and fills ID, CreatedAt and UpdatedAt. The project must belong to t.OrgID;
// the insert selects from projects so a foreign project inserts nothing and returns sql.ErrNoRows.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if err := t.Validate(); err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (organization_id, project_id, title, description, status, created_by)
		 SELECT p.organization_id, p.id, $3, $4, $5, NULLIF($6, '')::uuid
		 FROM projects p WHERE p.id = $2 AND p.organization_id = $1
		 RETURNING id, created_at, updated_at`,
		t.OrgID, t.ProjectID, t.Title, t.Description, string(t.Status), t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update writes the mutable fields of t.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}
	err := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET title = $3, description = $4, status = $5, updated_at = now()
		 WHERE id = $1 AND organization_id = $2
		 RETURNING updated_at`,
		t.ID, t.OrgID, t.Title, t.Description, string(t.Status),
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the task with its comments and attachments.
func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ExportRows returns every project of orgID joined with its tasks, projects oldest first and tasks
// in creation order. Projects without tasks yield one row with an empty TaskID.
func (r *PostgresRepository) ExportRows(ctx context.Context, orgID string) ([]domain.ExportRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, COALESCE(t.id::text, ''), COALESCE(t.title, ''), COALESCE(t.status, ''),
		        COALESCE(t.created_at, p.created_at)
		 FROM projects p
		 LEFT JOIN tasks t ON t.project_id = p.id AND t.organization_id = p.organization_id
		 WHERE p.organization_id = $1
		 ORDER BY p.created_at ASC, p.id, t.created_at ASC NULLS FIRST, t.id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ExportRow{}
	for rows.Next() {
		var row domain.ExportRow
		var status string
		if err := rows.Scan(&row.ProjectID, &row.ProjectName, &row.TaskID, &row.TaskTitle, &status,
			&row.TaskCreatedAt); err != nil {
			return nil, err
		}
		row.TaskStatus = domain.Status(status)
		out = append(out, row)
	}
	return out, rows.Err()
}
