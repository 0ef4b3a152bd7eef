package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskhub/backend/internal/attachment/domain"
	"taskhub/backend/internal/db"
)

const attachmentColumns = `id, organization_id, task_id, user_id, filename, storage_path, file_type,
	file_size_bytes, created_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an attachment repository that uses the given db for persistence.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttachment(s scanner) (*domain.Attachment, error) {
	var a domain.Attachment
	if err := s.Scan(&a.ID, &a.OrgID, &a.TaskID, &a.UserID, &a.Filename, &a.StoragePath, &a.FileType,
		&a.FileSizeBytes, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByTask returns the task's attachments, newest first.
func (r *PostgresRepository) ListByTask(ctx context.Context, orgID, taskID string) ([]*domain.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments
		 WHERE organization_id = $1 AND task_id = $2 ORDER BY created_at DESC, id`, orgID, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID returns the attachment, or nil if it does not exist in orgID.
func (r *PostgresRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Attachment, error) {
	a, err := scanAttachment(r.db.QueryRowContext(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE id = $1 AND organization_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Create inserts the metadata through a select on tasks so a task of another organization inserts nothing.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Attachment) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, err
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO attachments (organization_id, task_id, user_id, filename, storage_path, file_type, file_size_bytes)
		 SELECT t.organization_id, t.id, $3, $4, $5, $6, $7 FROM tasks t WHERE t.id = $2 AND t.organization_id = $1
		 RETURNING id, created_at`,
		a.OrgID, a.TaskID, a.UserID, a.Filename, a.StoragePath, a.FileType, a.FileSizeBytes,
	).Scan(&a.ID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the metadata row. The caller removes the blob.
func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// StoragePathsByTask returns the blob keys of the task's attachments.
func (r *PostgresRepository) StoragePathsByTask(ctx context.Context, orgID, taskID string) ([]string, error) {
	return r.paths(ctx,
		`SELECT storage_path FROM attachments WHERE organization_id = $1 AND task_id = $2`, orgID, taskID)
}

// StoragePathsByProject returns the blob keys of every attachment on the project's tasks.
func (r *PostgresRepository) StoragePathsByProject(ctx context.Context, orgID, projectID string) ([]string, error) {
	return r.paths(ctx,
		`SELECT a.storage_path FROM attachments a JOIN tasks t ON t.id = a.task_id
		 WHERE a.organization_id = $1 AND t.project_id = $2`, orgID, projectID)
}

func (r *PostgresRepository) paths(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
