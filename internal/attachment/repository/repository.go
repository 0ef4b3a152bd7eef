package repository

import (
	"context"

	"taskhub/backend/internal/attachment/domain"
)

// Repository defines persistence for attachment metadata, scoped to one organization per call.
type Repository interface {
	// ListByTask returns the task's attachments, newest first.
	ListByTask(ctx context.Context, orgID, taskID string) ([]*domain.Attachment, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Attachment, error)
	// Create inserts a when its task belongs to a.OrgID. It reports false when the task is missing.
	Create(ctx context.Context, a *domain.Attachment) (bool, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
	StoragePathsByTask(ctx context.Context, orgID, taskID string) ([]string, error)
	StoragePathsByProject(ctx context.Context, orgID, projectID string) ([]string, error)
}
