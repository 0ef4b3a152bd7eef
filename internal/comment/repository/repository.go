package repository

import (
	"context"

	"taskhub/backend/internal/comment/domain"
)

// Repository defines persistence for comments, scoped to one organization per call.
type Repository interface {
	// ListByTask returns the task's comments oldest first, with author emails.
	ListByTask(ctx context.Context, orgID, taskID string) ([]*domain.Comment, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Comment, error)
	// Create inserts c when its task belongs to c.OrgID. It reports false when the task is missing.
	Create(ctx context.Context, c *domain.Comment) (bool, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
}
