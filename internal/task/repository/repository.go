package repository

import (
	"context"

	"taskhub/backend/internal/task/domain"
)

// Repository defines persistence for tasks, scoped to one organization per call.
type Repository interface {
	// ListByProject returns the project's tasks, oldest first.
	ListByProject(ctx context.Context, orgID, projectID string) ([]*domain.Task, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	// Update writes title, description and status and bumps UpdatedAt. It reports whether the task existed.
	Update(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
}
