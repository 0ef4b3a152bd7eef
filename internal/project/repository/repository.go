package repository

import (
	"context"

	"taskhub/backend/internal/project/domain"
)

// Repository defines persistence for projects. Every method is scoped to one organization; a
// project of another organization behaves as missing.
type Repository interface {
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
	// Delete removes the project with its tasks, comments, attachments and share tokens. It reports
	// whether a row was deleted.
	Delete(ctx context.Context, orgID, id string) (bool, error)
}
