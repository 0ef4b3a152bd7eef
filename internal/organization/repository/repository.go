package repository

import (
	"context"

	"taskhub/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetByName(ctx context.Context, name string) (*domain.Organization, error)
	Create(ctx context.Context, o *domain.Organization) error
}
