package repository

import (
	"context"

	"taskhub/backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	// ListForUser returns the user's memberships with organization names, ordered by membership
	// creation time then organization id. The first entry is the login default.
	ListForUser(ctx context.Context, userID string) ([]domain.OrgMembership, error)
	Create(ctx context.Context, m *domain.Membership) error
}
