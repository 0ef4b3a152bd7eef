package repository

import (
	"context"

	"taskhub/backend/internal/share/domain"
)

// Repository persists share tokens.
type Repository interface {
	// Rotate revokes the project's active tokens and inserts t in one statement. It reports false
	// when the project does not belong to t.OrgID.
	Rotate(ctx context.Context, t *domain.ShareToken) (bool, error)
	// Revoke revokes the project's active tokens and returns how many were revoked.
	Revoke(ctx context.Context, orgID, projectID string) (int64, error)
	// GetActive returns the unrevoked token with id, or nil. It is not org-scoped: the public
	// share page has no session.
	GetActive(ctx context.Context, id string) (*domain.ShareToken, error)
}
