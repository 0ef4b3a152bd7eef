package repository

import (
	"context"

	"taskhub/backend/internal/identity/domain"
)

// Repository creates accounts.
type Repository interface {
	// CreateAccount creates an organization, a user and the user's admin membership atomically.
	CreateAccount(ctx context.Context, orgName, email, passwordHash, salt string) (*domain.Account, error)
}
