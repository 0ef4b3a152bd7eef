package repository

import (
	"context"
	"time"

	"taskhub/backend/internal/session/domain"
)

// Repository is the session store.
type Repository interface {
	// Create inserts a session for userID expiring one TTL from now.
	Create(ctx context.Context, userID string) (id string, expiresAt time.Time, err error)
	// FindLive returns the session only while it is unexpired; expired and missing both return nil.
	FindLive(ctx context.Context, id string) (*domain.Session, error)
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
