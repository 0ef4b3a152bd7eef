package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/session/domain"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db  db.DBTX
	ttl time.Duration
	now func() time.Time
}

// NewPostgresRepository returns a session store with the given TTL (domain.DefaultTTL when <= 0).
func NewPostgresRepository(conn db.DBTX, ttl time.Duration) *PostgresRepository {
	if ttl <= 0 {
		ttl = domain.DefaultTTL
	}
	return &PostgresRepository{db: conn, ttl: ttl, now: time.Now}
}

// Create inserts a new session row and returns its id and expiry.
func (r *PostgresRepository) Create(ctx context.Context, userID string) (string, time.Time, error) {
	id := uuid.NewString()
	expiresAt := r.now().UTC().Add(r.ttl)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`, id, userID, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return id, expiresAt, nil
}

// FindLive returns the session for id if it has not expired, or nil.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindLive(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var s domain.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1 AND expires_at > $2`,
		id, r.now().UTC(),
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes the session row. Idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteByUser removes every session of the user.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes sessions past their expiry and returns how many were removed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, r.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
