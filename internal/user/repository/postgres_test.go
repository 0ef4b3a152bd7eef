package repository

import (
	"context"
	"testing"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/db/dbtest"
	"taskhub/backend/internal/user/domain"

	"github.com/google/uuid"
)

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewPostgresRepository(conn)

	u := &domain.User{ID: uuid.NewString(), Email: " A@X.com ", PasswordHash: "hash", Salt: "salt"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.ID != u.ID || got.Salt != "salt" || got.PasswordHash != "hash" {
		t.Errorf("GetByEmail = %+v", got)
	}

	got, err = repo.GetByID(ctx, uuid.NewString())
	if err != nil || got != nil {
		t.Errorf("GetByID(missing) = %+v, %v; want nil, nil", got, err)
	}

	dup := &domain.User{ID: uuid.NewString(), Email: "a@x.com", PasswordHash: "h", Salt: "s"}
	if err := repo.Create(ctx, dup); !db.IsUniqueViolation(err) {
		t.Errorf("duplicate Create err = %v, want unique violation", err)
	}
}
