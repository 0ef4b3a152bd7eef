package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"taskhub/backend/internal/db/dbtest"
	"taskhub/backend/internal/project/domain"
)

func TestPostgresRepository_OrgScoping(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewPostgresRepository(conn)
	orgA := dbtest.SeedOrg(t, conn, "A")
	orgB := dbtest.SeedOrg(t, conn, "B")
	user := dbtest.SeedUser(t, conn, "a@x.com")

	first := &domain.Project{OrgID: orgA, Name: "First", CreatedBy: user}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := &domain.Project{OrgID: orgA, Name: "Second"}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("ID = %q, want uuid", first.ID)
	}

	list, err := repo.ListByOrg(ctx, orgA)
	if err != nil {
		t.Fatalf("ListByOrg: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("ListByOrg = %+v, want newest first", list)
	}
	if list[1].CreatedBy != user {
		t.Errorf("CreatedBy = %q, want %q", list[1].CreatedBy, user)
	}

	if got, err := repo.GetByID(ctx, orgB, first.ID); err != nil || got != nil {
		t.Errorf("GetByID from other org = %+v, %v; want nil, nil", got, err)
	}
	if deleted, err := repo.Delete(ctx, orgB, first.ID); err != nil || deleted {
		t.Errorf("Delete from other org = %v, %v; want false", deleted, err)
	}
	if deleted, err := repo.Delete(ctx, orgA, first.ID); err != nil || !deleted {
		t.Errorf("Delete = %v, %v; want true", deleted, err)
	}
	if got, _ := repo.GetByID(ctx, orgA, first.ID); got != nil {
		t.Error("project should be gone")
	}
}
