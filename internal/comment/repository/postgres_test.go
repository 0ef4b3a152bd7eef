package repository

import (
	"context"
	"testing"

	"taskhub/backend/internal/comment/domain"
	"taskhub/backend/internal/db/dbtest"
)

func TestPostgresRepository_Comments(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := context.Background()
	repo := NewPostgresRepository(conn)
	orgA := dbtest.SeedOrg(t, conn, "A")
	orgB := dbtest.SeedOrg(t, conn, "B")
	user := dbtest.SeedUser(t, conn, "author@x.com")

	var project, task string
	if err := conn.QueryRow(`INSERT INTO projects (organization_id, name) VALUES ($1, 'P') RETURNING id`, orgA).Scan(&project); err != nil {
		t.Fatal(err)
	}
	if err := conn.QueryRow(`INSERT INTO tasks (organization_id, project_id, title) VALUES ($1, $2, 'T') RETURNING id`, orgA, project).Scan(&task); err != nil {
		t.Fatal(err)
	}

	first := &domain.Comment{OrgID: orgA, TaskID: task, UserID: user, Body: "first"}
	if ok, err := repo.Create(ctx, first); err != nil || !ok {
		t.Fatalf("Create = %v, %v", ok, err)
	}
	if ok, err := repo.Create(ctx, &domain.Comment{OrgID: orgA, TaskID: task, UserID: user, Body: "second"}); err != nil || !ok {
		t.Fatalf("Create = %v, %v", ok, err)
	}
	if ok, err := repo.Create(ctx, &domain.Comment{OrgID: orgB, TaskID: task, UserID: user, Body: "sneaky"}); err != nil || ok {
		t.Errorf("Create in foreign task = %v, %v; want false", ok, err)
	}

	list, err := repo.ListByTask(ctx, orgA, task)
	if err != nil {
		t.Fatalf("ListByTask: %v", err)
	}
	if len(list) != 2 || list[0].Body != "first" || list[0].UserEmail != "author@x.com" {
		t.Errorf("ListByTask = %+v", list)
	}
	if got, _ := repo.GetByID(ctx, orgB, first.ID); got != nil {
		t.Error("comment must not be visible from another org")
	}
	if ok, err := repo.Delete(ctx, orgA, first.ID); err != nil || !ok {
		t.Errorf("Delete = %v, %v", ok, err)
	}
}
