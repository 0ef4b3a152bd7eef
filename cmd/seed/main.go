// seed inserts development sample data: organization "Acme Inc", an admin and a member user, and a
// project with a few tasks. Idempotent: does nothing when the admin user already exists.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	commentdomain "taskhub/backend/internal/comment/domain"
	commentrepo "taskhub/backend/internal/comment/repository"
	"taskhub/backend/internal/config"
	"taskhub/backend/internal/db"
	identityrepo "taskhub/backend/internal/identity/repository"
	membershipdomain "taskhub/backend/internal/membership/domain"
	membershiprepo "taskhub/backend/internal/membership/repository"
	projectdomain "taskhub/backend/internal/project/domain"
	projectrepo "taskhub/backend/internal/project/repository"
	"taskhub/backend/internal/security"
	taskdomain "taskhub/backend/internal/task/domain"
	taskrepo "taskhub/backend/internal/task/repository"
	userdomain "taskhub/backend/internal/user/domain"
	userrepo "taskhub/backend/internal/user/repository"
)

var seedTasks = []struct {
	title  string
	status taskdomain.Status
}{
	{"Write the launch announcement", taskdomain.StatusDone},
	{"Review pricing page", taskdomain.StatusInProgress},
	{"Prepare onboarding checklist", taskdomain.StatusTodo},
}

func main() {
	orgName := flag.String("org", "Acme Inc", "organization name")
	adminEmail := flag.String("admin-email", "admin@example.com", "admin user email")
	memberEmail := flag.String("member-email", "member@example.com", "member user email")
	password := flag.String("password", "Admin123!@#", "password for both users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if existing, err := userrepo.NewPostgresRepository(conn).GetByEmail(ctx, userdomain.NormalizeEmail(*adminEmail)); err != nil {
		log.Fatalf("seed check: %v", err)
	} else if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", *adminEmail)
		return
	}

	hasher := security.NewPasswordHasher()
	saltAndHash, err := hasher.Hash(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	salt, _, _ := security.Split(saltAndHash)

	acct, err := identityrepo.NewPostgresRepository(conn).CreateAccount(ctx, *orgName, userdomain.NormalizeEmail(*adminEmail), saltAndHash, salt)
	if err != nil {
		log.Fatalf("create admin account: %v", err)
	}
	log.Printf("Organization %q (%s) with admin %s", *orgName, acct.OrgID, *adminEmail)

	err = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		member := &userdomain.User{ID: uuid.NewString(), Email: userdomain.NormalizeEmail(*memberEmail), PasswordHash: saltAndHash, Salt: salt}
		if err := userrepo.NewPostgresRepository(tx).Create(ctx, member); err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		m := &membershipdomain.Membership{UserID: member.ID, OrgID: acct.OrgID, Role: membershipdomain.RoleMember}
		if err := membershiprepo.NewPostgresRepository(tx).Create(ctx, m); err != nil {
			return fmt.Errorf("create membership: %w", err)
		}

		p := &projectdomain.Project{OrgID: acct.OrgID, Name: "Website launch", Description: "Sample project", CreatedBy: acct.UserID}
		if err := projectrepo.NewPostgresRepository(tx).Create(ctx, p); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		tasks := taskrepo.NewPostgresRepository(tx)
		comments := commentrepo.NewPostgresRepository(tx)
		for _, st := range seedTasks {
			t := &taskdomain.Task{OrgID: acct.OrgID, ProjectID: p.ID, Title: st.title, Status: st.status, CreatedBy: acct.UserID}
			if err := tasks.Create(ctx, t); err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			c := &commentdomain.Comment{OrgID: acct.OrgID, TaskID: t.ID, UserID: member.ID, Body: "Looks good to me."}
			if _, err := comments.Create(ctx, c); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
		log.Printf("Member %s, project %q with %d tasks", *memberEmail, p.Name, len(seedTasks))
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
}
