package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/identity/domain"
	membershipdomain "taskhub/backend/internal/membership/domain"
	membershiprepo "taskhub/backend/internal/membership/repository"
	orgdomain "taskhub/backend/internal/organization/domain"
	orgrepo "taskhub/backend/internal/organization/repository"
	userdomain "taskhub/backend/internal/user/domain"
	userrepo "taskhub/backend/internal/user/repository"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given pool for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// CreateAccount inserts the organization, user and admin membership in one transaction. Either all
// three rows exist afterwards or none do.
func (r *PostgresRepository) CreateAccount(ctx context.Context, orgName, email, passwordHash, salt string) (*domain.Account, error) {
	acct := &domain.Account{OrgID: uuid.NewString(), UserID: uuid.NewString()}
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := orgrepo.NewPostgresRepository(tx).Create(ctx, &orgdomain.Organization{ID: acct.OrgID, Name: orgName}); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		user := &userdomain.User{ID: acct.UserID, Email: email, PasswordHash: passwordHash, Salt: salt}
		if err := userrepo.NewPostgresRepository(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		m := &membershipdomain.Membership{UserID: acct.UserID, OrgID: acct.OrgID, Role: membershipdomain.RoleAdmin}
		if err := membershiprepo.NewPostgresRepository(tx).Create(ctx, m); err != nil {
			return fmt.Errorf("create membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}
