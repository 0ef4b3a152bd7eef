// Package sessiontest injects resolved sessions into requests for handler tests.
package sessiontest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	membershipdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/session/domain"
	"taskhub/backend/internal/session/resolver"
	userdomain "taskhub/backend/internal/user/domain"
)

// Identity describes the caller a test request runs as.
type Identity struct {
	UserID string
	Email  string
	OrgID  string
	Role   membershipdomain.Role
}

// Admin returns an admin identity in orgID.
func Admin(orgID string) *Identity {
	return &Identity{UserID: "00000000-0000-0000-0000-0000000000a1", Email: "admin@example.com", OrgID: orgID, Role: membershipdomain.RoleAdmin}
}

// Member returns a member identity in orgID.
func Member(orgID string) *Identity {
	return &Identity{UserID: "00000000-0000-0000-0000-0000000000b2", Email: "member@example.com", OrgID: orgID, Role: membershipdomain.RoleMember}
}

type directory struct {
	id *Identity
}

func (d directory) Verify(token string) (security.SessionPayload, error) {
	if d.id == nil {
		return security.SessionPayload{}, errors.New("no identity")
	}
	return security.SessionPayload{SessionID: "session-test", UserID: d.id.UserID, OrgID: d.id.OrgID}, nil
}

func (d directory) FindLive(ctx context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id, UserID: d.id.UserID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (d directory) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return &userdomain.User{ID: id, Email: d.id.Email}, nil
}

func (d directory) ListForUser(ctx context.Context, userID string) ([]membershipdomain.OrgMembership, error) {
	return []membershipdomain.OrgMembership{{OrgID: d.id.OrgID, OrgName: "Test Org", Role: d.id.Role}}, nil
}

// Context returns a context whose request memo resolves to id. A nil id resolves to no session.
func Context(ctx context.Context, id *Identity) context.Context {
	d := directory{id: id}
	token := ""
	if id != nil {
		token = "test-token"
	}
	return resolver.WithRequest(ctx, resolver.New(d, d, d, d).NewRequest(token))
}

// Middleware makes every request run as id.
func Middleware(id *Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(Context(c.UserContext(), id))
		return c.Next()
	}
}
