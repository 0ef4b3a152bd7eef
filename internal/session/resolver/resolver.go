// Package resolver turns a session cookie value into a hydrated, live session.
package resolver

import (
	"context"
	"fmt"

	membershipdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/session/domain"
	userdomain "taskhub/backend/internal/user/domain"
)

// Outcome says how far resolution got.
type Outcome int

const (
	// NoCookie means no token was presented; nothing was looked up.
	NoCookie Outcome = iota
	// InvalidToken means the token failed signature or payload checks.
	InvalidToken
	// SessionGone means the token verified but its session is expired or deleted.
	SessionGone
	// UserGone means the session's user no longer exists.
	UserGone
	// Live means the session resolved.
	Live
)

func (o Outcome) String() string {
	switch o {
	case NoCookie:
		return "no_cookie"
	case InvalidToken:
		return "invalid_token"
	case SessionGone:
		return "session_gone"
	case UserGone:
		return "user_gone"
	case Live:
		return "live"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ClearsCookie reports whether the caller should expire the session cookie.
func (o Outcome) ClearsCookie() bool {
	return o == InvalidToken || o == SessionGone || o == UserGone
}

// TokenVerifier verifies signed session tokens.
type TokenVerifier interface {
	Verify(token string) (security.SessionPayload, error)
}

// SessionFinder looks up unexpired sessions.
type SessionFinder interface {
	FindLive(ctx context.Context, id string) (*domain.Session, error)
}

// UserGetter loads users by id.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// MembershipLister lists a user's organization memberships.
type MembershipLister interface {
	ListForUser(ctx context.Context, userID string) ([]membershipdomain.OrgMembership, error)
}

// Resolver hydrates sessions. It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	tokens      TokenVerifier
	sessions    SessionFinder
	users       UserGetter
	memberships MembershipLister
}

// New returns a Resolver.
func New(tokens TokenVerifier, sessions SessionFinder, users UserGetter, memberships MembershipLister) *Resolver {
	return &Resolver{tokens: tokens, sessions: sessions, users: users, memberships: memberships}
}

// Resolve verifies token, confirms the session is live and loads the user with memberships.
// A nil session with a nil error means "not logged in"; Outcome says why. A non-nil error is a
// store failure.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Resolved, Outcome, error) {
	if token == "" {
		return nil, NoCookie, nil
	}
	payload, err := r.tokens.Verify(token)
	if err != nil {
		return nil, InvalidToken, nil
	}

	sess, err := r.sessions.FindLive(ctx, payload.SessionID)
	if err != nil {
		return nil, SessionGone, fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return nil, SessionGone, nil
	}
	if sess.UserID != payload.UserID {
		return nil, InvalidToken, nil
	}

	user, err := r.users.GetByID(ctx, payload.UserID)
	if err != nil {
		return nil, UserGone, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, UserGone, nil
	}
	orgs, err := r.memberships.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, UserGone, fmt.Errorf("list memberships: %w", err)
	}

	return &domain.Resolved{
		User: domain.SessionUser{
			ID:            user.ID,
			Email:         user.Email,
			Organizations: orgs,
		},
		SessionID:   sess.ID,
		ActiveOrgID: payload.OrgID,
	}, Live, nil
}
