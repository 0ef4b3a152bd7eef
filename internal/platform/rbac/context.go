package rbac

import (
	"context"

	"taskhub/backend/internal/session/domain"
	"taskhub/backend/internal/session/resolver"
)

// CheckContext resolves the session of the request carried by ctx and runs Check against it.
// A store failure while resolving is returned as-is so callers surface a server error.
func CheckContext(ctx context.Context, orgID string, action Action, resource Resource) error {
	sess, err := resolver.SessionFromContext(ctx)
	if err != nil {
		return err
	}
	return Check(sess, orgID, action, resource)
}

// RequireActiveOrg resolves the session from ctx, checks action on resource in the session's own
// active organization and returns the session. It is the common entry point of resource handlers.
func RequireActiveOrg(ctx context.Context, action Action, resource Resource) (*domain.Resolved, error) {
	sess, err := resolver.SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrAuthenticationRequired
	}
	if err := Check(sess, sess.ActiveOrgID, action, resource); err != nil {
		return nil, err
	}
	return sess, nil
}

// DecisionRecorder counts permission decisions.
type DecisionRecorder interface {
	AuthzDecision(ctx context.Context, err error)
}

// Guard runs RequireActiveOrg and reports each decision to a recorder. The zero value and a nil
// *Guard both work without recording.
type Guard struct {
	recorder DecisionRecorder
}

// NewGuard returns a Guard reporting to recorder, which may be nil.
func NewGuard(recorder DecisionRecorder) *Guard {
	return &Guard{recorder: recorder}
}

// Require is RequireActiveOrg plus decision recording.
func (g *Guard) Require(ctx context.Context, action Action, resource Resource) (*domain.Resolved, error) {
	sess, err := RequireActiveOrg(ctx, action, resource)
	g.record(ctx, err)
	return sess, err
}

// RequireAdmin resolves the session and requires the admin role in its active organization.
func (g *Guard) RequireAdmin(ctx context.Context) (*domain.Resolved, error) {
	sess, err := resolver.SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		err = ErrAuthenticationRequired
	} else {
		err = RequireAdmin(sess, sess.ActiveOrgID)
	}
	g.record(ctx, err)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (g *Guard) record(ctx context.Context, err error) {
	if g == nil || g.recorder == nil {
		return
	}
	g.recorder.AuthzDecision(ctx, err)
}
