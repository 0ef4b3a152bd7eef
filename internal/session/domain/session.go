package domain

import (
	"time"

	membershipdomain "taskhub/backend/internal/membership/domain"
)

// DefaultTTL is the lifetime of a session row and of its cookie.
const DefaultTTL = 24 * time.Hour

// Session is a persisted login. It is live while ExpiresAt is in the future.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionUser is the hydrated user of a resolved session.
type SessionUser struct {
	ID            string                           `json:"id"`
	Email         string                           `json:"email"`
	Organizations []membershipdomain.OrgMembership `json:"organizations"`
}

// Resolved is a session that passed signature, liveness and user checks.
type Resolved struct {
	User        SessionUser `json:"user"`
	SessionID   string      `json:"sessionId"`
	ActiveOrgID string      `json:"activeOrgId"`
}

// Membership returns the user's membership in orgID, if any.
func (r *Resolved) Membership(orgID string) (membershipdomain.OrgMembership, bool) {
	if r == nil {
		return membershipdomain.OrgMembership{}, false
	}
	for _, m := range r.User.Organizations {
		if m.OrgID == orgID {
			return m, true
		}
	}
	return membershipdomain.OrgMembership{}, false
}
