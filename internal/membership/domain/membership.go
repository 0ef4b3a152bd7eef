package domain

import (
	"fmt"
	"time"
)

// Role is a user's role within one organization. The set is closed: only RoleAdmin and RoleMember
// are ever persisted (enforced by a CHECK constraint) or granted anything.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole returns the Role for s or an error for any other value.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleMember:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Membership links a user to an organization with a role.
type Membership struct {
	UserID    string
	OrgID     string
	Role      Role
	CreatedAt time.Time
}

// OrgMembership is one entry of a user's organization list, as carried by a resolved session.
type OrgMembership struct {
	OrgID   string `json:"id"`
	OrgName string `json:"name"`
	Role    Role   `json:"role"`
}
