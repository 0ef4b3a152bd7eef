// Package rbac decides whether a resolved session may perform an action on a resource type in an
// organization. Decisions depend only on the session's membership role; row ownership is checked
// by callers through organization-filtered queries.
package rbac

import (
	"errors"
	"fmt"

	membershipdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/session/domain"
)

var (
	// ErrAuthenticationRequired means there is no resolved session.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden means the session does not genuinely belong to the requested organization.
	ErrForbidden = errors.New("forbidden")
	// ErrPermissionDenied means the caller's role does not allow the action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound means the resource does not exist in the caller's organization.
	ErrNotFound = errors.New("not found")
)

// Action is an operation on a resource.
type Action int

const (
	Create Action = iota + 1
	Read
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Read:
		return "read"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Resource is a tenant-owned resource type.
type Resource int

const (
	Project Resource = iota + 1
	Task
	Comment
	Attachment
)

func (r Resource) String() string {
	switch r {
	case Project:
		return "project"
	case Task:
		return "task"
	case Comment:
		return "comment"
	case Attachment:
		return "attachment"
	}
	return fmt.Sprintf("resource(%d)", int(r))
}

// Check returns nil if sess may perform action on resource in orgID.
func Check(sess *domain.Resolved, orgID string, action Action, resource Resource) error {
	if sess == nil {
		return ErrAuthenticationRequired
	}
	if orgID == "" || sess.ActiveOrgID != orgID {
		return ErrForbidden
	}
	m, ok := sess.Membership(orgID)
	if !ok {
		return ErrForbidden
	}
	switch m.Role {
	case membershipdomain.RoleAdmin:
		return nil
	case membershipdomain.RoleMember:
		if memberAllows(action, resource) {
			return nil
		}
		return ErrPermissionDenied
	}
	return ErrPermissionDenied
}

// memberAllows is the member capability table. Unknown actions and resources deny.
func memberAllows(action Action, resource Resource) bool {
	switch action {
	case Read:
		switch resource {
		case Project, Task, Comment, Attachment:
			return true
		}
	case Create, Update:
		switch resource {
		case Task, Comment, Attachment:
			return true
		case Project:
			return false
		}
	case Delete:
		return false
	}
	return false
}

// RequireAdmin returns nil if sess is an admin of its active organization orgID. Used for
// surfaces that are not one of the four resource types, such as the audit log.
func RequireAdmin(sess *domain.Resolved, orgID string) error {
	if err := Check(sess, orgID, Read, Project); err != nil {
		return err
	}
	m, _ := sess.Membership(orgID)
	if m.Role != membershipdomain.RoleAdmin {
		return ErrPermissionDenied
	}
	return nil
}

// IsDenial reports whether err is one of the authorization errors of this package.
func IsDenial(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrPermissionDenied)
}
