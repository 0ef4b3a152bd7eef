package domain

import "time"

// Audit actions.
const (
	ActionUserSignup       = "user.signup"
	ActionUserLoginSuccess = "user.login.success"
	ActionUserLoginFailed  = "user.login.failed"
	ActionUserLogout       = "user.logout"
	ActionSessionSwitchOrg = "session.switch_org"
	ActionProjectCreate    = "project.create"
	ActionProjectDelete    = "project.delete"
	ActionTaskCreate       = "task.create"
	ActionTaskUpdate       = "task.update"
	ActionTaskDelete       = "task.delete"
	ActionCommentCreate    = "comment.create"
	ActionCommentDelete    = "comment.delete"
	ActionAttachmentCreate = "attachment.create"
	ActionAttachmentDelete = "attachment.delete"
	ActionShareCreate      = "share.create"
	ActionShareRevoke      = "share.revoke"
)

// AuditLog represents an audit event. OrgID and UserID may be empty (e.g. failed login for an
// unknown email). Metadata is a JSON object or empty.
type AuditLog struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"orgId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	UserEmail  string    `json:"userEmail,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource,omitempty"`
	ResourceID string    `json:"resourceId,omitempty"`
	IP         string    `json:"ip,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
