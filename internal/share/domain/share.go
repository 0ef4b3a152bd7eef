package domain

import (
	"errors"
	"time"

	taskdomain "taskhub/backend/internal/task/domain"
)

// ShareToken grants read-only public access to one project. Only the bcrypt hash of the secret
// is stored; the row id is the lookup half of the public token.
type ShareToken struct {
	ID         string
	OrgID      string
	ProjectID  string
	SecretHash string
	CreatedBy  string
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// Active reports whether the token has not been revoked.
func (t *ShareToken) Active() bool {
	return t != nil && t.RevokedAt == nil
}

// Validate checks required fields.
func (t *ShareToken) Validate() error {
	if t.OrgID == "" || t.ProjectID == "" {
		return errors.New("share token: organization and project are required")
	}
	if t.SecretHash == "" {
		return errors.New("share token: secret hash is required")
	}
	return nil
}

// Link is returned once when a share token is created; the secret is not recoverable afterwards.
type Link struct {
	TokenID string `json:"tokenId"`
	URL     string `json:"url"`
}

// PublicProject is the project as shown on its public share page.
type PublicProject struct {
	Project PublicProjectInfo       `json:"project"`
	Tasks   []taskdomain.PublicTask `json:"tasks"`
}

// PublicProjectInfo carries the project fields a share page may show.
type PublicProjectInfo struct {
	Name string `json:"name"`
}
