package domain

import (
	"errors"
	"strings"
	"time"
)

// Project groups tasks inside one organization.
type Project struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"orgId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate checks required fields.
func (p *Project) Validate() error {
	if p.OrgID == "" {
		return errors.New("project: organization id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project: name is required")
	}
	return nil
}

// CreateInput is the body of a project creation request.
type CreateInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"max=2000"`
}
