package domain

import (
	"errors"
	"strings"
	"time"
)

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	UserEmail string    `json:"userEmail,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks required fields.
func (c *Comment) Validate() error {
	if c.OrgID == "" || c.TaskID == "" || c.UserID == "" {
		return errors.New("comment: organization, task and user are required")
	}
	if strings.TrimSpace(c.Body) == "" {
		return errors.New("comment: body cannot be empty")
	}
	return nil
}

// CreateInput is the body of a new comment.
type CreateInput struct {
	Body string `json:"body" form:"body" validate:"required,max=5000"`
}
