package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is a task's workflow state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ParseStatus returns the Status for s or an error for any other value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusTodo, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("task: unknown status %q", s)
}

// Task is a unit of work inside a project.
type Task struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"orgId"`
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks required fields and the status.
func (t *Task) Validate() error {
	if t.OrgID == "" || t.ProjectID == "" {
		return errors.New("task: organization and project are required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("task: title is required")
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}

// CreateInput is the body of a task creation request. Status defaults to todo.
type CreateInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"max=5000"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=todo in_progress done"`
}

// UpdateInput is the body of a task update. Omitted fields keep their value.
type UpdateInput struct {
	Title       *string `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=5000"`
	Status      *string `json:"status" form:"status" validate:"omitempty,oneof=todo in_progress done"`
}

// Apply copies the set fields of in onto t.
func (in UpdateInput) Apply(t *Task) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = Status(*in.Status)
	}
}

// Empty reports whether in changes nothing.
func (in UpdateInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil
}

// PublicTask is the read-only view of a task on a shared project page.
type PublicTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// ExportRow is one line of the organization export: a project with one of its tasks, or with no
// task at all (TaskID empty) when the project has none.
type ExportRow struct {
	ProjectID     string
	ProjectName   string
	TaskID        string
	TaskTitle     string
	TaskStatus    Status
	TaskCreatedAt time.Time
}
