package domain

import (
	"errors"
	"strings"
	"time"
)

// Organization is a tenant; every project, task, comment and attachment belongs to exactly one.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Validate validates the organization for persistence.
func (o *Organization) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("organization name is required")
	}
	return nil
}
