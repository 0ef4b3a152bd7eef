// Package handler serves the organization audit log.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/platform/rbac"
)

// ListLimit is the number of entries returned by the audit log endpoint.
const ListLimit = 100

// Lister reads audit entries of one organization.
type Lister interface {
	ListByOrg(ctx context.Context, orgID string, limit int) ([]*domain.AuditLog, error)
}

// Handler serves audit log routes.
type Handler struct {
	repo  Lister
	guard *rbac.Guard
}

// NewHandler returns an audit log Handler.
func NewHandler(repo Lister, guard *rbac.Guard) *Handler {
	return &Handler{repo: repo, guard: guard}
}

// Register mounts the audit routes on api.
func (h *Handler) Register(api fiber.Router) {
	api.Get("/audit-log", h.List)
}

// List handles GET /api/audit-log: the newest entries of the active organization. Admin only.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.RequireAdmin(ctx)
	if err != nil {
		return err
	}
	entries, err := h.repo.ListByOrg(ctx, sess.ActiveOrgID, ListLimit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*domain.AuditLog{}
	}
	return c.JSON(entries)
}
