// Package handler serves share link management and the public share page.
package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/share/domain"
	"taskhub/backend/internal/share/service"
)

// ShareService is the share link behavior used by the handler.
type ShareService interface {
	Create(ctx context.Context, orgID, userID, projectID string) (*domain.Link, error)
	Revoke(ctx context.Context, orgID, userID, projectID string) error
	Resolve(ctx context.Context, token string) (*domain.PublicProject, error)
}

// Handler serves share routes.
type Handler struct {
	svc    ShareService
	guard  *rbac.Guard
	binder *httpx.Binder
}

// NewHandler returns a share Handler.
func NewHandler(svc ShareService, guard *rbac.Guard, binder *httpx.Binder) *Handler {
	return &Handler{svc: svc, guard: guard, binder: binder}
}

// Register mounts the authenticated routes on api and the public page on app.
func (h *Handler) Register(app, api fiber.Router) {
	api.Post("/projects/:projectId/share", h.Create)
	api.Delete("/projects/:projectId/share", h.Revoke)
	app.Get(service.SharePathPrefix+":token", h.View)
}

// Create handles POST /api/projects/:projectId/share.
func (h *Handler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Update, rbac.Project)
	if err != nil {
		return err
	}
	projectID, err := h.binder.UUIDParam(c, "projectId")
	if err != nil {
		return err
	}
	link, err := h.svc.Create(ctx, sess.ActiveOrgID, sess.User.ID, projectID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// Revoke handles DELETE /api/projects/:projectId/share.
func (h *Handler) Revoke(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Update, rbac.Project)
	if err != nil {
		return err
	}
	projectID, err := h.binder.UUIDParam(c, "projectId")
	if err != nil {
		return err
	}
	if err := h.svc.Revoke(ctx, sess.ActiveOrgID, sess.User.ID, projectID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// View handles GET /share/:token. Every failure to match a live link is a 404.
func (h *Handler) View(c *fiber.Ctx) error {
	view, err := h.svc.Resolve(c.UserContext(), c.Params("token"))
	if errors.Is(err, service.ErrShareNotFound) {
		return rbac.ErrNotFound
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(view)
}
