// Package handler serves the project endpoints and the dashboard page.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/backend/internal/audit"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/project/domain"
	"taskhub/backend/internal/project/repository"
	"taskhub/backend/internal/storage"
)

// BlobKeyLister returns the storage keys of every attachment under a project.
type BlobKeyLister interface {
	StoragePathsByProject(ctx context.Context, orgID, projectID string) ([]string, error)
}

// Handler serves /api/projects.
type Handler struct {
	repo   repository.Repository
	keys   BlobKeyLister
	blobs  storage.BlobStore
	guard  *rbac.Guard
	audit  audit.AuditLogger
	binder *httpx.Binder
	logger *zap.Logger
}

// NewHandler returns a project Handler.
func NewHandler(repo repository.Repository, keys BlobKeyLister, blobs storage.BlobStore, guard *rbac.Guard,
	auditLogger audit.AuditLogger, binder *httpx.Binder, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, keys: keys, blobs: blobs, guard: guard, audit: auditLogger, binder: binder, logger: logger}
}

// Register mounts the project routes on api.
func (h *Handler) Register(api fiber.Router) {
	api.Get("/projects", h.List)
	api.Post("/projects", h.Create)
	api.Get("/projects/:projectId", h.Get)
	api.Delete("/projects/:projectId", h.Delete)
}

// List handles GET /api/projects.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Project)
	if err != nil {
		return err
	}
	projects, err := h.repo.ListByOrg(ctx, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	return c.JSON(projects)
}

// Get handles GET /api/projects/:projectId.
func (h *Handler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Project)
	if err != nil {
		return err
	}
	id, err := h.binder.UUIDParam(c, "projectId")
	if err != nil {
		return err
	}
	p, err := h.repo.GetByID(ctx, sess.ActiveOrgID, id)
	if err != nil {
		return err
	}
	if p == nil {
		return rbac.ErrNotFound
	}
	return c.JSON(p)
}

// Create handles POST /api/projects.
func (h *Handler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Create, rbac.Project)
	if err != nil {
		return err
	}
	var in domain.CreateInput
	if err := h.binder.Bind(c, &in); err != nil {
		return err
	}
	p := &domain.Project{OrgID: sess.ActiveOrgID, Name: in.Name, Description: in.Description, CreatedBy: sess.User.ID}
	if err := h.repo.Create(ctx, p); err != nil {
		return err
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionProjectCreate,
		Resource:   "project",
		ResourceID: p.ID,
		Details:    map[string]any{"projectId": p.ID, "name": p.Name},
	})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// Delete handles DELETE /api/projects/:projectId. Stored attachment files are removed after the
// rows are gone; a file that cannot be removed is logged and left behind.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Delete, rbac.Project)
	if err != nil {
		return err
	}
	id, err := h.binder.UUIDParam(c, "projectId")
	if err != nil {
		return err
	}
	keys, err := h.keys.StoragePathsByProject(ctx, sess.ActiveOrgID, id)
	if err != nil {
		return err
	}
	deleted, err := h.repo.Delete(ctx, sess.ActiveOrgID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return rbac.ErrNotFound
	}
	if err := storage.DeleteAll(ctx, h.blobs, keys); err != nil {
		h.logger.Warn("remove project attachments", zap.String("project_id", id), zap.Error(err))
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionProjectDelete,
		Resource:   "project",
		ResourceID: id,
		Details:    map[string]any{"projectId": id},
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// Dashboard handles GET /dashboard: the signed-in user, the active organization and its projects.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Project)
	if err != nil {
		return err
	}
	projects, err := h.repo.ListByOrg(ctx, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	active, _ := sess.Membership(sess.ActiveOrgID)
	return c.JSON(fiber.Map{
		"user":      sess.User,
		"activeOrg": active,
		"projects":  projects,
	})
}
