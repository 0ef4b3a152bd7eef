// Package handler serves the task endpoints.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/backend/internal/audit"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	projectdomain "taskhub/backend/internal/project/domain"
	"taskhub/backend/internal/storage"
	"taskhub/backend/internal/task/domain"
	"taskhub/backend/internal/task/repository"
)

// ProjectGetter loads a project within an organization.
type ProjectGetter interface {
	GetByID(ctx context.Context, orgID, id string) (*projectdomain.Project, error)
}

// BlobKeyLister returns the storage keys of a task's attachments.
type BlobKeyLister interface {
	StoragePathsByTask(ctx context.Context, orgID, taskID string) ([]string, error)
}

// Handler serves task routes.
type Handler struct {
	repo     repository.Repository
	projects ProjectGetter
	keys     BlobKeyLister
	blobs    storage.BlobStore
	guard    *rbac.Guard
	audit    audit.AuditLogger
	binder   *httpx.Binder
	logger   *zap.Logger
}

// NewHandler returns a task Handler.
func NewHandler(repo repository.Repository, projects ProjectGetter, keys BlobKeyLister, blobs storage.BlobStore,
	guard *rbac.Guard, auditLogger audit.AuditLogger, binder *httpx.Binder, logger *zap.Logger) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, projects: projects, keys: keys, blobs: blobs, guard: guard,
		audit: auditLogger, binder: binder, logger: logger}
}

// Register mounts the task routes on api.
func (h *Handler) Register(api fiber.Router) {
	api.Get("/projects/:projectId/tasks", h.List)
	api.Post("/projects/:projectId/tasks", h.Create)
	api.Get("/tasks/:taskId", h.Get)
	api.Patch("/tasks/:taskId", h.Update)
	api.Delete("/tasks/:taskId", h.Delete)
}

// taskView is a task with the name of its project.
type taskView struct {
	*domain.Task
	ProjectName string `json:"projectName"`
}

func (h *Handler) project(c *fiber.Ctx, orgID string) (*projectdomain.Project, error) {
	id, err := h.binder.UUIDParam(c, "projectId")
	if err != nil {
		return nil, err
	}
	p, err := h.projects.GetByID(c.UserContext(), orgID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, rbac.ErrNotFound
	}
	return p, nil
}

func (h *Handler) task(c *fiber.Ctx, orgID string) (*domain.Task, error) {
	id, err := h.binder.UUIDParam(c, "taskId")
	if err != nil {
		return nil, err
	}
	t, err := h.repo.GetByID(c.UserContext(), orgID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rbac.ErrNotFound
	}
	return t, nil
}

// List handles GET /api/projects/:projectId/tasks.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Task)
	if err != nil {
		return err
	}
	p, err := h.project(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	tasks, err := h.repo.ListByProject(ctx, sess.ActiveOrgID, p.ID)
	if err != nil {
		return err
	}
	return c.JSON(tasks)
}

// Create handles POST /api/projects/:projectId/tasks.
func (h *Handler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Create, rbac.Task)
	if err != nil {
		return err
	}
	var in domain.CreateInput
	if err := h.binder.Bind(c, &in); err != nil {
		return err
	}
	p, err := h.project(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	t := &domain.Task{
		OrgID:       sess.ActiveOrgID,
		ProjectID:   p.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.Status(in.Status),
		CreatedBy:   sess.User.ID,
	}
	if err := h.repo.Create(ctx, t); err != nil {
		return err
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionTaskCreate,
		Resource:   "task",
		ResourceID: t.ID,
		Details:    map[string]any{"taskId": t.ID, "title": t.Title, "projectId": p.ID},
	})
	return c.Status(fiber.StatusCreated).JSON(t)
}

// Get handles GET /api/tasks/:taskId.
func (h *Handler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Task)
	if err != nil {
		return err
	}
	t, err := h.task(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	view := taskView{Task: t}
	if p, err := h.projects.GetByID(ctx, sess.ActiveOrgID, t.ProjectID); err == nil && p != nil {
		view.ProjectName = p.Name
	}
	return c.JSON(view)
}

// Update handles PATCH /api/tasks/:taskId.
func (h *Handler) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Update, rbac.Task)
	if err != nil {
		return err
	}
	var in domain.UpdateInput
	if err := h.binder.Bind(c, &in); err != nil {
		return err
	}
	if in.Empty() {
		return fiber.NewError(fiber.StatusBadRequest, "Nothing to update")
	}
	t, err := h.task(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	from := t.Status
	in.Apply(t)
	ok, err := h.repo.Update(ctx, t)
	if err != nil {
		return err
	}
	if !ok {
		return rbac.ErrNotFound
	}
	details := map[string]any{"taskId": t.ID, "projectId": t.ProjectID}
	if in.Status != nil {
		details["fromStatus"] = string(from)
		details["toStatus"] = string(t.Status)
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionTaskUpdate,
		Resource:   "task",
		ResourceID: t.ID,
		Details:    details,
	})
	return c.JSON(t)
}

// Delete handles DELETE /api/tasks/:taskId.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Delete, rbac.Task)
	if err != nil {
		return err
	}
	t, err := h.task(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	keys, err := h.keys.StoragePathsByTask(ctx, sess.ActiveOrgID, t.ID)
	if err != nil {
		return err
	}
	ok, err := h.repo.Delete(ctx, sess.ActiveOrgID, t.ID)
	if err != nil {
		return err
	}
	if !ok {
		return rbac.ErrNotFound
	}
	if err := storage.DeleteAll(ctx, h.blobs, keys); err != nil {
		h.logger.Warn("remove task attachments", zap.String("task_id", t.ID), zap.Error(err))
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionTaskDelete,
		Resource:   "task",
		ResourceID: t.ID,
		Details:    map[string]any{"taskId": t.ID, "projectId": t.ProjectID},
	})
	return c.SendStatus(fiber.StatusNoContent)
}
