// Package handler serves the comment endpoints.
package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/audit"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/comment/domain"
	"taskhub/backend/internal/comment/repository"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	taskdomain "taskhub/backend/internal/task/domain"
)

// TaskGetter loads a task within an organization.
type TaskGetter interface {
	GetByID(ctx context.Context, orgID, id string) (*taskdomain.Task, error)
}

// Handler serves comment routes.
type Handler struct {
	repo   repository.Repository
	tasks  TaskGetter
	guard  *rbac.Guard
	audit  audit.AuditLogger
	binder *httpx.Binder
}

// NewHandler returns a comment Handler.
func NewHandler(repo repository.Repository, tasks TaskGetter, guard *rbac.Guard, auditLogger audit.AuditLogger, binder *httpx.Binder) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{repo: repo, tasks: tasks, guard: guard, audit: auditLogger, binder: binder}
}

// Register mounts the comment routes on api.
func (h *Handler) Register(api fiber.Router) {
	api.Get("/tasks/:taskId/comments", h.List)
	api.Post("/tasks/:taskId/comments", h.Create)
	api.Delete("/comments/:commentId", h.Delete)
}

func (h *Handler) task(c *fiber.Ctx, orgID string) (*taskdomain.Task, error) {
	id, err := h.binder.UUIDParam(c, "taskId")
	if err != nil {
		return nil, err
	}
	t, err := h.tasks.GetByID(c.UserContext(), orgID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rbac.ErrNotFound
	}
	return t, nil
}

// List handles GET /api/tasks/:taskId/comments.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Comment)
	if err != nil {
		return err
	}
	t, err := h.task(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	comments, err := h.repo.ListByTask(ctx, sess.ActiveOrgID, t.ID)
	if err != nil {
		return err
	}
	return c.JSON(comments)
}

// Create handles POST /api/tasks/:taskId/comments.
func (h *Handler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Create, rbac.Comment)
	if err != nil {
		return err
	}
	var in domain.CreateInput
	if err := h.binder.Bind(c, &in); err != nil {
		return err
	}
	t, err := h.task(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	cm := &domain.Comment{OrgID: sess.ActiveOrgID, TaskID: t.ID, UserID: sess.User.ID, UserEmail: sess.User.Email, Body: in.Body}
	ok, err := h.repo.Create(ctx, cm)
	if err != nil {
		return err
	}
	if !ok {
		return rbac.ErrNotFound
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionCommentCreate,
		Resource:   "comment",
		ResourceID: cm.ID,
		Details:    map[string]any{"commentId": cm.ID, "taskId": t.ID, "projectId": t.ProjectID},
	})
	return c.Status(fiber.StatusCreated).JSON(cm)
}

// Delete handles DELETE /api/comments/:commentId.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Delete, rbac.Comment)
	if err != nil {
		return err
	}
	id, err := h.binder.UUIDParam(c, "commentId")
	if err != nil {
		return err
	}
	ok, err := h.repo.Delete(ctx, sess.ActiveOrgID, id)
	if err != nil {
		return err
	}
	if !ok {
		return rbac.ErrNotFound
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionCommentDelete,
		Resource:   "comment",
		ResourceID: id,
		Details:    map[string]any{"commentId": id},
	})
	return c.SendStatus(fiber.StatusNoContent)
}
