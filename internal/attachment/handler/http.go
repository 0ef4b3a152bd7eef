// Package handler serves attachment upload, download and deletion.
package handler

import (
	"context"
	"errors"
	"mime"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/backend/internal/attachment/domain"
	"taskhub/backend/internal/attachment/repository"
	"taskhub/backend/internal/audit"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/storage"
	taskdomain "taskhub/backend/internal/task/domain"
)

// TaskGetter loads a task within an organization.
type TaskGetter interface {
	GetByID(ctx context.Context, orgID, id string) (*taskdomain.Task, error)
}

// Handler serves attachment routes.
type Handler struct {
	repo     repository.Repository
	tasks    TaskGetter
	blobs    storage.BlobStore
	maxBytes int64
	guard    *rbac.Guard
	audit    audit.AuditLogger
	binder   *httpx.Binder
	logger   *zap.Logger
}

// NewHandler returns an attachment Handler. maxBytes <= 0 uses domain.DefaultMaxBytes.
func NewHandler(repo repository.Repository, tasks TaskGetter, blobs storage.BlobStore, maxBytes int64,
	guard *rbac.Guard, auditLogger audit.AuditLogger, binder *httpx.Binder, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxBytes
	}
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, tasks: tasks, blobs: blobs, maxBytes: maxBytes, guard: guard,
		audit: auditLogger, binder: binder, logger: logger}
}

// Register mounts the attachment routes on api.
func (h *Handler) Register(api fiber.Router) {
	api.Post("/attachments", h.Upload)
	api.Get("/tasks/:taskId/attachments", h.List)
	api.Get("/attachments/:attachmentId/download", h.Download)
	api.Delete("/attachments/:attachmentId", h.Delete)
}

func (h *Handler) task(ctx context.Context, orgID, id string) (*taskdomain.Task, error) {
	t, err := h.tasks.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, rbac.ErrNotFound
	}
	return t, nil
}

func (h *Handler) attachment(c *fiber.Ctx, orgID string) (*domain.Attachment, error) {
	id, err := h.binder.UUIDParam(c, "attachmentId")
	if err != nil {
		return nil, err
	}
	a, err := h.repo.GetByID(c.UserContext(), orgID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, rbac.ErrNotFound
	}
	return a, nil
}

type uploadForm struct {
	TaskID string `form:"taskId" validate:"required,uuid"`
}

// Upload handles POST /api/attachments (multipart: file, taskId).
func (h *Handler) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Create, rbac.Attachment)
	if err != nil {
		return err
	}
	in := uploadForm{TaskID: c.FormValue("taskId")}
	if err := h.binder.Validate(&in); err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded")
	}
	if fh.Size > h.maxBytes {
		return fiber.NewError(fiber.StatusBadRequest, "File too large")
	}
	fileType := domain.NormalizeType(fh.Header.Get(fiber.HeaderContentType))
	if !domain.AllowedTypes[fileType] {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid file type")
	}
	taskID, _ := security.CanonicalUUID(in.TaskID)
	t, err := h.task(ctx, sess.ActiveOrgID, taskID)
	if err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	key := domain.NewStorageKey(fh.Filename)
	size, err := h.blobs.Put(ctx, key, f)
	if err != nil {
		return err
	}

	a := &domain.Attachment{
		OrgID:         sess.ActiveOrgID,
		TaskID:        t.ID,
		UserID:        sess.User.ID,
		Filename:      fh.Filename,
		StoragePath:   key,
		FileType:      fileType,
		FileSizeBytes: size,
	}
	if a.Filename == "" {
		a.Filename = key
	}
	ok, err := h.repo.Create(ctx, a)
	if err != nil || !ok {
		if derr := h.blobs.Delete(ctx, key); derr != nil {
			h.logger.Warn("remove orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		if err != nil {
			return err
		}
		return rbac.ErrNotFound
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionAttachmentCreate,
		Resource:   "attachment",
		ResourceID: a.ID,
		Details:    map[string]any{"attachmentId": a.ID, "filename": a.Filename, "taskId": t.ID},
	})
	return c.Status(fiber.StatusCreated).JSON(a)
}

// List handles GET /api/tasks/:taskId/attachments.
func (h *Handler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Attachment)
	if err != nil {
		return err
	}
	taskID, err := h.binder.UUIDParam(c, "taskId")
	if err != nil {
		return err
	}
	t, err := h.task(ctx, sess.ActiveOrgID, taskID)
	if err != nil {
		return err
	}
	list, err := h.repo.ListByTask(ctx, sess.ActiveOrgID, t.ID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Download handles GET /api/attachments/:attachmentId/download.
func (h *Handler) Download(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Read, rbac.Attachment)
	if err != nil {
		return err
	}
	a, err := h.attachment(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	rc, err := h.blobs.Open(ctx, a.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.logger.Warn("attachment blob missing", zap.String("attachment_id", a.ID))
			return rbac.ErrNotFound
		}
		return err
	}
	c.Set(fiber.HeaderContentType, a.FileType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	// fasthttp closes rc once the body is written.
	return c.SendStream(rc, int(a.FileSizeBytes))
}

// Delete handles DELETE /api/attachments/:attachmentId.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess, err := h.guard.Require(ctx, rbac.Delete, rbac.Attachment)
	if err != nil {
		return err
	}
	a, err := h.attachment(c, sess.ActiveOrgID)
	if err != nil {
		return err
	}
	ok, err := h.repo.Delete(ctx, sess.ActiveOrgID, a.ID)
	if err != nil {
		return err
	}
	if !ok {
		return rbac.ErrNotFound
	}
	if err := h.blobs.Delete(ctx, a.StoragePath); err != nil {
		h.logger.Warn("remove attachment blob", zap.String("attachment_id", a.ID), zap.Error(err))
	}
	h.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionAttachmentDelete,
		Resource:   "attachment",
		ResourceID: a.ID,
		Details:    map[string]any{"attachmentId": a.ID},
	})
	return c.SendStatus(fiber.StatusNoContent)
}
