// Package service creates, revokes and resolves public project share links.
package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"taskhub/backend/internal/audit"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/platform/rbac"
	projectdomain "taskhub/backend/internal/project/domain"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/share/domain"
	"taskhub/backend/internal/share/repository"
	taskdomain "taskhub/backend/internal/task/domain"
)

// ErrShareNotFound is returned by Resolve for malformed, unknown, revoked or mismatched tokens.
var ErrShareNotFound = errors.New("share link not found")

// SharePathPrefix is the public route of a share page.
const SharePathPrefix = "/share/"

// ProjectGetter loads a project within an organization.
type ProjectGetter interface {
	GetByID(ctx context.Context, orgID, id string) (*projectdomain.Project, error)
}

// TaskLister lists a project's tasks within an organization.
type TaskLister interface {
	ListByProject(ctx context.Context, orgID, projectID string) ([]*taskdomain.Task, error)
}

// ShareService manages share links.
type ShareService struct {
	repo     repository.Repository
	projects ProjectGetter
	tasks    TaskLister
	hasher   *security.SecretHasher
	baseURL  string
	audit    audit.AuditLogger
	logger   *zap.Logger
}

// NewShareService returns a ShareService. baseURL prefixes generated links.
func NewShareService(repo repository.Repository, projects ProjectGetter, tasks TaskLister, hasher *security.SecretHasher,
	baseURL string, auditLogger audit.AuditLogger, logger *zap.Logger) *ShareService {
	if hasher == nil {
		hasher = security.NewSecretHasher(0)
	}
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{repo: repo, projects: projects, tasks: tasks, hasher: hasher,
		baseURL: strings.TrimRight(baseURL, "/"), audit: auditLogger, logger: logger}
}

func (s *ShareService) project(ctx context.Context, orgID, projectID string) (*projectdomain.Project, error) {
	p, err := s.projects.GetByID(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, rbac.ErrNotFound
	}
	return p, nil
}

// Create replaces the project's share link with a new one and returns it. The secret only
// appears in the returned URL.
func (s *ShareService) Create(ctx context.Context, orgID, userID, projectID string) (*domain.Link, error) {
	p, err := s.project(ctx, orgID, projectID)
	if err != nil {
		return nil, err
	}
	secret, err := security.NewShareSecret()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}
	t := &domain.ShareToken{OrgID: orgID, ProjectID: p.ID, SecretHash: hash, CreatedBy: userID}
	ok, err := s.repo.Rotate(ctx, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, rbac.ErrNotFound
	}
	s.audit.LogEvent(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     userID,
		Action:     auditdomain.ActionShareCreate,
		Resource:   "project",
		ResourceID: p.ID,
		Details:    map[string]any{"projectId": p.ID, "tokenId": t.ID},
	})
	return &domain.Link{
		TokenID: t.ID,
		URL:     s.baseURL + SharePathPrefix + security.FormatShareToken(t.ID, secret),
	}, nil
}

// Revoke disables every share link of the project. Revoking a project without links succeeds.
func (s *ShareService) Revoke(ctx context.Context, orgID, userID, projectID string) error {
	p, err := s.project(ctx, orgID, projectID)
	if err != nil {
		return err
	}
	n, err := s.repo.Revoke(ctx, orgID, p.ID)
	if err != nil {
		return err
	}
	s.audit.LogEvent(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     userID,
		Action:     auditdomain.ActionShareRevoke,
		Resource:   "project",
		ResourceID: p.ID,
		Details:    map[string]any{"projectId": p.ID, "revoked": n},
	})
	return nil
}

// Resolve returns the public view of the project behind token.
func (s *ShareService) Resolve(ctx context.Context, token string) (*domain.PublicProject, error) {
	id, secret, err := security.ParseShareToken(token)
	if err != nil {
		return nil, ErrShareNotFound
	}
	t, err := s.repo.GetActive(ctx, strings.ToLower(id))
	if err != nil {
		return nil, err
	}
	if !t.Active() || !s.hasher.Matches(t.SecretHash, secret) {
		return nil, ErrShareNotFound
	}
	p, err := s.projects.GetByID(ctx, t.OrgID, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrShareNotFound
	}
	tasks, err := s.tasks.ListByProject(ctx, t.OrgID, p.ID)
	if err != nil {
		return nil, err
	}
	out := &domain.PublicProject{
		Project: domain.PublicProjectInfo{Name: p.Name},
		Tasks:   make([]taskdomain.PublicTask, 0, len(tasks)),
	}
	for _, task := range tasks {
		out.Tasks = append(out.Tasks, taskdomain.PublicTask{ID: task.ID, Title: task.Title, Status: task.Status})
	}
	return out, nil
}
