package audit

import (
	"context"

	"taskhub/backend/internal/audit/domain"
	auditrepo "taskhub/backend/internal/audit/repository"
)

// Sink receives audit events from the Dispatcher.
type Sink interface {
	Name() string
	Emit(ctx context.Context, entry *domain.AuditLog) error
}

// RepositorySink writes events to the audit_log table.
type RepositorySink struct {
	repo auditrepo.Repository
}

// NewRepositorySink returns a Sink backed by repo.
func NewRepositorySink(repo auditrepo.Repository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Name() string { return "postgres" }

func (s *RepositorySink) Emit(ctx context.Context, entry *domain.AuditLog) error {
	return s.repo.Create(ctx, entry)
}
