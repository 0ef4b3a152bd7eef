// Package audit records who did what in which organization. Recording is fire-and-forget: the
// request path hands events to a Dispatcher and never waits for them.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"taskhub/backend/internal/audit/domain"
)

// Event is one thing to record. Details is serialized as the entry's JSON metadata.
type Event struct {
	OrgID      string
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]any
}

// IPExtractor returns the client IP for the request carried by ctx.
type IPExtractor func(context.Context) string

// AuditLogger records events. LogEvent is best-effort and never fails the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, e Event)
}

// Submitter accepts finished entries; *Dispatcher implements it.
type Submitter interface {
	Submit(ctx context.Context, entry *domain.AuditLog)
}

// Logger implements AuditLogger on top of a Submitter.
type Logger struct {
	out         Submitter
	ipExtractor IPExtractor
	now         func() time.Time
}

// NewLogger returns an AuditLogger that submits to out. ipExtractor may be nil; ClientIP is used then.
func NewLogger(out Submitter, ipExtractor IPExtractor) *Logger {
	if ipExtractor == nil {
		ipExtractor = ClientIP
	}
	return &Logger{out: out, ipExtractor: ipExtractor, now: time.Now}
}

// LogEvent builds an entry for e and submits it without waiting.
func (l *Logger) LogEvent(ctx context.Context, e Event) {
	if l == nil || l.out == nil {
		return
	}
	ip := l.ipExtractor(ctx)
	if ip == "" {
		ip = "unknown"
	}
	metadata := ""
	if len(e.Details) > 0 {
		if b, err := json.Marshal(e.Details); err == nil {
			metadata = string(b)
		}
	}
	l.out.Submit(ctx, &domain.AuditLog{
		ID:         uuid.New().String(),
		OrgID:      e.OrgID,
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IP:         ip,
		Metadata:   metadata,
		CreatedAt:  l.now().UTC(),
	})
}

type contextKey struct{ name string }

var clientIPKey = contextKey{"client_ip"}

// WithClientIP returns a context carrying the request's client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the IP set by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// Nop is an AuditLogger that records nothing.
type Nop struct{}

func (Nop) LogEvent(context.Context, Event) {}
