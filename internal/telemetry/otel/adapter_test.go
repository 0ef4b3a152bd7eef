package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"taskhub/backend/internal/audit/domain"
)

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec   otellog.Record
	calls int
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
	r.calls++
}

func TestNewAuditLogSink_NilProvider(t *testing.T) {
	if s := NewAuditLogSink(nil); s != nil {
		t.Fatal("NewAuditLogSink(nil) should return nil")
	}
	var s *AuditLogSink
	if err := s.Emit(context.Background(), &domain.AuditLog{Action: "x"}); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
}

func TestAuditLogSink_RealProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	s := NewAuditLogSink(provider)
	if s == nil {
		t.Fatal("sink should not be nil")
	}
	if err := s.Emit(context.Background(), &domain.AuditLog{Action: domain.ActionUserSignup}); err != nil {
		t.Errorf("Emit: %v", err)
	}
}

func TestAuditLogSink_AttributeMapping(t *testing.T) {
	cap := &recordCapture{}
	s := newAuditLogSinkWithLogger(cap)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := &domain.AuditLog{
		ID:         "a1",
		OrgID:      "org1",
		UserID:     "user1",
		Action:     domain.ActionTaskDelete,
		Resource:   "task",
		ResourceID: "task1",
		IP:         "10.0.0.1",
		Metadata:   `{"title":"x"}`,
		CreatedAt:  created,
	}
	if err := s.Emit(context.Background(), entry); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec := cap.rec
	if got := rec.Body().AsString(); got != domain.ActionTaskDelete {
		t.Errorf("body = %q, want %q", got, domain.ActionTaskDelete)
	}
	if !rec.Timestamp().Equal(created) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), created)
	}
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"audit.id": "a1", "org_id": "org1", "user_id": "user1", "resource": "task",
		"resource_id": "task1", "client.ip": "10.0.0.1", "metadata": `{"title":"x"}`,
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestAuditLogSink_SkipsEmptyFields(t *testing.T) {
	cap := &recordCapture{}
	s := newAuditLogSinkWithLogger(cap)
	if err := s.Emit(context.Background(), &domain.AuditLog{Action: domain.ActionUserLoginFailed}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if n := cap.rec.AttributesLen(); n != 0 {
		t.Errorf("attributes = %d, want 0", n)
	}
	if cap.rec.Timestamp().IsZero() {
		t.Error("timestamp should default to now")
	}
	if err := s.Emit(context.Background(), nil); err != nil || cap.calls != 1 {
		t.Errorf("nil entry: err = %v, calls = %d", err, cap.calls)
	}
}
