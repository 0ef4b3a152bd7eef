package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"taskhub/backend/internal/platform/rbac"
)

const meterName = "taskhub"

// Instruments are the application's counters. A nil *Instruments records nothing.
type Instruments struct {
	loginAttempts  metric.Int64Counter
	authzDecisions metric.Int64Counter
	auditDropped   metric.Int64Counter
}

// NewInstruments creates the counters on mp. A nil mp uses a no-op provider.
func NewInstruments(mp metric.MeterProvider) (*Instruments, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	m := mp.Meter(meterName)
	login, err := m.Int64Counter("auth.login.attempts", metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, err
	}
	authz, err := m.Int64Counter("authz.decisions", metric.WithDescription("Permission checks by outcome"))
	if err != nil {
		return nil, err
	}
	dropped, err := m.Int64Counter("audit.dropped", metric.WithDescription("Audit events dropped before delivery"))
	if err != nil {
		return nil, err
	}
	return &Instruments{loginAttempts: login, authzDecisions: authz, auditDropped: dropped}, nil
}

// LoginAttempt counts one login with outcome (success, invalid_credentials, throttled, error).
func (i *Instruments) LoginAttempt(ctx context.Context, outcome string) {
	if i == nil {
		return
	}
	i.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// AuthzDecision counts one permission check result.
func (i *Instruments) AuthzDecision(ctx context.Context, err error) {
	if i == nil {
		return
	}
	i.authzDecisions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", DecisionOutcome(err))))
}

// AuditDropped implements audit.DropRecorder.
func (i *Instruments) AuditDropped(ctx context.Context) {
	if i == nil {
		return
	}
	i.auditDropped.Add(ctx, 1)
}

// DecisionOutcome names the result of a permission check for metrics and logs.
func DecisionOutcome(err error) string {
	switch {
	case err == nil:
		return "allow"
	case errors.Is(err, rbac.ErrAuthenticationRequired):
		return "unauthenticated"
	case errors.Is(err, rbac.ErrForbidden):
		return "forbidden"
	case errors.Is(err, rbac.ErrPermissionDenied):
		return "denied"
	case errors.Is(err, rbac.ErrNotFound):
		return "not_found"
	}
	return "error"
}
