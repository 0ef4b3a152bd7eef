package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeProber struct {
	report *Report
	err    error
}

func (f *fakeProber) Probe(ctx context.Context) (*Report, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("probe called without deadline")
	}
	return f.report, f.err
}

type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) PingContext(context.Context) error {
	f.calls++
	return f.err
}

func newApp(p Prober, logger *zap.Logger) *fiber.App {
	app := fiber.New()
	NewHTTP(p, 0, logger).Register(app)
	return app
}

func TestDB(t *testing.T) {
	app := newApp(&fakeProber{report: &Report{Status: "ok", Database: "taskhub", UsersTable: true}}, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health/db", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var r Report
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if r.Database != "taskhub" || !r.UsersTable {
		t.Errorf("report = %+v", r)
	}
}

func TestDB_Unavailable(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	app := newApp(&fakeProber{err: errors.New("password authentication failed for user app")}, zap.New(core))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health/db", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if len(body) != 1 || body["status"] != "unavailable" {
		t.Errorf("body must not leak driver errors: %v", body)
	}
	if logs.Len() != 1 {
		t.Errorf("logs = %d, want 1", logs.Len())
	}
}

func TestLive(t *testing.T) {
	resp, err := newApp(&fakeProber{err: errors.New("down")}, nil).Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("liveness must not depend on the database, status = %d", resp.StatusCode)
	}
}

func TestMonitor_Check(t *testing.T) {
	testCases := []struct {
		name   string
		pinger Pinger
		want   healthpb.HealthCheckResponse_ServingStatus
	}{
		{"no pinger", nil, healthpb.HealthCheckResponse_SERVING},
		{"ping ok", &fakePinger{}, healthpb.HealthCheckResponse_SERVING},
		{"ping fails", &fakePinger{err: errors.New("connection refused")}, healthpb.HealthCheckResponse_NOT_SERVING},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMonitor(tc.pinger, 0, nil)
			if got := m.Check(context.Background()); got != tc.want {
				t.Errorf("Check = %v, want %v", got, tc.want)
			}
			resp, err := m.Server().Check(context.Background(), &healthpb.HealthCheckRequest{})
			if err != nil {
				t.Fatalf("health Check: %v", err)
			}
			if resp.GetStatus() != tc.want {
				t.Errorf("served status = %v, want %v", resp.GetStatus(), tc.want)
			}
		})
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	p := &fakePinger{}
	m := NewMonitor(p, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	resp, err := m.Server().Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status after shutdown = %v, want NOT_SERVING", resp.GetStatus())
	}
}
