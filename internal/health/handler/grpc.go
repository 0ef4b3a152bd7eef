package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultInterval is how often Monitor pings the database.
const DefaultInterval = 10 * time.Second

// Monitor drives a grpc.health.v1 server from periodic database pings. The overall service ("")
// is SERVING while the last ping succeeded.
type Monitor struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewMonitor returns a Monitor. A nil pinger reports SERVING unconditionally.
func NewMonitor(pinger Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		timeout:  DefaultTimeout,
		logger:   logger,
	}
}

// Server returns the health service to register on a gRPC server.
func (m *Monitor) Server() healthpb.HealthServer {
	return m.server
}

// Check pings once and updates the serving status.
func (m *Monitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if m.pinger != nil {
		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := m.pinger.PingContext(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("health ping failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	m.server.SetServingStatus("", status)
	return status
}

// Run checks immediately and then every interval until ctx is done, after which it marks the
// service NOT_SERVING.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
