package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer returns the ops gRPC server. It serves grpc.health.v1 plus server reflection and is
// traced through the global OpenTelemetry providers.
func NewGRPCServer(health healthpb.HealthServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	s := grpc.NewServer(opts...)
	RegisterServices(s, health)
	reflection.Register(s)
	return s
}

// RegisterServices registers the gRPC services on s.
func RegisterServices(s grpc.ServiceRegistrar, health healthpb.HealthServer) {
	if health != nil {
		healthpb.RegisterHealthServer(s, health)
	}
}
