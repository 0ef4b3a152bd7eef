// Worker deletes expired sessions on SESSION_SWEEP_SCHEDULE (default "@every 1h").
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskhub/backend/internal/config"
	"taskhub/backend/internal/db"
	"taskhub/backend/internal/logging"
	sessionrepo "taskhub/backend/internal/session/repository"
	"taskhub/backend/internal/session/sweeper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("worker: database", zap.Error(err))
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := sweeper.New(sessionrepo.NewPostgresRepository(conn, cfg.SessionTTL()), logger)
	if _, err := s.Sweep(ctx); err != nil {
		logger.Warn("worker: initial sweep failed", zap.Error(err))
	}
	c, err := s.Start(ctx, cfg.SessionSweepSchedule)
	if err != nil {
		logger.Fatal("worker: schedule", zap.Error(err))
	}
	logger.Info("worker: sweeping expired sessions", zap.String("schedule", cfg.SessionSweepSchedule))

	<-ctx.Done()
	logger.Info("worker: shutting down")
	<-c.Stop().Done()
	logger.Info("worker: stopped")
}
