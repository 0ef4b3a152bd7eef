// Package sweeper periodically deletes expired sessions.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = time.Minute

// ExpiredDeleter removes sessions past their expiry.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweeper runs DeleteExpired on a cron schedule.
type Sweeper struct {
	sessions ExpiredDeleter
	logger   *zap.Logger
}

// New returns a Sweeper.
func New(sessions ExpiredDeleter, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{sessions: sessions, logger: logger}
}

// Sweep deletes expired sessions once.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()
	start := time.Now()
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", zap.Error(err))
		return 0, err
	}
	s.logger.Info("session sweep", zap.Int64("deleted", n), zap.Duration("duration", time.Since(start)))
	return n, nil
}

// Start schedules Sweep with spec (standard cron or descriptors such as "@every 1h") and starts
// the scheduler. Overlapping runs are skipped. Stop the returned Cron to shut down.
func (s *Sweeper) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	logger := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, func() { _, _ = s.Sweep(ctx) }); err != nil {
		return nil, fmt.Errorf("sweeper: schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
