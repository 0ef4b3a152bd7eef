package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	attachmenthandler "taskhub/backend/internal/attachment/handler"
	attachmentrepo "taskhub/backend/internal/attachment/repository"
	"taskhub/backend/internal/audit"
	audithandler "taskhub/backend/internal/audit/handler"
	auditrepo "taskhub/backend/internal/audit/repository"
	commenthandler "taskhub/backend/internal/comment/handler"
	commentrepo "taskhub/backend/internal/comment/repository"
	"taskhub/backend/internal/config"
	"taskhub/backend/internal/db"
	healthhandler "taskhub/backend/internal/health/handler"
	identityhandler "taskhub/backend/internal/identity/handler"
	identityrepo "taskhub/backend/internal/identity/repository"
	identityservice "taskhub/backend/internal/identity/service"
	"taskhub/backend/internal/logging"
	membershiprepo "taskhub/backend/internal/membership/repository"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	projecthandler "taskhub/backend/internal/project/handler"
	projectrepo "taskhub/backend/internal/project/repository"
	"taskhub/backend/internal/ratelimit"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server"
	"taskhub/backend/internal/server/middleware"
	sessionrepo "taskhub/backend/internal/session/repository"
	"taskhub/backend/internal/session/resolver"
	sharehandler "taskhub/backend/internal/share/handler"
	sharerepo "taskhub/backend/internal/share/repository"
	shareservice "taskhub/backend/internal/share/service"
	"taskhub/backend/internal/storage"
	taskhandler "taskhub/backend/internal/task/handler"
	taskrepo "taskhub/backend/internal/task/repository"
	telemetryotel "taskhub/backend/internal/telemetry/otel"
	userrepo "taskhub/backend/internal/user/repository"
)

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secret, err := cfg.SessionSecret()
	if err != nil {
		return err
	}
	codec, err := security.NewSessionTokenCodec(secret)
	if err != nil {
		return err
	}

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.OTelServiceName, cfg.OTLPInsecure, logger)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	instruments, err := telemetryotel.NewInstruments(providers.MeterProvider)
	if err != nil {
		return err
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	// Audit pipeline: postgres always, kafka and otel logs when configured.
	audits := auditrepo.NewPostgresRepository(conn)
	sinks := []audit.Sink{audit.NewRepositorySink(audits)}
	kafkaSink := audit.NewKafkaSink(cfg.KafkaBrokersList(), cfg.AuditKafkaTopic)
	if kafkaSink != nil {
		sinks = append(sinks, kafkaSink)
		defer kafkaSink.Close()
	}
	if cfg.OTLPEndpoint != "" {
		sinks = append(sinks, telemetryotel.NewAuditLogSink(providers.LoggerProvider))
	}
	dispatcher := audit.NewDispatcher(cfg.AuditQueueSize, logger, instruments, sinks...)
	auditLogger := audit.NewLogger(dispatcher, audit.ClientIP)

	var limiter identityservice.LoginLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		limiter = ratelimit.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow())
		logger.Info("login throttling enabled", zap.Int("max_attempts", cfg.LoginMaxAttempts), zap.Duration("window", cfg.LoginWindow()))
	}

	users := userrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn, cfg.SessionTTL())
	projects := projectrepo.NewPostgresRepository(conn)
	tasks := taskrepo.NewPostgresRepository(conn)
	comments := commentrepo.NewPostgresRepository(conn)
	attachments := attachmentrepo.NewPostgresRepository(conn)
	shares := sharerepo.NewPostgresRepository(conn)

	auth := identityservice.NewAuthService(identityservice.Deps{
		Accounts:    identityrepo.NewPostgresRepository(conn),
		Users:       users,
		Memberships: memberships,
		Sessions:    sessions,
		Tokens:      codec,
		Limiter:     limiter,
		Metrics:     instruments,
		Audit:       auditLogger,
		Logger:      logger,
	})
	shareSvc := shareservice.NewShareService(shares, projects, tasks, security.NewSecretHasher(0),
		cfg.PublicBaseURL, auditLogger, logger)

	guard := rbac.NewGuard(instruments)
	binder := httpx.NewBinder()
	cookies := middleware.NewCookies(cfg.IsProduction())
	prober := healthhandler.NewDBProber(conn)

	app := server.NewApp(server.Deps{
		Logger:         logger,
		Resolver:       resolver.New(codec, sessions, users, memberships),
		Tokens:         codec,
		Cookies:        cookies,
		UploadMaxBytes: cfg.UploadMaxBytes,
		Auth:           identityhandler.NewAuthHandler(auth, binder, cookies, logger),
		Projects:       projecthandler.NewHandler(projects, attachments, blobs, guard, auditLogger, binder, logger),
		Tasks:          taskhandler.NewHandler(tasks, projects, attachments, blobs, guard, auditLogger, binder, logger),
		Export:         taskhandler.NewExportHandler(tasks, guard),
		Comments:       commenthandler.NewHandler(comments, tasks, guard, auditLogger, binder),
		Attachments:    attachmenthandler.NewHandler(attachments, tasks, blobs, cfg.UploadMaxBytes, guard, auditLogger, binder, logger),
		Shares:         sharehandler.NewHandler(shareSvc, guard, binder),
		Audit:          audithandler.NewHandler(audits, guard),
		Health:         healthhandler.NewHTTP(prober, 0, logger),
	})

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	var grpcServer *grpc.Server
	if cfg.HealthGRPCAddr != "" {
		grpcServer, err = serveHealth(ctx, cfg.HealthGRPCAddr, conn, logger, errCh)
		if err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("listener failed", zap.Error(err))
		}
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	dispatcher.Close()
	if n := dispatcher.Dropped(); n > 0 {
		logger.Warn("audit events dropped", zap.Uint64("count", n))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("telemetry shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}

// serveHealth starts the grpc.health.v1 server on addr, driven by periodic database pings until ctx ends.
func serveHealth(ctx context.Context, addr string, conn *sql.DB, logger *zap.Logger, errCh chan<- error) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	monitor := healthhandler.NewMonitor(conn, 0, logger)
	go monitor.Run(ctx)

	s := server.NewGRPCServer(monitor.Server())
	go func() {
		logger.Info("grpc health server listening", zap.String("addr", addr))
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()
	return s, nil
}
