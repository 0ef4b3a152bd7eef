// Package handler reports process and database health over HTTP and the standard gRPC health
// protocol.
package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single database probe.
const DefaultTimeout = 2 * time.Second

// Pinger checks database reachability (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Report describes the database the server is connected to.
type Report struct {
	Status     string `json:"status"`
	Database   string `json:"database,omitempty"`
	User       string `json:"user,omitempty"`
	SearchPath string `json:"searchPath,omitempty"`
	UsersTable bool   `json:"usersTable"`
}

// Prober produces a database Report.
type Prober interface {
	Probe(ctx context.Context) (*Report, error)
}

// DBProber probes a Postgres pool.
type DBProber struct {
	db *sql.DB
}

// NewDBProber returns a Prober for db.
func NewDBProber(db *sql.DB) *DBProber {
	return &DBProber{db: db}
}

// PingContext pings the pool.
func (p *DBProber) PingContext(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Probe reads the connection identity and whether the schema has been migrated.
func (p *DBProber) Probe(ctx context.Context) (*Report, error) {
	r := Report{Status: "ok"}
	err := p.db.QueryRowContext(ctx,
		`SELECT current_database(), current_user, current_setting('search_path'),
		        EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'users')`,
	).Scan(&r.Database, &r.User, &r.SearchPath, &r.UsersTable)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HTTP serves the health endpoints.
type HTTP struct {
	prober  Prober
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTP returns the HTTP health handler. timeout <= 0 uses DefaultTimeout.
func NewHTTP(prober Prober, timeout time.Duration, logger *zap.Logger) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTP{prober: prober, timeout: timeout, logger: logger}
}

// Register mounts /healthz and /api/health/db. Both are public and must be mounted before any
// session requirement on /api.
func (h *HTTP) Register(app fiber.Router) {
	app.Get("/healthz", h.Live)
	app.Get("/api/health/db", h.DB)
}

// Live reports that the process is serving.
func (h *HTTP) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// DB probes the database. Failures return 503 without the driver error.
func (h *HTTP) DB(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()
	r, err := h.prober.Probe(ctx)
	if err != nil {
		h.logger.Warn("database health probe failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(r)
}
