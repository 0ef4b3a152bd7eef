// Package server assembles the HTTP application and the ops gRPC server from the feature handlers.
package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	attachmenthandler "taskhub/backend/internal/attachment/handler"
	audithandler "taskhub/backend/internal/audit/handler"
	commenthandler "taskhub/backend/internal/comment/handler"
	healthhandler "taskhub/backend/internal/health/handler"
	identityhandler "taskhub/backend/internal/identity/handler"
	projecthandler "taskhub/backend/internal/project/handler"
	"taskhub/backend/internal/server/middleware"
	"taskhub/backend/internal/session/resolver"
	sharehandler "taskhub/backend/internal/share/handler"
	taskhandler "taskhub/backend/internal/task/handler"
)

// bodyLimitSlack leaves room for multipart framing and form fields around an upload.
const bodyLimitSlack = 1 << 20

// Deps holds what the HTTP application is built from. Nil handlers are not mounted.
type Deps struct {
	Logger   *zap.Logger
	Resolver *resolver.Resolver
	Tokens   middleware.TokenVerifier
	Cookies  *middleware.Cookies
	// UploadMaxBytes sizes the request body limit.
	UploadMaxBytes int64

	Auth        *identityhandler.AuthHandler
	Projects    *projecthandler.Handler
	Tasks       *taskhandler.Handler
	Export      *taskhandler.ExportHandler
	Comments    *commenthandler.Handler
	Attachments *attachmenthandler.Handler
	Shares      *sharehandler.Handler
	Audit       *audithandler.Handler
	Health      *healthhandler.HTTP
}

// NewApp returns the fiber application with every route mounted.
//
// Route layout:
//   - /healthz, /api/health/db            public
//   - /login, /signup, /logout, /share/*  public
//   - /api/*                              live session required (401 otherwise)
//   - /dashboard                          edge token check, redirect to /login otherwise
func NewApp(d Deps) *fiber.App {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cookies := d.Cookies
	if cookies == nil {
		cookies = middleware.NewCookies(false)
	}
	bodyLimit := fiber.DefaultBodyLimit
	if n := int(d.UploadMaxBytes) + bodyLimitSlack; n > bodyLimit {
		bodyLimit = n
	}

	app := fiber.New(fiber.Config{
		AppName:               "taskhub",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})
	app.Use(middleware.Telemetry(logger, map[string]bool{"/healthz": true}))
	app.Use(middleware.CaptureClientIP())
	app.Use(middleware.LoadSession(d.Resolver, cookies, logger))

	if d.Health != nil {
		d.Health.Register(app)
	}

	api := app.Group("/api", middleware.RequireSession())

	if d.Auth != nil {
		d.Auth.Register(app, api)
	}
	if d.Shares != nil {
		d.Shares.Register(app, api)
	}
	if d.Projects != nil {
		d.Projects.Register(api)
		app.Get(identityhandler.DashboardPath,
			middleware.EdgeGate(d.Tokens, cookies),
			middleware.RedirectUnauthenticated(),
			d.Projects.Dashboard)
	}
	if d.Tasks != nil {
		d.Tasks.Register(api)
	}
	if d.Export != nil {
		d.Export.Register(api)
	}
	if d.Comments != nil {
		d.Comments.Register(api)
	}
	if d.Attachments != nil {
		d.Attachments.Register(api)
	}
	if d.Audit != nil {
		d.Audit.Register(api)
	}
	return app
}
