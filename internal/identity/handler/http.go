// Package handler exposes the auth flows over HTTP.
package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/backend/internal/identity/domain"
	"taskhub/backend/internal/identity/service"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/server/middleware"
	"taskhub/backend/internal/session/resolver"
)

// Redirect targets after the auth forms.
const (
	DashboardPath = "/dashboard"
	LoginPath     = middleware.LoginPath
)

// Client-facing messages. Login failures never say which check failed.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgSignupFailed       = "Signup failed"
)

// AuthService is what the handler needs from the auth service.
type AuthService interface {
	Signup(ctx context.Context, in domain.SignupInput) (*domain.Issued, error)
	Login(ctx context.Context, in domain.LoginInput) (*domain.Issued, error)
	Logout(ctx context.Context) error
	SwitchOrg(ctx context.Context, orgID string) (*domain.Issued, error)
}

// AuthHandler serves the login, signup, logout and session endpoints.
type AuthHandler struct {
	auth    AuthService
	binder  *httpx.Binder
	cookies *middleware.Cookies
	logger  *zap.Logger
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(auth AuthService, binder *httpx.Binder, cookies *middleware.Cookies, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: auth, binder: binder, cookies: cookies, logger: logger}
}

// Register mounts the form endpoints on app and the session endpoints on api. api is expected to
// sit behind middleware.RequireSession.
func (h *AuthHandler) Register(app fiber.Router, api fiber.Router) {
	app.Post("/login", h.Login)
	app.Post("/signup", h.Signup)
	app.Post("/logout", h.Logout)
	api.Get("/session", h.Session)
	api.Post("/session/active-org", h.SwitchOrg)
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in domain.LoginInput
	if err := h.binder.Bind(c, &in); err != nil {
		return err
	}
	issued, err := h.auth.Login(c.UserContext(), in)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNoOrganization):
		h.logger.Info("login rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgInvalidCredentials})
	case errors.Is(err, service.ErrTooManyAttempts):
		h.logger.Info("login throttled")
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msgInvalidCredentials})
	default:
		return err
	}
	h.cookies.Set(c, issued.Token, issued.ExpiresAt)
	return c.Redirect(DashboardPath, fiber.StatusSeeOther)
}

// Signup handles POST /signup. Every failure, validation included, is reported the same way.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in domain.SignupInput
	if err := h.binder.Bind(c, &in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgSignupFailed})
	}
	issued, err := h.auth.Signup(c.UserContext(), in)
	if err != nil {
		h.logger.Info("signup failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgSignupFailed})
	}
	h.cookies.Set(c, issued.Token, issued.ExpiresAt)
	return c.Redirect(DashboardPath, fiber.StatusSeeOther)
}

// Logout handles POST /logout. The cookie is cleared even when there was no live session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	h.cookies.Clear(c)
	return c.Redirect(LoginPath, fiber.StatusSeeOther)
}

// Session handles GET /api/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess, _ := resolver.SessionFromContext(c.UserContext())
	if sess == nil {
		return rbac.ErrAuthenticationRequired
	}
	return c.JSON(sess)
}

// SwitchOrg handles POST /api/session/active-org.
func (h *AuthHandler) SwitchOrg(c *fiber.Ctx) error {
	var in domain.SwitchOrgInput
	if err := h.binder.Bind(c, &in); err != nil {
		return err
	}
	orgID, _ := security.CanonicalUUID(in.OrgID)
	issued, err := h.auth.SwitchOrg(c.UserContext(), orgID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoSession):
		return rbac.ErrAuthenticationRequired
	case errors.Is(err, service.ErrNotOrgMember):
		return rbac.ErrForbidden
	default:
		return err
	}
	h.cookies.Set(c, issued.Token, issued.ExpiresAt)
	return c.JSON(fiber.Map{"activeOrgId": issued.OrgID})
}
