// Package middleware holds the fiber middleware shared by every route: the edge gate, per-request
// session loading, client IP capture, request telemetry and error mapping.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// Cookies writes and clears the session cookie.
type Cookies struct {
	// Secure marks the cookie Secure; set in production.
	Secure bool
	now    func() time.Time
}

// NewCookies returns the session cookie helper.
func NewCookies(secure bool) *Cookies {
	return &Cookies{Secure: secure, now: time.Now}
}

// Set stores token in the session cookie until expiresAt.
func (k *Cookies) Set(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   k.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (k *Cookies) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  k.now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   k.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Token returns the session cookie value, or "" when absent.
func Token(c *fiber.Ctx) string {
	return c.Cookies(SessionCookieName)
}
