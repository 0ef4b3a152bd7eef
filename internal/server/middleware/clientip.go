package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/audit"
)

// ClientIP returns the caller's address from X-Forwarded-For (first hop), X-Real-IP or the
// connection, or "unknown".
func ClientIP(c *fiber.Ctx) string {
	if s := strings.TrimSpace(c.Get(fiber.HeaderXForwardedFor)); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		if s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(c.Get("X-Real-IP")); s != "" {
		return s
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

// CaptureClientIP stores the caller's address in the user context for the audit logger.
func CaptureClientIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithClientIP(c.UserContext(), ClientIP(c)))
		return c.Next()
	}
}
