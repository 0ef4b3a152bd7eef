package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/session/resolver"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// TokenVerifier checks a session token's signature and payload without touching the database.
type TokenVerifier interface {
	Verify(token string) (security.SessionPayload, error)
}

// EdgeGate guards page routes with a stateless token check. A missing cookie redirects to the
// login page; a cookie that fails verification is also cleared. A valid token passes through
// untouched and nothing is put in the request context.
func EdgeGate(tokens TokenVerifier, cookies *Cookies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := Token(c)
		if token == "" {
			return c.Redirect(LoginPath, fiber.StatusFound)
		}
		if _, err := tokens.Verify(token); err != nil {
			cookies.Clear(c)
			return c.Redirect(LoginPath, fiber.StatusFound)
		}
		return c.Next()
	}
}

// LoadSession attaches a per-request session memo to the user context. The session is resolved
// lazily on first use and at most once per request. After the handler runs, a cookie that resolved
// to a gone session or an invalid token is cleared.
func LoadSession(r *resolver.Resolver, cookies *Cookies, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		req := r.NewRequest(Token(c))
		c.SetUserContext(resolver.WithRequest(c.UserContext(), req))

		err := c.Next()

		if req.Resolved() {
			_, outcome, resolveErr := req.Session(c.UserContext())
			if resolveErr != nil {
				logger.Error("session resolve failed", zap.String("outcome", outcome.String()), zap.Error(resolveErr))
			} else if outcome.ClearsCookie() {
				cookies.Clear(c)
			}
		}
		return err
	}
}

// RequireSession rejects API requests without a live session with 401. A store failure during
// resolution counts as no session; LoadSession logs it.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := resolver.SessionFromContext(c.UserContext())
		if sess == nil {
			return rbac.ErrAuthenticationRequired
		}
		return c.Next()
	}
}
