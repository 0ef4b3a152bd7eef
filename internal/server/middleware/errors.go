package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskhub/backend/internal/platform/rbac"
)

// Messages returned to clients for mapped errors.
const (
	MsgServerError    = "Server error"
	MsgUnauthorized   = "Unauthorized"
	MsgForbidden      = "Forbidden"
	MsgNotFound       = "Not found"
	MsgInvalidRequest = "Invalid request"
)

// StatusFor maps an error returned by a handler to an HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, rbac.ErrAuthenticationRequired):
		return fiber.StatusUnauthorized
	case errors.Is(err, rbac.ErrForbidden), errors.Is(err, rbac.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, rbac.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler writes {"error": ...} for every error a handler returns. Authorization errors become
// 401/403/404, *fiber.Error keeps its code and message, everything else is a 500 with a generic
// message. Cross-tenant access (ErrForbidden) is logged at warn as suspicious.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		msg := MsgServerError
		var fe *fiber.Error
		switch {
		case errors.Is(err, rbac.ErrAuthenticationRequired):
			msg = MsgUnauthorized
		case errors.Is(err, rbac.ErrForbidden):
			msg = MsgForbidden
			logger.Warn("cross-organization access denied",
				zap.String("path", c.Path()),
				zap.String("client_ip", ClientIP(c)),
				zap.Error(err))
		case errors.Is(err, rbac.ErrPermissionDenied):
			msg = MsgForbidden
		case errors.Is(err, rbac.ErrNotFound):
			msg = MsgNotFound
		case errors.As(err, &fe):
			msg = fe.Message
		default:
			logger.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
}

// RedirectUnauthenticated turns a 401 from a page handler into a redirect to the login page.
func RedirectUnauthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil && errors.Is(err, rbac.ErrAuthenticationRequired) {
			return c.Redirect(LoginPath, fiber.StatusFound)
		}
		return err
	}
}
