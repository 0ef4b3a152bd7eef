// Package httpx decodes and validates request bodies for the fiber handlers.
package httpx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/security"
)

// Binder parses request bodies (JSON or form, by Content-Type) and validates them with struct tags.
type Binder struct {
	validate *validator.Validate
}

// NewBinder returns a Binder. It is safe for concurrent use. The uuid tag accepts hyphenated
// uuids in either case; callers lower-case the value with security.CanonicalUUID.
func NewBinder() *Binder {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("uuid", func(fl validator.FieldLevel) bool {
		_, ok := security.CanonicalUUID(fl.Field().String())
		return ok
	})
	return &Binder{validate: v}
}

// Bind decodes the body into out and validates it. Failures are returned as 400 *fiber.Error.
func (b *Binder) Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return b.Validate(out)
}

// Validate checks out's struct tags. Failures are returned as 400 *fiber.Error naming the first
// offending field.
func (b *Binder) Validate(out any) error {
	if err := b.validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, Message(err))
	}
	return nil
}

// UUIDParam returns the named route parameter when it is a UUID, otherwise a 400 *fiber.Error.
func (b *Binder) UUIDParam(c *fiber.Ctx, name string) (string, error) {
	id, ok := security.CanonicalUUID(c.Params(name))
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// Message renders a validation error as "Validation failed: <field> <problem>".
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation failed"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Validation failed: %s is required", field)
	case "email":
		return fmt.Sprintf("Validation failed: %s must be a valid email", field)
	case "min":
		return fmt.Sprintf("Validation failed: %s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("Validation failed: %s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Validation failed: %s must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("Validation failed: %s is invalid", field)
	}
}
