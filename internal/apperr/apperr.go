// Package apperr holds the error taxonomy shared by every service and the
// single place where it is mapped onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("invalid username or password")
	ErrForbidden         = errors.New("forbidden")
)

// ValidationError reports bad or missing input. Its message is safe to show
// to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFound wraps ErrNotFound with the missing entity for log readability.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

type forbiddenError struct{ msg string }

func (e forbiddenError) Error() string        { return e.msg }
func (e forbiddenError) Is(target error) bool { return target == ErrForbidden }

// Forbidden is ErrForbidden carrying a message for the client.
func Forbidden(msg string) error {
	return forbiddenError{msg: msg}
}

// Status maps err onto the HTTP status it should be rendered with and the
// message that may be shown to the client.
func Status(err error) (int, string) {
	var fe *fiber.Error
	var ve *ValidationError
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error()
	case errors.Is(err, ErrInvalidTransition):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized, ErrUnauthorized.Error()
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

// ErrorHandler renders every error returned by a handler as
// {"success": false, "error": msg}. Storage failures are logged and hidden.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := Status(err)
		if code >= fiber.StatusInternalServerError && log != nil {
			log.WithError(err).WithField("path", c.Path()).Error("unexpected error")
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}
}
