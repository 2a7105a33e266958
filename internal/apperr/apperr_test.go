package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", Validation("quantity", "must be positive"), fiber.StatusBadRequest, "quantity: must be positive"},
		{"wrapped validation", fmt.Errorf("place order: %w", Validation("", "items required")), fiber.StatusBadRequest, "items required"},
		{"not found", NotFound("order", 7), fiber.StatusNotFound, "order 7: not found"},
		{"transition", fmt.Errorf("order 3: %w", ErrInvalidTransition), fiber.StatusBadRequest, "order 3: invalid status transition"},
		{"unauthorized", ErrUnauthorized, fiber.StatusUnauthorized, "invalid username or password"},
		{"forbidden", ErrForbidden, fiber.StatusForbidden, "forbidden"},
		{"forbidden with message", Forbidden("Please log in"), fiber.StatusForbidden, "Please log in"},
		{"fiber", fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot, "tea"},
		{"storage", errors.New("connection reset"), fiber.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := Status(tc.err)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.msg, msg)
		})
	}
}

func TestForbiddenMatchesSentinel(t *testing.T) {
	assert.ErrorIs(t, Forbidden("admins only"), ErrForbidden)
	assert.NotErrorIs(t, Forbidden("admins only"), ErrNotFound)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(fmt.Errorf("x: %w", Validation("price", "negative"))))
	assert.False(t, IsValidation(ErrNotFound))
}

func TestErrorHandlerRendersJSON(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Get("/", func(c *fiber.Ctx) error { return Validation("items", "must not be empty") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "items: must not be empty", body["error"])
}
