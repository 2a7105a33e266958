package logging

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"resto-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevelAndFormat(t *testing.T) {
	log := New("debug", "text")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = New("nonsense", "json")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json")
	log.SetOutput(&buf)

	app := fiber.New()
	app.Use(RequestLogger(log))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("nope")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "/missing", line["path"])
	assert.EqualValues(t, 404, line["status"])
}

func TestRequestLoggerUsesDomainErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json")
	log.SetOutput(&buf)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(nil)})
	app.Use(RequestLogger(log))
	app.Get("/orders/:id", func(c *fiber.Ctx) error {
		return apperr.NotFound("order", c.Params("id"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, 404, line["status"])
}
