package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

func errorApp(development bool, h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.NewNop(), development).Middleware())
	app.Get("/boom", h)
	return app
}

func requestBody(t *testing.T, app *fiber.App) (int, response.ErrorBody) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var body response.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, body
}

func TestErrorMiddleware_5xxCarriesStackInDevelopment(t *testing.T) {
	app := errorApp(true, func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "store exploded", errors.New("pg: broken"))
	})

	status, body := requestBody(t, app)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body.Stack == "" || !strings.Contains(body.Stack, "goroutine") {
		t.Fatalf("expected a stack trace in development body, got %q", body.Stack)
	}
	if !strings.Contains(body.Error, "pg: broken") {
		t.Fatalf("development body should carry error detail, got %q", body.Error)
	}
}

func TestErrorMiddleware_5xxIsOpaqueInProduction(t *testing.T) {
	app := errorApp(false, func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "store exploded", errors.New("pg: broken"))
	})

	status, body := requestBody(t, app)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body.Stack != "" {
		t.Fatalf("production body must not carry a stack, got %q", body.Stack)
	}
	if body.Error != response.MessageInternalServerError {
		t.Fatalf("production body must be generic, got %q", body.Error)
	}
}

func TestErrorMiddleware_4xxPassesMessageWithoutStack(t *testing.T) {
	app := errorApp(true, func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusNotFound, "Pathway not found", nil)
	})

	status, body := requestBody(t, app)
	if status != fiber.StatusNotFound || body.Error != "Pathway not found" {
		t.Fatalf("unexpected response: %d %q", status, body.Error)
	}
	if body.Stack != "" {
		t.Fatalf("4xx must not carry a stack, got %q", body.Stack)
	}
}

func TestErrorMiddleware_PanicRecovered(t *testing.T) {
	app := errorApp(false, func(c fiber.Ctx) error {
		panic("boom")
	})

	status, body := requestBody(t, app)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	if body.Error != response.MessageInternalServerError || body.Stack != "" {
		t.Fatalf("unexpected panic body: %+v", body)
	}
}
