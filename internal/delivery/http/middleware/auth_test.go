package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"allumino/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type fakeVerifier struct {
	ident Identity
	err   error
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (Identity, error) {
	f.calls++
	if f.err != nil {
		return Identity{}, f.err
	}
	return f.ident, nil
}

func guardApp(t *testing.T, verifiers ...Verifier) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.NewNop(), false).Middleware())
	app.Get("/secure", NewAuthMiddleware(verifiers...).Middleware(), func(c fiber.Ctx) error {
		ident, _ := IdentityFromCtx(c)
		return c.JSON(fiber.Map{"source": ident.Source})
	})
	app.Get("/admin", NewAuthMiddleware(verifiers...).Middleware(), RequireRole(RoleAdmin), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	app := guardApp(t, &fakeVerifier{})

	resp := doGet(t, app, "/secure", "")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	app := guardApp(t, &fakeVerifier{})

	resp := doGet(t, app, "/secure", "Token abc")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware_FirstVerifierWins(t *testing.T) {
	first := &fakeVerifier{ident: Identity{Source: SourceAuth0}}
	second := &fakeVerifier{ident: Identity{Source: SourceService}}
	app := guardApp(t, first, second)

	resp := doGet(t, app, "/secure", "Bearer tok")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if second.calls != 0 {
		t.Fatalf("second verifier must not run after the first succeeds")
	}
}

func TestAuthMiddleware_FallsThroughOnNotApplicable(t *testing.T) {
	first := &fakeVerifier{err: ErrNotApplicable}
	second := &fakeVerifier{ident: Identity{UserID: uuid.New(), Source: SourceService}}
	app := guardApp(t, first, second)

	resp := doGet(t, app, "/secure", "Bearer tok")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("expected both verifiers tried, got %d/%d", first.calls, second.calls)
	}
}

func TestAuthMiddleware_AllNotApplicable(t *testing.T) {
	app := guardApp(t, &fakeVerifier{err: ErrNotApplicable}, &fakeVerifier{err: ErrNotApplicable})

	resp := doGet(t, app, "/secure", "Bearer tok")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	student := &fakeVerifier{ident: Identity{Roles: []string{"student"}, Source: SourceService}}
	app := guardApp(t, student)

	resp := doGet(t, app, "/admin", "Bearer tok")
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for student on admin route, got %d", resp.StatusCode)
	}

	admin := &fakeVerifier{ident: Identity{Roles: []string{"student", RoleAdmin}, Source: SourceService}}
	app = guardApp(t, admin)

	resp = doGet(t, app, "/admin", "Bearer tok")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}
