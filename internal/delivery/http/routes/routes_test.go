package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"allumino/internal/config"
	"allumino/internal/delivery/http/handler"
	"allumino/internal/delivery/http/middleware"
	"allumino/internal/infrastructure/ml"
	"allumino/internal/pkg/jwt"
	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type rejectingVerifier struct{}

func (rejectingVerifier) Verify(context.Context, string) (middleware.Identity, error) {
	return middleware.Identity{}, middleware.ErrNotApplicable
}

type stubOpportunityUC struct{}

func (stubOpportunityUC) List(context.Context, repository.OpportunityFilter, pagination.Params) ([]repository.Opportunity, pagination.Block, error) {
	return nil, pagination.Block{Page: 1, Limit: 20}, nil
}
func (stubOpportunityUC) Get(context.Context, uuid.UUID) (repository.Opportunity, error) {
	return repository.Opportunity{}, repository.ErrNotFound
}
func (stubOpportunityUC) Create(context.Context, uuid.UUID, repository.OpportunityCreate) (repository.Opportunity, error) {
	return repository.Opportunity{}, nil
}
func (stubOpportunityUC) Update(context.Context, uuid.UUID, repository.OpportunityUpdate) (repository.Opportunity, error) {
	return repository.Opportunity{}, nil
}
func (stubOpportunityUC) Delete(context.Context, uuid.UUID) error { return nil }

var _ usecase.OpportunityUsecase = stubOpportunityUC{}

type stubMLClient struct{}

func (stubMLClient) Predict(context.Context, ml.StudentFeatures) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}
func (stubMLClient) BatchPredict(context.Context, []ml.StudentFeatures) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}
func (stubMLClient) Health(context.Context) ml.HealthStatus {
	return ml.HealthStatus{Status: "healthy"}
}

func registryApp() *fiber.App {
	log := logger.NewNop()
	tokenSvc := jwt.NewHMACService("test-secret", time.Hour)

	reg := &Registry{
		Health:      handler.NewHealthHandler(config.AppConfig{AppName: "allumino-backend"}, nil, nil, nil),
		Auth:        handler.NewAuthHandler(nil, tokenSvc, nil, "http://localhost:3000"),
		User:        handler.NewUserHandler(nil),
		Pathway:     handler.NewPathwayHandler(nil),
		Assessment:  handler.NewAssessmentHandler(nil),
		Opportunity: handler.NewOpportunityHandler(stubOpportunityUC{}),
		Content:     handler.NewContentHandler(nil),
		ML:          handler.NewMLHandler(stubMLClient{}),

		AuthGuard:     middleware.NewAuthMiddleware(rejectingVerifier{}),
		APIRateLimit:  middleware.NewRateLimitMiddleware(nil, "api", 100, time.Minute),
		AuthRateLimit: middleware.NewRateLimitMiddleware(nil, "auth", 10, time.Minute),
	}

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(log, false).Middleware())
	reg.Register(app)
	return app
}

func status(t *testing.T, app *fiber.App, method, path string) int {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestRegister_UnmatchedRouteIs404WithoutCredentials(t *testing.T) {
	app := registryApp()

	if got := status(t, app, http.MethodGet, "/api/no-such-route"); got != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unmatched path, got %d", got)
	}
	if got := status(t, app, http.MethodGet, "/no-such-route"); got != fiber.StatusNotFound {
		t.Fatalf("expected 404 outside /api, got %d", got)
	}
}

func TestRegister_ProtectedRouteStillChallenges(t *testing.T) {
	app := registryApp()

	for _, path := range []string{"/api/pathways", "/api/assessments", "/api/me", "/api/opportunities"} {
		if got := status(t, app, http.MethodGet, path); got != fiber.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token, got %d", path, got)
		}
	}
	if got := status(t, app, http.MethodPost, "/api/ml/predict"); got != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for prediction without token, got %d", got)
	}
}

func TestRegister_PublicRoutesOpen(t *testing.T) {
	app := registryApp()

	if got := status(t, app, http.MethodGet, "/api/public/opportunities"); got != fiber.StatusOK {
		t.Fatalf("expected 200 for public listing, got %d", got)
	}
	if got := status(t, app, http.MethodGet, "/api/ml/health"); got != fiber.StatusOK {
		t.Fatalf("expected 200 for ml health, got %d", got)
	}
}
