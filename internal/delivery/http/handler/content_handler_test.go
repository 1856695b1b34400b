package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"allumino/internal/delivery/http/middleware"
	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"
	"allumino/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type mockContentUC struct {
	gets    int
	deletes int
	byID    map[string]repository.LearningContent
}

func (m *mockContentUC) Create(context.Context, uuid.UUID, repository.ContentCreate) (repository.LearningContent, error) {
	return repository.LearningContent{}, nil
}
func (m *mockContentUC) Get(_ context.Context, id string) (repository.LearningContent, error) {
	m.gets++
	c, ok := m.byID[id]
	if !ok {
		return repository.LearningContent{}, repository.ErrNotFound
	}
	return c, nil
}
func (m *mockContentUC) List(context.Context, repository.ContentFilter, pagination.Params) ([]repository.LearningContent, pagination.Block, error) {
	return nil, pagination.Block{}, nil
}
func (m *mockContentUC) Update(context.Context, string, uuid.UUID, repository.ContentUpdate) (repository.LearningContent, error) {
	return repository.LearningContent{}, nil
}
func (m *mockContentUC) Delete(_ context.Context, _ string, _ uuid.UUID) error {
	m.deletes++
	return nil
}

var _ usecase.ContentUsecase = (*mockContentUC)(nil)

func contentApp(uc usecase.ContentUsecase, ident *middleware.Identity) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(logger.NewNop(), false).Middleware())
	if ident != nil {
		app.Use(func(c fiber.Ctx) error {
			c.Locals(middleware.CtxIdentityKey, *ident)
			return c.Next()
		})
	}
	NewContentHandler(uc).RegisterRoutes(app.Group("/content"))
	return app
}

func TestContentHandler_Get_MalformedIDIs400(t *testing.T) {
	uc := &mockContentUC{}
	app := contentApp(uc, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/content/not-a-hex-id", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.StatusCode)
	}
	if uc.gets != 0 {
		t.Fatalf("malformed id must not reach the service")
	}
}

func TestContentHandler_Get_WellFormedUnknownIDIs404(t *testing.T) {
	uc := &mockContentUC{}
	app := contentApp(uc, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/content/64dbea4b2f8fb814c56f8a11", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
	if uc.gets != 1 {
		t.Fatalf("well-formed id should reach the service once, got %d", uc.gets)
	}
}

func TestContentHandler_Delete_MalformedIDIs400(t *testing.T) {
	uc := &mockContentUC{}
	ident := &middleware.Identity{UserID: uuid.New(), Source: middleware.SourceService}
	app := contentApp(uc, ident)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/content/zzz", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.StatusCode)
	}
	if uc.deletes != 0 {
		t.Fatalf("malformed id must not reach the service")
	}
}
