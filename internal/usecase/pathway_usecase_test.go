package usecase

import (
	"context"
	"errors"
	"testing"

	"allumino/internal/config"
	"allumino/internal/pkg/logger"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

type mockPathwayRepo struct {
	byID    map[uuid.UUID]repository.Pathway
	updates int
	deletes int
}

func (m *mockPathwayRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Pathway, error) {
	pw, ok := m.byID[id]
	if !ok {
		return repository.Pathway{}, repository.ErrNotFound
	}
	return pw, nil
}
func (m *mockPathwayRepo) FindByOwner(context.Context, uuid.UUID, int, int) ([]repository.Pathway, error) {
	return nil, nil
}
func (m *mockPathwayRepo) CountByOwner(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (m *mockPathwayRepo) Create(_ context.Context, in repository.PathwayCreate) (repository.Pathway, error) {
	return repository.Pathway{ID: uuid.New(), UserID: in.UserID, Title: in.Title, Metadata: in.Metadata}, nil
}
func (m *mockPathwayRepo) Update(_ context.Context, id uuid.UUID, _ repository.PathwayUpdate) (repository.Pathway, error) {
	m.updates++
	return m.byID[id], nil
}
func (m *mockPathwayRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.deletes++
	delete(m.byID, id)
	return nil
}
func (m *mockPathwayRepo) ListPublic(context.Context, string, int, int) ([]repository.PublicPathway, error) {
	return nil, nil
}
func (m *mockPathwayRepo) CountPublic(context.Context, string) (int64, error) { return 0, nil }

type mockContentRepo struct {
	byID map[string]repository.LearningContent
	err  error
}

func (m *mockContentRepo) FindByID(_ context.Context, id string) (repository.LearningContent, error) {
	if m.err != nil {
		return repository.LearningContent{}, m.err
	}
	c, ok := m.byID[id]
	if !ok {
		return repository.LearningContent{}, repository.ErrNotFound
	}
	return c, nil
}
func (m *mockContentRepo) List(context.Context, repository.ContentFilter, int, int) ([]repository.LearningContent, error) {
	return nil, nil
}
func (m *mockContentRepo) Count(context.Context, repository.ContentFilter) (int64, error) {
	return 0, nil
}
func (m *mockContentRepo) Create(context.Context, repository.ContentCreate) (repository.LearningContent, error) {
	return repository.LearningContent{}, nil
}
func (m *mockContentRepo) Update(context.Context, string, repository.ContentUpdate) (repository.LearningContent, error) {
	return repository.LearningContent{}, nil
}
func (m *mockContentRepo) Delete(context.Context, string) error { return nil }

func TestPathwayUsecase_Get_ResolvesContentRefs(t *testing.T) {
	pwID := uuid.New()
	pathways := &mockPathwayRepo{byID: map[uuid.UUID]repository.Pathway{
		pwID: {ID: pwID, Metadata: map[string]any{"contentIds": []any{"c1", "c2", "gone"}}},
	}}
	contents := &mockContentRepo{byID: map[string]repository.LearningContent{
		"c1": {Title: "Intro"},
		"c2": {Title: "Advanced"},
	}}

	uc := NewPathwayUsecase(pathways, contents, config.ResolveBestEffort, logger.NewNop())

	view, err := uc.Get(context.Background(), pwID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(view.Contents) != 2 {
		t.Fatalf("expected 2 resolved references, got %d", len(view.Contents))
	}
}

func TestPathwayUsecase_Get_FailFastSurfacesStoreError(t *testing.T) {
	pwID := uuid.New()
	pathways := &mockPathwayRepo{byID: map[uuid.UUID]repository.Pathway{
		pwID: {ID: pwID, Metadata: map[string]any{"contentIds": []any{"c1"}}},
	}}
	storeErr := errors.New("mongo timeout")

	uc := NewPathwayUsecase(pathways, &mockContentRepo{err: storeErr}, config.ResolveFailFast, logger.NewNop())

	if _, err := uc.Get(context.Background(), pwID); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error surfaced, got %v", err)
	}
}

func TestPathwayUsecase_Get_FailFastStillDropsMissingRefs(t *testing.T) {
	pwID := uuid.New()
	pathways := &mockPathwayRepo{byID: map[uuid.UUID]repository.Pathway{
		pwID: {ID: pwID, Metadata: map[string]any{"contentIds": []any{"deleted"}}},
	}}

	uc := NewPathwayUsecase(pathways, &mockContentRepo{}, config.ResolveFailFast, logger.NewNop())

	view, err := uc.Get(context.Background(), pwID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(view.Contents) != 0 {
		t.Fatalf("expected missing reference dropped, got %d", len(view.Contents))
	}
}

func TestPathwayUsecase_Update_ForeignOwner(t *testing.T) {
	pwID := uuid.New()
	owner := uuid.New()
	pathways := &mockPathwayRepo{byID: map[uuid.UUID]repository.Pathway{
		pwID: {ID: pwID, UserID: owner},
	}}

	uc := NewPathwayUsecase(pathways, &mockContentRepo{}, config.ResolveBestEffort, logger.NewNop())

	title := "hijack"
	_, err := uc.Update(context.Background(), pwID, uuid.New(), repository.PathwayUpdate{Title: &title})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if pathways.updates != 0 {
		t.Fatalf("update must not reach the store")
	}
}

func TestPathwayUsecase_Delete_AbsentLooksLikeForeign(t *testing.T) {
	uc := NewPathwayUsecase(&mockPathwayRepo{byID: map[uuid.UUID]repository.Pathway{}}, &mockContentRepo{}, config.ResolveBestEffort, logger.NewNop())

	if err := uc.Delete(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for absent pathway, got %v", err)
	}
}

func TestPathwayUsecase_Create_RequiresTitle(t *testing.T) {
	uc := NewPathwayUsecase(&mockPathwayRepo{}, &mockContentRepo{}, config.ResolveBestEffort, logger.NewNop())

	if _, err := uc.Create(context.Background(), uuid.New(), repository.PathwayCreate{Title: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
