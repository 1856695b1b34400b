package usecase

import (
	"context"
	"errors"
	"testing"

	"allumino/internal/pkg/logger"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

type mockAssessmentRepo struct {
	byID    map[uuid.UUID]repository.Assessment
	creates int
	updates int
}

func (m *mockAssessmentRepo) FindByID(_ context.Context, id uuid.UUID) (repository.Assessment, error) {
	a, ok := m.byID[id]
	if !ok {
		return repository.Assessment{}, repository.ErrNotFound
	}
	return a, nil
}
func (m *mockAssessmentRepo) FindByOwner(context.Context, uuid.UUID, int, int) ([]repository.Assessment, error) {
	return nil, nil
}
func (m *mockAssessmentRepo) CountByOwner(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (m *mockAssessmentRepo) Create(_ context.Context, in repository.AssessmentCreate) (repository.Assessment, error) {
	m.creates++
	a := repository.Assessment{ID: uuid.New(), UserID: in.UserID, Title: in.Title, Type: in.Type}
	if m.byID == nil {
		m.byID = map[uuid.UUID]repository.Assessment{}
	}
	m.byID[a.ID] = a
	return a, nil
}
func (m *mockAssessmentRepo) Update(_ context.Context, id uuid.UUID, _ repository.AssessmentUpdate) (repository.Assessment, error) {
	m.updates++
	return m.byID[id], nil
}

type mockResultRepo struct {
	byAssessment map[string]repository.AssessmentResult
	creates      int
	err          error
}

func (m *mockResultRepo) Create(_ context.Context, in repository.ResultCreate) (repository.AssessmentResult, error) {
	if m.err != nil {
		return repository.AssessmentResult{}, m.err
	}
	m.creates++
	r := repository.AssessmentResult{AssessmentID: in.AssessmentID, UserID: in.UserID, RawData: in.RawData}
	if m.byAssessment == nil {
		m.byAssessment = map[string]repository.AssessmentResult{}
	}
	m.byAssessment[in.AssessmentID] = r
	return r, nil
}
func (m *mockResultRepo) FindByAssessmentID(_ context.Context, assessmentID string) (repository.AssessmentResult, error) {
	r, ok := m.byAssessment[assessmentID]
	if !ok {
		return repository.AssessmentResult{}, repository.ErrNotFound
	}
	return r, nil
}

func TestAssessmentUsecase_Create_WithRawData(t *testing.T) {
	assessments := &mockAssessmentRepo{}
	results := &mockResultRepo{}
	uc := NewAssessmentUsecase(assessments, results, logger.NewNop())
	userID := uuid.New()

	a, err := uc.Create(context.Background(), userID, AssessmentCreateInput{
		AssessmentCreate: repository.AssessmentCreate{Title: "Quiz", Type: "quiz"},
		RawData:          map[string]any{"answers": []int{1, 2}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if results.creates != 1 {
		t.Fatalf("expected result document written, got %d", results.creates)
	}

	view, err := uc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Result == nil || view.Result.AssessmentID != a.ID.String() {
		t.Fatalf("expected merged result, got %+v", view.Result)
	}
}

func TestAssessmentUsecase_Create_WithoutRawData(t *testing.T) {
	assessments := &mockAssessmentRepo{}
	results := &mockResultRepo{}
	uc := NewAssessmentUsecase(assessments, results, logger.NewNop())

	a, err := uc.Create(context.Background(), uuid.New(), AssessmentCreateInput{
		AssessmentCreate: repository.AssessmentCreate{Title: "Quiz", Type: "quiz"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if results.creates != 0 {
		t.Fatalf("no raw data, no result document")
	}

	view, err := uc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Result != nil {
		t.Fatalf("expected null result, got %+v", view.Result)
	}
}

func TestAssessmentUsecase_Create_ResultFailureKeepsRow(t *testing.T) {
	assessments := &mockAssessmentRepo{}
	results := &mockResultRepo{err: errors.New("mongo down")}
	uc := NewAssessmentUsecase(assessments, results, logger.NewNop())

	a, err := uc.Create(context.Background(), uuid.New(), AssessmentCreateInput{
		AssessmentCreate: repository.AssessmentCreate{Title: "Quiz", Type: "quiz"},
		RawData:          map[string]any{"x": 1},
	})
	if err != nil {
		t.Fatalf("row write must survive result failure, got %v", err)
	}
	if _, ok := assessments.byID[a.ID]; !ok {
		t.Fatalf("row missing after result failure")
	}
}

func TestAssessmentUsecase_Create_RequiresTitleAndType(t *testing.T) {
	uc := NewAssessmentUsecase(&mockAssessmentRepo{}, &mockResultRepo{}, logger.NewNop())

	_, err := uc.Create(context.Background(), uuid.New(), AssessmentCreateInput{
		AssessmentCreate: repository.AssessmentCreate{Title: "Quiz"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAssessmentUsecase_Update_ForeignOwner(t *testing.T) {
	id := uuid.New()
	assessments := &mockAssessmentRepo{byID: map[uuid.UUID]repository.Assessment{
		id: {ID: id, UserID: uuid.New()},
	}}
	uc := NewAssessmentUsecase(assessments, &mockResultRepo{}, logger.NewNop())

	title := "renamed"
	_, err := uc.Update(context.Background(), id, uuid.New(), repository.AssessmentUpdate{Title: &title})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if assessments.updates != 0 {
		t.Fatalf("update must not reach the store")
	}
}
