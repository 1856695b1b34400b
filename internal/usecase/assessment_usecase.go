package usecase

import (
	"context"
	"errors"
	"strings"

	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

// AssessmentView merges the relational row with its document-store result.
// Result is null when no raw data was ever attached.
type AssessmentView struct {
	repository.Assessment
	Result *repository.AssessmentResult `json:"result"`
}

type AssessmentCreateInput struct {
	repository.AssessmentCreate

	// RawData, when present, becomes a linked AssessmentResult document.
	RawData   any
	Responses []repository.QuestionResponse
}

type AssessmentUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in AssessmentCreateInput) (repository.Assessment, error)
	Get(ctx context.Context, id uuid.UUID) (AssessmentView, error)
	ListOwn(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]repository.Assessment, pagination.Block, error)
	Update(ctx context.Context, id, userID uuid.UUID, in repository.AssessmentUpdate) (repository.Assessment, error)
}

type Assessment struct {
	assessments repository.AssessmentRepository
	results     repository.ResultRepository
	log         *logger.Logger
}

func NewAssessmentUsecase(
	assessments repository.AssessmentRepository,
	results repository.ResultRepository,
	log *logger.Logger,
) *Assessment {
	return &Assessment{assessments: assessments, results: results, log: log}
}

// Create writes the relational row first and the result document second.
// A failed result write leaves the row standing without a result; that window
// is logged, not rolled back.
func (u *Assessment) Create(ctx context.Context, userID uuid.UUID, in AssessmentCreateInput) (repository.Assessment, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Type) == "" {
		return repository.Assessment{}, ErrInvalidInput
	}

	in.AssessmentCreate.UserID = userID
	a, err := u.assessments.Create(ctx, in.AssessmentCreate)
	if err != nil {
		return repository.Assessment{}, err
	}

	if in.RawData != nil {
		_, rerr := u.results.Create(ctx, repository.ResultCreate{
			AssessmentID: a.ID.String(),
			UserID:       userID.String(),
			RawData:      in.RawData,
			Responses:    in.Responses,
		})
		if rerr != nil {
			u.log.Error("assessment result write failed, row left without result",
				"assessment_id", a.ID, "error", rerr)
		}
	}

	return a, nil
}

func (u *Assessment) Get(ctx context.Context, id uuid.UUID) (AssessmentView, error) {
	a, err := u.assessments.FindByID(ctx, id)
	if err != nil {
		return AssessmentView{}, err
	}

	view := AssessmentView{Assessment: a}

	res, err := u.results.FindByAssessmentID(ctx, id.String())
	if err == nil {
		view.Result = &res
	} else if !errors.Is(err, repository.ErrNotFound) {
		u.log.Warn("assessment result lookup failed", "assessment_id", id, "error", err)
	}

	return view, nil
}

func (u *Assessment) ListOwn(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]repository.Assessment, pagination.Block, error) {
	rows, err := u.assessments.FindByOwner(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, pagination.Block{}, err
	}
	total, err := u.assessments.CountByOwner(ctx, userID)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	return rows, pagination.NewBlock(p, total), nil
}

func (u *Assessment) Update(ctx context.Context, id, userID uuid.UUID, in repository.AssessmentUpdate) (repository.Assessment, error) {
	a, err := u.assessments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Assessment{}, ErrUnauthorized
		}
		return repository.Assessment{}, err
	}
	if a.UserID != userID {
		return repository.Assessment{}, ErrUnauthorized
	}

	return u.assessments.Update(ctx, id, in)
}

var _ AssessmentUsecase = (*Assessment)(nil)
