package usecase

import (
	"context"
	"errors"
	"strings"

	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

type ContentUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in repository.ContentCreate) (repository.LearningContent, error)
	Get(ctx context.Context, id string) (repository.LearningContent, error)
	List(ctx context.Context, f repository.ContentFilter, p pagination.Params) ([]repository.LearningContent, pagination.Block, error)
	Update(ctx context.Context, id string, userID uuid.UUID, in repository.ContentUpdate) (repository.LearningContent, error)
	Delete(ctx context.Context, id string, userID uuid.UUID) error
}

type Content struct {
	contents repository.ContentRepository
}

func NewContentUsecase(contents repository.ContentRepository) *Content {
	return &Content{contents: contents}
}

func (u *Content) Create(ctx context.Context, userID uuid.UUID, in repository.ContentCreate) (repository.LearningContent, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return repository.LearningContent{}, ErrInvalidInput
	}
	in.CreatedBy = userID.String()
	return u.contents.Create(ctx, in)
}

func (u *Content) Get(ctx context.Context, id string) (repository.LearningContent, error) {
	return u.contents.FindByID(ctx, id)
}

func (u *Content) List(ctx context.Context, f repository.ContentFilter, p pagination.Params) ([]repository.LearningContent, pagination.Block, error) {
	rows, err := u.contents.List(ctx, f, p.Offset(), p.Limit)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	total, err := u.contents.Count(ctx, f)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	return rows, pagination.NewBlock(p, total), nil
}

func (u *Content) Update(ctx context.Context, id string, userID uuid.UUID, in repository.ContentUpdate) (repository.LearningContent, error) {
	if err := u.checkCreator(ctx, id, userID); err != nil {
		return repository.LearningContent{}, err
	}
	return u.contents.Update(ctx, id, in)
}

func (u *Content) Delete(ctx context.Context, id string, userID uuid.UUID) error {
	if err := u.checkCreator(ctx, id, userID); err != nil {
		return err
	}
	return u.contents.Delete(ctx, id)
}

func (u *Content) checkCreator(ctx context.Context, id string, userID uuid.UUID) error {
	c, err := u.contents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if c.CreatedBy != userID.String() {
		return ErrUnauthorized
	}
	return nil
}

var _ ContentUsecase = (*Content)(nil)
