package usecase

import (
	"context"
	"strings"

	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

// Opportunity mutations are role-gated at the HTTP boundary (admin only), so
// there is no per-row ownership check here; the creator reference is recorded
// for audit.
type OpportunityUsecase interface {
	List(ctx context.Context, f repository.OpportunityFilter, p pagination.Params) ([]repository.Opportunity, pagination.Block, error)
	Get(ctx context.Context, id uuid.UUID) (repository.Opportunity, error)
	Create(ctx context.Context, createdByID uuid.UUID, in repository.OpportunityCreate) (repository.Opportunity, error)
	Update(ctx context.Context, id uuid.UUID, in repository.OpportunityUpdate) (repository.Opportunity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Opportunity struct {
	opportunities repository.OpportunityRepository
}

func NewOpportunityUsecase(opportunities repository.OpportunityRepository) *Opportunity {
	return &Opportunity{opportunities: opportunities}
}

func (u *Opportunity) List(ctx context.Context, f repository.OpportunityFilter, p pagination.Params) ([]repository.Opportunity, pagination.Block, error) {
	rows, err := u.opportunities.List(ctx, f, p.Limit, p.Offset())
	if err != nil {
		return nil, pagination.Block{}, err
	}
	total, err := u.opportunities.Count(ctx, f)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	return rows, pagination.NewBlock(p, total), nil
}

func (u *Opportunity) Get(ctx context.Context, id uuid.UUID) (repository.Opportunity, error) {
	return u.opportunities.FindByID(ctx, id)
}

func (u *Opportunity) Create(ctx context.Context, createdByID uuid.UUID, in repository.OpportunityCreate) (repository.Opportunity, error) {
	if strings.TrimSpace(in.Title) == "" {
		return repository.Opportunity{}, ErrInvalidInput
	}
	in.CreatedByID = createdByID
	return u.opportunities.Create(ctx, in)
}

func (u *Opportunity) Update(ctx context.Context, id uuid.UUID, in repository.OpportunityUpdate) (repository.Opportunity, error) {
	return u.opportunities.Update(ctx, id, in)
}

func (u *Opportunity) Delete(ctx context.Context, id uuid.UUID) error {
	return u.opportunities.Delete(ctx, id)
}

var _ OpportunityUsecase = (*Opportunity)(nil)
