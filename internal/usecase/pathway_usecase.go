package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"allumino/internal/config"
	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

// PathwayView is a pathway enriched with the learning-content documents its
// metadata references. Contents is only set when the metadata carries ids.
type PathwayView struct {
	repository.Pathway
	Contents []repository.LearningContent `json:"contents,omitempty"`
}

type PathwayUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in repository.PathwayCreate) (repository.Pathway, error)
	Get(ctx context.Context, id uuid.UUID) (PathwayView, error)
	ListOwn(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]repository.Pathway, pagination.Block, error)
	Update(ctx context.Context, id, userID uuid.UUID, in repository.PathwayUpdate) (repository.Pathway, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListPublic(ctx context.Context, search string, p pagination.Params) ([]repository.PublicPathway, pagination.Block, error)
}

type Pathway struct {
	pathways repository.PathwayRepository
	contents repository.ContentRepository

	// resolvePolicy decides what a failed content-id lookup does to Get:
	// best-effort drops it, fail-fast surfaces it.
	resolvePolicy string

	log *logger.Logger
}

func NewPathwayUsecase(
	pathways repository.PathwayRepository,
	contents repository.ContentRepository,
	resolvePolicy string,
	log *logger.Logger,
) *Pathway {
	if resolvePolicy != config.ResolveFailFast {
		resolvePolicy = config.ResolveBestEffort
	}
	return &Pathway{pathways: pathways, contents: contents, resolvePolicy: resolvePolicy, log: log}
}

func (u *Pathway) Create(ctx context.Context, userID uuid.UUID, in repository.PathwayCreate) (repository.Pathway, error) {
	if strings.TrimSpace(in.Title) == "" {
		return repository.Pathway{}, ErrInvalidInput
	}
	in.UserID = userID
	return u.pathways.Create(ctx, in)
}

// Get loads the relational row and resolves any metadata content references
// against the document store concurrently. A reference deleted since the
// pathway was written is dropped from the view, not an error.
func (u *Pathway) Get(ctx context.Context, id uuid.UUID) (PathwayView, error) {
	pw, err := u.pathways.FindByID(ctx, id)
	if err != nil {
		return PathwayView{}, err
	}

	view := PathwayView{Pathway: pw}

	ids := contentIDsFromMetadata(pw.Metadata)
	if len(ids) == 0 {
		return view, nil
	}

	resolved := make([]*repository.LearningContent, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, cid := range ids {
		wg.Add(1)
		go func(i int, cid string) {
			defer wg.Done()
			c, err := u.contents.FindByID(ctx, cid)
			if err != nil {
				errs[i] = err
				return
			}
			resolved[i] = &c
		}(i, cid)
	}
	wg.Wait()

	contents := make([]repository.LearningContent, 0, len(ids))
	for i := range ids {
		if errs[i] != nil {
			if u.resolvePolicy == config.ResolveFailFast && !errors.Is(errs[i], repository.ErrNotFound) {
				return PathwayView{}, errs[i]
			}
			u.log.Debug("pathway content reference dropped", "pathway_id", id, "content_id", ids[i], "error", errs[i])
			continue
		}
		contents = append(contents, *resolved[i])
	}
	view.Contents = contents

	return view, nil
}

// contentIDsFromMetadata pulls the contentIds list out of the free-form
// metadata blob, tolerating the shapes JSON decoding produces.
func contentIDsFromMetadata(metadata map[string]any) []string {
	raw, ok := metadata["contentIds"]
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

func (u *Pathway) ListOwn(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]repository.Pathway, pagination.Block, error) {
	rows, err := u.pathways.FindByOwner(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, pagination.Block{}, err
	}
	total, err := u.pathways.CountByOwner(ctx, userID)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	return rows, pagination.NewBlock(p, total), nil
}

func (u *Pathway) Update(ctx context.Context, id, userID uuid.UUID, in repository.PathwayUpdate) (repository.Pathway, error) {
	if err := u.checkOwnership(ctx, id, userID); err != nil {
		return repository.Pathway{}, err
	}
	return u.pathways.Update(ctx, id, in)
}

func (u *Pathway) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := u.checkOwnership(ctx, id, userID); err != nil {
		return err
	}
	return u.pathways.Delete(ctx, id)
}

// checkOwnership fails identically for "absent" and "not yours" so mutation
// attempts cannot probe for existence.
func (u *Pathway) checkOwnership(ctx context.Context, id, userID uuid.UUID) error {
	pw, err := u.pathways.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	if pw.UserID != userID {
		return ErrUnauthorized
	}
	return nil
}

func (u *Pathway) ListPublic(ctx context.Context, search string, p pagination.Params) ([]repository.PublicPathway, pagination.Block, error) {
	rows, err := u.pathways.ListPublic(ctx, search, p.Limit, p.Offset())
	if err != nil {
		return nil, pagination.Block{}, err
	}
	total, err := u.pathways.CountPublic(ctx, search)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	return rows, pagination.NewBlock(p, total), nil
}

var _ PathwayUsecase = (*Pathway)(nil)
