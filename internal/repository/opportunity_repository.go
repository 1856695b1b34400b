package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"allumino/internal/database"

	"github.com/google/uuid"
)

type Opportunity struct {
	ID          uuid.UUID `json:"id"`
	CreatedByID uuid.UUID `json:"createdById"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type OpportunityCreate struct {
	CreatedByID uuid.UUID
	Title       string
	Description string
	Location    string
	Tags        []string
}

type OpportunityUpdate struct {
	Title       *string
	Description *string
	Location    *string
	Tags        []string
}

// OpportunityFilter narrows listings; zero values mean "no filter".
type OpportunityFilter struct {
	Tags     []string
	Location string
	Search   string
}

type OpportunityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Opportunity, error)
	List(ctx context.Context, f OpportunityFilter, limit, offset int) ([]Opportunity, error)
	Count(ctx context.Context, f OpportunityFilter) (int64, error)
	Create(ctx context.Context, in OpportunityCreate) (Opportunity, error)
	Update(ctx context.Context, id uuid.UUID, in OpportunityUpdate) (Opportunity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresOpportunityRepository struct {
	db database.DB
}

func NewPostgresOpportunityRepository(db database.DB) *PostgresOpportunityRepository {
	return &PostgresOpportunityRepository{db: db}
}

const opportunityColumns = `id, created_by_id, title, description, location, tags, created_at, updated_at`

func (r *PostgresOpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (Opportunity, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	return scanOpportunity(row)
}

func (r *PostgresOpportunityRepository) List(ctx context.Context, f OpportunityFilter, limit, offset int) ([]Opportunity, error) {
	where, args := opportunityWhere(f, 2)
	args = append([]any{limit, offset}, args...)

	rows, err := r.db.Query(ctx, `
		SELECT `+opportunityColumns+`
		FROM opportunities `+where+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		args...,
	)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	out := make([]Opportunity, 0)
	for rows.Next() {
		var o Opportunity
		if err := rows.Scan(
			&o.ID, &o.CreatedByID, &o.Title, &o.Description, &o.Location,
			&o.Tags, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, translatePgError(err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *PostgresOpportunityRepository) Count(ctx context.Context, f OpportunityFilter) (int64, error) {
	where, args := opportunityWhere(f, 0)

	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM opportunities `+where, args...).Scan(&n)
	if err != nil {
		return 0, translatePgError(err)
	}
	return n, nil
}

// opportunityWhere builds the filter clause; argOffset is the count of
// positional args already consumed by the caller.
func opportunityWhere(f OpportunityFilter, argOffset int) (string, []any) {
	conds := []string{}
	args := []any{}

	next := func() int { return argOffset + len(args) }

	if len(f.Tags) > 0 {
		args = append(args, f.Tags)
		conds = append(conds, fmt.Sprintf("tags && $%d", next()))
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", next()))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", next(), next()))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresOpportunityRepository) Create(ctx context.Context, in OpportunityCreate) (Opportunity, error) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO opportunities (created_by_id, title, description, location, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+opportunityColumns,
		in.CreatedByID, in.Title, in.Description, in.Location, tags,
	)
	return scanOpportunity(row)
}

func (r *PostgresOpportunityRepository) Update(ctx context.Context, id uuid.UUID, in OpportunityUpdate) (Opportunity, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	if in.Title != nil {
		args = append(args, *in.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if in.Description != nil {
		args = append(args, *in.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if in.Location != nil {
		args = append(args, *in.Location)
		sets = append(sets, fmt.Sprintf("location = $%d", len(args)))
	}
	if in.Tags != nil {
		args = append(args, in.Tags)
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}

	row := r.db.QueryRow(ctx, `
		UPDATE opportunities SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+opportunityColumns,
		args...,
	)
	return scanOpportunity(row)
}

func (r *PostgresOpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOpportunity(row database.Row) (Opportunity, error) {
	var o Opportunity
	err := row.Scan(
		&o.ID, &o.CreatedByID, &o.Title, &o.Description, &o.Location,
		&o.Tags, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return Opportunity{}, translatePgError(err)
	}
	return o, nil
}

var _ OpportunityRepository = (*PostgresOpportunityRepository)(nil)
