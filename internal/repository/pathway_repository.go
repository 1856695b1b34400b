package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"allumino/internal/database"

	"github.com/google/uuid"
)

type Pathway struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	Owner *PathwayOwner `json:"user,omitempty"`
}

type PathwayOwner struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
}

// PublicPathway is the reduced projection exposed without authentication.
type PublicPathway struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PathwayCreate struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Metadata    map[string]any
}

// PathwayUpdate is a partial update; nil fields are left untouched.
type PathwayUpdate struct {
	Title       *string
	Description *string
	Metadata    map[string]any
}

type PathwayRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Pathway, error)
	FindByOwner(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Pathway, error)
	CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, in PathwayCreate) (Pathway, error)
	Update(ctx context.Context, id uuid.UUID, in PathwayUpdate) (Pathway, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListPublic(ctx context.Context, search string, limit, offset int) ([]PublicPathway, error)
	CountPublic(ctx context.Context, search string) (int64, error)
}

type PostgresPathwayRepository struct {
	db database.DB
}

func NewPostgresPathwayRepository(db database.DB) *PostgresPathwayRepository {
	return &PostgresPathwayRepository{db: db}
}

const pathwayColumns = `p.id, p.user_id, p.title, p.description, p.metadata, p.created_at, p.updated_at`

func (r *PostgresPathwayRepository) FindByID(ctx context.Context, id uuid.UUID) (Pathway, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+pathwayColumns+`, u.id, u.email, u.display_name
		FROM pathways p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`, id)

	var p Pathway
	var owner PathwayOwner
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Metadata, &p.CreatedAt, &p.UpdatedAt,
		&owner.ID, &owner.Email, &owner.DisplayName,
	)
	if err != nil {
		return Pathway{}, translatePgError(err)
	}
	p.Owner = &owner
	return p, nil
}

func (r *PostgresPathwayRepository) FindByOwner(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Pathway, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pathwayColumns+`
		FROM pathways p
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	out := make([]Pathway, 0)
	for rows.Next() {
		var p Pathway
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Metadata, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, translatePgError(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *PostgresPathwayRepository) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM pathways WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, translatePgError(err)
	}
	return n, nil
}

func (r *PostgresPathwayRepository) Create(ctx context.Context, in PathwayCreate) (Pathway, error) {
	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO pathways (user_id, title, description, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING `+strings.ReplaceAll(pathwayColumns, "p.", ""),
		in.UserID, in.Title, in.Description, metadata,
	)

	var p Pathway
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Pathway{}, translatePgError(err)
	}
	return p, nil
}

func (r *PostgresPathwayRepository) Update(ctx context.Context, id uuid.UUID, in PathwayUpdate) (Pathway, error) {
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
	if in.Metadata != nil {
		args = append(args, in.Metadata)
		sets = append(sets, fmt.Sprintf("metadata = $%d", len(args)))
	}

	row := r.db.QueryRow(ctx, `
		UPDATE pathways SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+strings.ReplaceAll(pathwayColumns, "p.", ""),
		args...,
	)

	var p Pathway
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Metadata, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Pathway{}, translatePgError(err)
	}
	return p, nil
}

func (r *PostgresPathwayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM pathways WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPathwayRepository) ListPublic(ctx context.Context, search string, limit, offset int) ([]PublicPathway, error) {
	where := ""
	args := []any{limit, offset}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+s+"%")
		where = fmt.Sprintf("WHERE title ILIKE $%d OR description ILIKE $%d", len(args), len(args))
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, created_at
		FROM pathways `+where+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		args...,
	)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	out := make([]PublicPathway, 0)
	for rows.Next() {
		var p PublicPathway
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			return nil, translatePgError(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *PostgresPathwayRepository) CountPublic(ctx context.Context, search string) (int64, error) {
	where := ""
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+s+"%")
		where = "WHERE title ILIKE $1 OR description ILIKE $1"
	}

	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM pathways `+where, args...).Scan(&n)
	if err != nil {
		return 0, translatePgError(err)
	}
	return n, nil
}

var _ PathwayRepository = (*PostgresPathwayRepository)(nil)
