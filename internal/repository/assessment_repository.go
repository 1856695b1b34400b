package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"allumino/internal/database"

	"github.com/google/uuid"
)

type Assessment struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	PathwayID   *uuid.UUID     `json:"pathwayId,omitempty"`
	Title       string         `json:"title"`
	Type        string         `json:"type"`
	Score       *float64       `json:"score,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type AssessmentCreate struct {
	UserID      uuid.UUID
	PathwayID   *uuid.UUID
	Title       string
	Type        string
	Score       *float64
	CompletedAt *time.Time
	Metadata    map[string]any
}

type AssessmentUpdate struct {
	Title       *string
	Type        *string
	Score       *float64
	CompletedAt *time.Time
	Metadata    map[string]any
}

type AssessmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Assessment, error)
	FindByOwner(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Assessment, error)
	CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, in AssessmentCreate) (Assessment, error)
	Update(ctx context.Context, id uuid.UUID, in AssessmentUpdate) (Assessment, error)
}

type PostgresAssessmentRepository struct {
	db database.DB
}

func NewPostgresAssessmentRepository(db database.DB) *PostgresAssessmentRepository {
	return &PostgresAssessmentRepository{db: db}
}

const assessmentColumns = `id, user_id, pathway_id, title, type, score, completed_at, metadata, created_at, updated_at`

func (r *PostgresAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (Assessment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	return scanAssessment(row)
}

func (r *PostgresAssessmentRepository) FindByOwner(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Assessment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+assessmentColumns+`
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	out := make([]Assessment, 0)
	for rows.Next() {
		var a Assessment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.PathwayID, &a.Title, &a.Type,
			&a.Score, &a.CompletedAt, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, translatePgError(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *PostgresAssessmentRepository) CountByOwner(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM assessments WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, translatePgError(err)
	}
	return n, nil
}

func (r *PostgresAssessmentRepository) Create(ctx context.Context, in AssessmentCreate) (Assessment, error) {
	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO assessments (user_id, pathway_id, title, type, score, completed_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+assessmentColumns,
		in.UserID, in.PathwayID, in.Title, in.Type, in.Score, in.CompletedAt, metadata,
	)
	return scanAssessment(row)
}

func (r *PostgresAssessmentRepository) Update(ctx context.Context, id uuid.UUID, in AssessmentUpdate) (Assessment, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	if in.Title != nil {
		args = append(args, *in.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if in.Type != nil {
		args = append(args, *in.Type)
		sets = append(sets, fmt.Sprintf("type = $%d", len(args)))
	}
	if in.Score != nil {
		args = append(args, *in.Score)
		sets = append(sets, fmt.Sprintf("score = $%d", len(args)))
	}
	if in.CompletedAt != nil {
		args = append(args, *in.CompletedAt)
		sets = append(sets, fmt.Sprintf("completed_at = $%d", len(args)))
	}
	if in.Metadata != nil {
		args = append(args, in.Metadata)
		sets = append(sets, fmt.Sprintf("metadata = $%d", len(args)))
	}

	row := r.db.QueryRow(ctx, `
		UPDATE assessments SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+assessmentColumns,
		args...,
	)
	return scanAssessment(row)
}

func scanAssessment(row database.Row) (Assessment, error) {
	var a Assessment
	err := row.Scan(
		&a.ID, &a.UserID, &a.PathwayID, &a.Title, &a.Type,
		&a.Score, &a.CompletedAt, &a.Metadata, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Assessment{}, translatePgError(err)
	}
	return a, nil
}

var _ AssessmentRepository = (*PostgresAssessmentRepository)(nil)
