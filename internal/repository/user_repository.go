package repository

import (
	"context"
	"time"

	"allumino/internal/database"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID      `json:"id"`
	Auth0ID     string         `json:"auth0Id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
	AvatarURL   string         `json:"avatarUrl"`
	Roles       []string       `json:"roles"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// UserUpsert carries the provider-asserted profile written on every login.
type UserUpsert struct {
	Auth0ID     string
	Email       string
	DisplayName string
	AvatarURL   string
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	FindByAuth0ID(ctx context.Context, auth0ID string) (User, error)
	Upsert(ctx context.Context, in UserUpsert) (User, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, auth0_id, email, display_name, avatar_url, roles, metadata, created_at, updated_at`

func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresUserRepository) FindByAuth0ID(ctx context.Context, auth0ID string) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	return scanUser(row)
}

// Upsert creates the user on first login and refreshes the provider-owned
// fields on re-login. Roles and metadata are never touched here; ownership of
// those stays with admin tooling.
func (r *PostgresUserRepository) Upsert(ctx context.Context, in UserUpsert) (User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (auth0_id, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth0_id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING `+userColumns,
		in.Auth0ID, in.Email, in.DisplayName, in.AvatarURL,
	)
	return scanUser(row)
}

func scanUser(row database.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Auth0ID, &u.Email, &u.DisplayName, &u.AvatarURL,
		&u.Roles, &u.Metadata, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, translatePgError(err)
	}
	return u, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
