package usecase

import (
	"context"
	"strings"

	"allumino/internal/pkg/auth0"
	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

const EventUserLogin = "user.login"

// ActivityPublisher receives every appended activity entry; the websocket hub
// implements it. A nil publisher is a no-op.
type ActivityPublisher interface {
	PublishActivity(entry repository.ActivityLog)
}

// UserWithProfile is the cross-store view returned by GetProfile.
type UserWithProfile struct {
	repository.User
	Profile *repository.UserProfile `json:"profile"`
}

type UserUsecase interface {
	CreateOrUpdateUser(ctx context.Context, in auth0.Profile, meta repository.ActivityMetadata) (repository.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (UserWithProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in repository.ProfileUpdate) (repository.UserProfile, error)
	ListActivity(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]repository.ActivityLog, pagination.Block, error)
}

type User struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	activity  repository.ActivityRepository
	publisher ActivityPublisher
	log       *logger.Logger
}

func NewUserUsecase(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	activity repository.ActivityRepository,
	publisher ActivityPublisher,
	log *logger.Logger,
) *User {
	return &User{users: users, profiles: profiles, activity: activity, publisher: publisher, log: log}
}

// CreateOrUpdateUser runs the login side effects: upsert the relational user,
// lazily create the document profile, append a login activity entry. The
// profile and activity writes are best-effort — a failure there is logged and
// does not undo the upsert.
func (u *User) CreateOrUpdateUser(ctx context.Context, in auth0.Profile, meta repository.ActivityMetadata) (repository.User, error) {
	if strings.TrimSpace(in.Auth0ID) == "" || strings.TrimSpace(in.Email) == "" {
		return repository.User{}, ErrInvalidInput
	}

	usr, err := u.users.Upsert(ctx, repository.UserUpsert{
		Auth0ID:     in.Auth0ID,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		AvatarURL:   in.AvatarURL,
	})
	if err != nil {
		return repository.User{}, err
	}

	userID := usr.ID.String()

	if _, err := u.profiles.FindByUserID(ctx, userID); err != nil {
		if _, cerr := u.profiles.CreateEmpty(ctx, userID); cerr != nil {
			u.log.Error("profile create failed on login", "user_id", userID, "error", cerr)
		}
	}

	entry, err := u.activity.Append(ctx, repository.ActivityAppend{
		UserID:    userID,
		EventType: EventUserLogin,
		Payload:   map[string]any{"auth0Id": usr.Auth0ID},
		Metadata:  meta,
	})
	if err != nil {
		u.log.Error("activity append failed on login", "user_id", userID, "error", err)
	} else if u.publisher != nil {
		u.publisher.PublishActivity(entry)
	}

	return usr, nil
}

func (u *User) GetProfile(ctx context.Context, userID uuid.UUID) (UserWithProfile, error) {
	usr, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return UserWithProfile{}, err
	}

	out := UserWithProfile{User: usr}

	// Missing profile document is tolerated: the view just carries null.
	if prof, err := u.profiles.FindByUserID(ctx, userID.String()); err == nil {
		out.Profile = &prof
	}

	return out, nil
}

func (u *User) UpdateProfile(ctx context.Context, userID uuid.UUID, in repository.ProfileUpdate) (repository.UserProfile, error) {
	if in.Preferences == nil && in.CustomFields == nil {
		return repository.UserProfile{}, ErrInvalidInput
	}
	return u.profiles.Upsert(ctx, userID.String(), in)
}

func (u *User) ListActivity(ctx context.Context, userID uuid.UUID, p pagination.Params) ([]repository.ActivityLog, pagination.Block, error) {
	entries, err := u.activity.ListByUser(ctx, userID.String(), p.Offset(), p.Limit)
	if err != nil {
		return nil, pagination.Block{}, err
	}
	total, err := u.activity.CountByUser(ctx, userID.String())
	if err != nil {
		return nil, pagination.Block{}, err
	}
	return entries, pagination.NewBlock(p, total), nil
}

var _ UserUsecase = (*User)(nil)
