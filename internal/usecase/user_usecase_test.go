package usecase

import (
	"context"
	"errors"
	"testing"

	"allumino/internal/pkg/auth0"
	"allumino/internal/pkg/logger"
	"allumino/internal/pkg/pagination"
	"allumino/internal/repository"

	"github.com/google/uuid"
)

type mockUserRepo struct {
	upserts int
	user    repository.User
	err     error
}

func (m *mockUserRepo) FindByID(context.Context, uuid.UUID) (repository.User, error) {
	return m.user, m.err
}
func (m *mockUserRepo) FindByAuth0ID(context.Context, string) (repository.User, error) {
	return m.user, m.err
}
func (m *mockUserRepo) Upsert(_ context.Context, in repository.UserUpsert) (repository.User, error) {
	m.upserts++
	if m.err != nil {
		return repository.User{}, m.err
	}
	u := m.user
	u.Auth0ID = in.Auth0ID
	u.Email = in.Email
	return u, nil
}

type mockProfileRepo struct {
	existing map[string]repository.UserProfile
	creates  int
	upserts  int
}

func (m *mockProfileRepo) FindByUserID(_ context.Context, userID string) (repository.UserProfile, error) {
	if p, ok := m.existing[userID]; ok {
		return p, nil
	}
	return repository.UserProfile{}, repository.ErrNotFound
}
func (m *mockProfileRepo) CreateEmpty(_ context.Context, userID string) (repository.UserProfile, error) {
	m.creates++
	p := repository.UserProfile{UserID: userID}
	if m.existing == nil {
		m.existing = map[string]repository.UserProfile{}
	}
	m.existing[userID] = p
	return p, nil
}
func (m *mockProfileRepo) Upsert(_ context.Context, userID string, in repository.ProfileUpdate) (repository.UserProfile, error) {
	m.upserts++
	return repository.UserProfile{UserID: userID, Preferences: in.Preferences, CustomFields: in.CustomFields}, nil
}

type mockActivityRepo struct {
	entries []repository.ActivityLog
	err     error
}

func (m *mockActivityRepo) Append(_ context.Context, in repository.ActivityAppend) (repository.ActivityLog, error) {
	if m.err != nil {
		return repository.ActivityLog{}, m.err
	}
	e := repository.ActivityLog{UserID: in.UserID, EventType: in.EventType}
	m.entries = append(m.entries, e)
	return e, nil
}
func (m *mockActivityRepo) ListByUser(context.Context, string, int, int) ([]repository.ActivityLog, error) {
	return m.entries, m.err
}
func (m *mockActivityRepo) CountByUser(context.Context, string) (int64, error) {
	return int64(len(m.entries)), m.err
}

type mockPublisher struct {
	published []repository.ActivityLog
}

func (m *mockPublisher) PublishActivity(entry repository.ActivityLog) {
	m.published = append(m.published, entry)
}

func TestUserUsecase_CreateOrUpdateUser_FirstLogin(t *testing.T) {
	users := &mockUserRepo{user: repository.User{ID: uuid.New()}}
	profiles := &mockProfileRepo{}
	activity := &mockActivityRepo{}
	pub := &mockPublisher{}

	uc := NewUserUsecase(users, profiles, activity, pub, logger.NewNop())

	usr, err := uc.CreateOrUpdateUser(context.Background(), auth0.Profile{
		Auth0ID: "auth0|first",
		Email:   "first@example.com",
	}, repository.ActivityMetadata{IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if users.upserts != 1 {
		t.Fatalf("expected 1 upsert, got %d", users.upserts)
	}
	if profiles.creates != 1 {
		t.Fatalf("expected 1 profile create, got %d", profiles.creates)
	}
	if len(activity.entries) != 1 || activity.entries[0].EventType != EventUserLogin {
		t.Fatalf("expected one login event, got %+v", activity.entries)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected event published to feed, got %d", len(pub.published))
	}
	if usr.Auth0ID != "auth0|first" {
		t.Fatalf("unexpected user: %+v", usr)
	}
}

func TestUserUsecase_CreateOrUpdateUser_SecondLoginNoDuplicateProfile(t *testing.T) {
	users := &mockUserRepo{user: repository.User{ID: uuid.New()}}
	profiles := &mockProfileRepo{}
	activity := &mockActivityRepo{}

	uc := NewUserUsecase(users, profiles, activity, nil, logger.NewNop())

	in := auth0.Profile{Auth0ID: "auth0|second", Email: "second@example.com"}
	if _, err := uc.CreateOrUpdateUser(context.Background(), in, repository.ActivityMetadata{}); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := uc.CreateOrUpdateUser(context.Background(), in, repository.ActivityMetadata{}); err != nil {
		t.Fatalf("second login: %v", err)
	}

	if profiles.creates != 1 {
		t.Fatalf("expected profile created once, got %d", profiles.creates)
	}
	if users.upserts != 2 {
		t.Fatalf("expected 2 upserts, got %d", users.upserts)
	}
	if len(activity.entries) != 2 {
		t.Fatalf("expected 2 login events, got %d", len(activity.entries))
	}
}

func TestUserUsecase_CreateOrUpdateUser_ActivityFailureTolerated(t *testing.T) {
	users := &mockUserRepo{user: repository.User{ID: uuid.New()}}
	activity := &mockActivityRepo{err: errors.New("mongo down")}
	pub := &mockPublisher{}

	uc := NewUserUsecase(users, &mockProfileRepo{}, activity, pub, logger.NewNop())

	if _, err := uc.CreateOrUpdateUser(context.Background(), auth0.Profile{
		Auth0ID: "auth0|x", Email: "x@example.com",
	}, repository.ActivityMetadata{}); err != nil {
		t.Fatalf("login should survive activity failure, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("failed append must not be published")
	}
}

func TestUserUsecase_CreateOrUpdateUser_MissingIdentity(t *testing.T) {
	uc := NewUserUsecase(&mockUserRepo{}, &mockProfileRepo{}, &mockActivityRepo{}, nil, logger.NewNop())

	if _, err := uc.CreateOrUpdateUser(context.Background(), auth0.Profile{Email: "x@example.com"}, repository.ActivityMetadata{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserUsecase_UpdateProfile_Empty(t *testing.T) {
	uc := NewUserUsecase(&mockUserRepo{}, &mockProfileRepo{}, &mockActivityRepo{}, nil, logger.NewNop())

	if _, err := uc.UpdateProfile(context.Background(), uuid.New(), repository.ProfileUpdate{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserUsecase_ListActivity(t *testing.T) {
	activity := &mockActivityRepo{entries: []repository.ActivityLog{
		{EventType: EventUserLogin}, {EventType: EventUserLogin}, {EventType: EventUserLogin},
	}}
	uc := NewUserUsecase(&mockUserRepo{}, &mockProfileRepo{}, activity, nil, logger.NewNop())

	entries, block, err := uc.ListActivity(context.Background(), uuid.New(), pagination.Params{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(entries) != 3 || block.Total != 3 || block.TotalPages != 1 {
		t.Fatalf("unexpected page: entries=%d block=%+v", len(entries), block)
	}
}
