package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Preferences = make(map[string]string, len(u.Preferences))
	for k, v := range u.Preferences {
		clone.Preferences[k] = v
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := r.users[user.Username]; exists {
		return domain.ErrUserExists
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.Username] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) UpdatePreferences(_ context.Context, username string, prefs map[string]string) error {
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	for k, v := range prefs {
		u.Preferences[k] = v
	}
	return nil
}

func (r *stubUserRepo) IncrementStatistic(_ context.Context, username, kind string, delta int64) error {
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	switch kind {
	case domain.StatStoriesCreated:
		u.Statistics.StoriesCreated += delta
	case domain.StatStoriesCompleted:
		u.Statistics.StoriesCompleted += delta
	case domain.StatDiscussionRounds:
		u.Statistics.DiscussionRounds += delta
	case domain.StatTotalTimeSpent:
		u.Statistics.TotalTimeSpent += delta
	}
	return nil
}

func TestUserService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	profile, err := svc.Register(context.Background(), "alice", "secret1", "a@x.com")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if profile.Username != "alice" || profile.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.Preferences["default_genre"] != "fantasy" ||
		profile.Preferences["default_mood"] != "epic" ||
		profile.Preferences["preferred_duration"] != "medium" {
		t.Fatalf("unexpected default preferences: %+v", profile.Preferences)
	}
	if profile.Statistics != (domain.Statistics{}) {
		t.Fatalf("expected zeroed statistics, got %+v", profile.Statistics)
	}

	stored := repo.users["alice"]
	if stored.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), zerolog.Nop())
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		email    string
	}{
		{"empty username", "", "secret1", "a@x.com"},
		{"empty password", "bob", "", "b@x.com"},
		{"empty email", "bob", "secret1", ""},
		{"short username", "ab", "secret1", "a@x.com"},
		{"short password", "bob", "12345", "b@x.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.password, tc.email)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUserService_Register_ShortUsernameCreatesNothing(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	if _, err := svc.Register(context.Background(), "ab", "secret1", "a@x.com"); err == nil {
		t.Fatalf("expected error for 2-char username")
	}
	if len(repo.users) != 0 {
		t.Fatalf("expected no record created, got %d", len(repo.users))
	}
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "secret1", "bob@x.com"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "other66", "other@x.com"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	// First user's data is untouched.
	u, err := svc.GetProfile(ctx, "bob")
	if err != nil || u.Email != "bob@x.com" {
		t.Fatalf("first user damaged: %+v err=%v", u, err)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "secret1", "c@x.com"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "carla", "secret1", "c@x.com"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_Authenticate_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave", "goodpass", "d@x.com"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.Authenticate(ctx, "dave", "goodpass")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if profile.Username != "dave" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.Register(ctx, "erin", "goodpass", "e@x.com")
	if _, err := svc.Authenticate(ctx, "erin", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Authenticate_UnknownUserIsIndistinguishable(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), zerolog.Nop())

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestUserService_GetProfile_NeverLeaksDigest(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.Register(ctx, "frank", "secret1", "f@x.com")

	profile, err := svc.GetProfile(ctx, "frank")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), repo.users["frank"].PasswordHash) {
		t.Fatalf("profile leaks password material: %s", raw)
	}
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), zerolog.Nop())
	if _, err := svc.GetProfile(context.Background(), "nobody"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_RecordLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.Register(ctx, "gina", "secret1", "g@x.com")
	if err := svc.RecordLogin(ctx, "gina"); err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	if repo.users["gina"].LastLogin == nil {
		t.Fatalf("expected last login to be set")
	}
}

func TestUserService_UpdatePreferences(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	_, _ = svc.Register(ctx, "hank", "secret1", "h@x.com")

	profile, err := svc.UpdatePreferences(ctx, "hank", map[string]string{"default_genre": "noir"})
	if err != nil {
		t.Fatalf("UpdatePreferences failed: %v", err)
	}
	if profile.Preferences["default_genre"] != "noir" {
		t.Fatalf("preference not merged: %+v", profile.Preferences)
	}
	if profile.Preferences["default_mood"] != "epic" {
		t.Fatalf("untouched preference lost: %+v", profile.Preferences)
	}

	if _, err := svc.UpdatePreferences(ctx, "hank", nil); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty prefs, got %v", err)
	}
}
