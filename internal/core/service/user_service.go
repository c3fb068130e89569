package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamscape/identity-system/internal/core/domain"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// UserService implements the credential store over a UserRepository.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) Register(ctx context.Context, username, password, email string) (*domain.Profile, error) {
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}
	if email == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	if len(username) < minUsernameLen {
		return nil, domain.NewValidationError("username", fmt.Sprintf("must be at least %d characters", minUsernameLen))
	}
	if len(password) < minPasswordLen {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
		Preferences:  domain.DefaultPreferences(),
	}

	// Uniqueness of both username and email is checked by the repository in
	// the same atomic step that persists the record, so two concurrent
	// registrations cannot both observe "free" before either writes.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return user.Redacted(), nil
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.Profile, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			// Collapse into the undifferentiated credential error so the
			// response never reveals whether the username exists.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user.Redacted(), nil
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Redacted(), nil
}

func (s *UserService) RecordLogin(ctx context.Context, username string) error {
	if err := s.repo.UpdateLastLogin(ctx, username, time.Now().UTC()); err != nil {
		return err
	}
	s.log.Debug().Str("username", username).Msg("last login recorded")
	return nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, username string, prefs map[string]string) (*domain.Profile, error) {
	if len(prefs) == 0 {
		return nil, domain.NewValidationError("preferences", "must not be empty")
	}
	for k := range prefs {
		if k == "" {
			return nil, domain.NewValidationError("preferences", "keys must not be empty")
		}
	}

	if err := s.repo.UpdatePreferences(ctx, username, prefs); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, username)
}
