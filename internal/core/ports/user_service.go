package ports

import (
	"context"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

// UserService is the credential store: account registration, credential
// verification, and profile access. Password material never crosses this
// boundary outward.
type UserService interface {
	// Register validates inputs, enforces uniqueness, and creates the account
	// with default preferences and zeroed statistics.
	Register(ctx context.Context, username, password, email string) (*domain.Profile, error)

	// Authenticate verifies the credentials and returns the redacted profile.
	// Unknown user and wrong password are indistinguishable to the caller.
	Authenticate(ctx context.Context, username, password string) (*domain.Profile, error)

	// GetProfile returns the redacted record, or domain.ErrUserNotFound.
	GetProfile(ctx context.Context, username string) (*domain.Profile, error)

	// RecordLogin stamps the last-login time. Safe to call right after a
	// successful Authenticate.
	RecordLogin(ctx context.Context, username string) error

	// UpdatePreferences merges the given preference keys into the account.
	UpdatePreferences(ctx context.Context, username string, prefs map[string]string) (*domain.Profile, error)
}
