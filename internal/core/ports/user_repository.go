package ports

import (
	"context"
	"time"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

// UserRepository defines persistence for account records. Implementations
// must enforce username and email uniqueness atomically: Create observes and
// rejects conflicts in the same step that would persist the record.
type UserRepository interface {
	// Create persists a new user. Returns domain.ErrUserExists or
	// domain.ErrEmailTaken on a uniqueness conflict.
	Create(ctx context.Context, user *domain.User) error

	// FindByUsername returns domain.ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByEmail returns domain.ErrUserNotFound when no user owns the email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastLogin sets the last-login timestamp.
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error

	// UpdatePreferences merges the given keys into the user's preferences map.
	UpdatePreferences(ctx context.Context, username string, prefs map[string]string) error

	// IncrementStatistic atomically adds delta to one of the user's counters.
	IncrementStatistic(ctx context.Context, username, kind string, delta int64) error
}
