package ports

import (
	"context"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

// SessionRepository defines persistence for session records, keyed by token.
type SessionRepository interface {
	// Create persists a new session. Returns domain.ErrTokenCollision if the
	// token is already present, so the authority can generate a fresh one.
	Create(ctx context.Context, session *domain.Session) error

	// Find returns domain.ErrSessionNotFound when the token is absent.
	// Expiry is not interpreted here; the Session Authority owns liveness.
	Find(ctx context.Context, token string) (*domain.Session, error)

	// Update persists a modified session (last-active refresh).
	Update(ctx context.Context, session *domain.Session) error

	// Delete removes the session. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
}
