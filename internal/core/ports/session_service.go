package ports

import (
	"context"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

// SessionService is the session authority: it issues tokens, arbitrates
// liveness, and revokes. Validate is the only truthful answer about whether a
// session is alive; the raw store may still hold expired records that no
// Validate call has pruned yet.
type SessionService interface {
	// Create issues a fresh session for the user and returns it, token
	// included. Token collisions are retried internally.
	Create(ctx context.Context, username string) (*domain.Session, error)

	// Validate resolves the token. Expired sessions are pruned on sight and
	// reported as domain.ErrSessionExpired; a later call on the same token
	// sees domain.ErrSessionNotFound. On success the last-active marker is
	// refreshed and persisted.
	Validate(ctx context.Context, token string) (*domain.Session, error)

	// Revoke removes the session. Idempotent: absent tokens succeed.
	Revoke(ctx context.Context, token string) error

	// Resolve is Validate reduced to the bound username, for collaborators
	// authorizing a request.
	Resolve(ctx context.Context, token string) (string, error)
}
