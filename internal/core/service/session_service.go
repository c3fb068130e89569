package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamscape/identity-system/internal/core/domain"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

// tokenBytes sets session token entropy: 32 random bytes, hex encoded.
const tokenBytes = 32

// maxTokenAttempts bounds collision retries. With 256-bit tokens a single
// retry should never happen in practice; the bound guards against a broken
// entropy source looping forever.
const maxTokenAttempts = 3

// SessionService implements the session authority over a SessionRepository.
// Expiry is lazy: there is no background sweeper, and Validate is the
// authoritative arbiter of liveness.
type SessionService struct {
	repo ports.SessionRepository
	ttl  time.Duration
	log  zerolog.Logger

	// now is swappable so tests can cross the expiry deadline without sleeping.
	now func() time.Time
}

func NewSessionService(repo ports.SessionRepository, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &SessionService{repo: repo, ttl: ttl, log: log, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

func (s *SessionService) Create(ctx context.Context, username string) (*domain.Session, error) {
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}

	now := s.now().UTC()
	session := &domain.Session{
		Username:   username,
		CreatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(s.ttl),
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := newToken()
		if err != nil {
			return nil, fmt.Errorf("generate session token: %w", err)
		}
		session.Token = token

		err = s.repo.Create(ctx, session)
		if err == nil {
			s.log.Info().Str("username", username).Time("expires_at", session.ExpiresAt).Msg("session created")
			return session, nil
		}
		if err != domain.ErrTokenCollision {
			return nil, err
		}
		s.log.Warn().Str("username", username).Msg("session token collision, regenerating")
	}
	return nil, fmt.Errorf("generate session token: %d collisions in a row", maxTokenAttempts)
}

func (s *SessionService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.repo.Find(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if session.Expired(now) {
		// Prune on sight. A subsequent Validate on this token reports
		// not-found, indistinguishable from a session that never existed.
		if err := s.repo.Delete(ctx, token); err != nil {
			return nil, err
		}
		s.log.Debug().Str("username", session.Username).Msg("expired session pruned")
		return nil, domain.ErrSessionExpired
	}

	session.Touch(now)
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Revoke removes the session if present. Revoking an absent or already
// expired token still succeeds.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		return err
	}
	s.log.Debug().Msg("session revoked")
	return nil
}

func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	return session.Username, nil
}

// newToken returns a fresh opaque bearer token (256 bits of entropy).
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
