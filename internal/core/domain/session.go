package domain

import "time"

// DefaultSessionTTL is the absolute lifetime of a session. The deadline is
// fixed at creation; only the last-active marker advances afterwards.
const DefaultSessionTTL = 24 * time.Hour

// Session binds an opaque bearer token to a user for a bounded time window.
type Session struct {
	Token      string    `json:"-"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session's absolute deadline has passed at now.
// An expired session is indistinguishable from an absent one to callers.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch advances the last-active marker. It never moves the expiry deadline.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now
}
