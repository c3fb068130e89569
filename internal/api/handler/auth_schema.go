package handler

import (
	"time"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email"    validate:"required,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// logoutRequest tolerates an empty session id: logout is idempotent and an
// absent token still reports success.
type logoutRequest struct {
	SessionID string `json:"session_id"`
}

type updatePreferencesRequest struct {
	Preferences map[string]string `json:"preferences" validate:"required,min=1"`
}

type activityRequest struct {
	Kind      string    `json:"kind"      validate:"required,oneof=stories_created stories_completed discussion_rounds total_time_spent"`
	Amount    int64     `json:"amount"    validate:"required,gt=0"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Source    string    `json:"source"`
}

// --- Response types ---

// Response-only types owned by the transport layer. These are intentionally
// separate from ports/domain types so the JSON contract is not coupled to
// internal service changes.

type registerResponse struct {
	Message string          `json:"message"`
	User    *domain.Profile `json:"user"`
}

type loginResponse struct {
	Message     string          `json:"message"`
	SessionID   string          `json:"session_id"`
	AccessToken string          `json:"access_token"`
	Username    string          `json:"username"`
	User        *domain.Profile `json:"user"`
}

type sessionView struct {
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type validateResponse struct {
	Valid    bool        `json:"valid"`
	Username string      `json:"username"`
	Session  sessionView `json:"session"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// toSessionView maps a domain session to its transport shape. The token is
// never echoed back here; callers already hold it.
func toSessionView(s *domain.Session) sessionView {
	return sessionView{
		Username:   s.Username,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
		ExpiresAt:  s.ExpiresAt,
	}
}
