package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

const testSecret = "test-secret"

type stubSessions struct {
	resolveFn func(ctx context.Context, token string) (string, error)
}

func (s *stubSessions) Create(context.Context, string) (*domain.Session, error) {
	panic("not used")
}

func (s *stubSessions) Validate(context.Context, string) (*domain.Session, error) {
	panic("not used")
}

func (s *stubSessions) Revoke(context.Context, string) error {
	panic("not used")
}

func (s *stubSessions) Resolve(ctx context.Context, token string) (string, error) {
	return s.resolveFn(ctx, token)
}

func signTestToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string, sessions *stubSessions) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := Auth(testSecret, sessions)(next)(c)
	return c, err
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err := runAuth(t, "", &stubSessions{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_BadScheme(t *testing.T) {
	_, err := runAuth(t, "Basic abc123", &stubSessions{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"sid": "tok-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, "other-secret")

	_, err := runAuth(t, "Bearer "+token, &stubSessions{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_MissingSid(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	_, err := runAuth(t, "Bearer "+token, &stubSessions{})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_RevokedSessionRejected(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"sid": "tok-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	sessions := &stubSessions{
		resolveFn: func(ctx context.Context, tok string) (string, error) {
			return "", domain.ErrSessionNotFound
		},
	}

	// The JWT itself is still valid; the dead session must win.
	_, err := runAuth(t, "Bearer "+token, sessions)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuth_Success(t *testing.T) {
	token := signTestToken(t, jwt.MapClaims{
		"sid": "tok-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	sessions := &stubSessions{
		resolveFn: func(ctx context.Context, tok string) (string, error) {
			if tok != "tok-abc" {
				t.Fatalf("unexpected session id: %s", tok)
			}
			return "alice", nil
		},
	}

	c, err := runAuth(t, "Bearer "+token, sessions)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if got, _ := c.Get("username").(string); got != "alice" {
		t.Fatalf("expected username in context, got %q", got)
	}
	if got, _ := c.Get("session_id").(string); got != "tok-abc" {
		t.Fatalf("expected session id in context, got %q", got)
	}
}
