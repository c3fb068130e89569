package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/dreamscape/identity-system/internal/api/metrics"
	"github.com/dreamscape/identity-system/internal/core/domain"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

// AuthHandler exposes registration, login, session validation, and logout.
type AuthHandler struct {
	users     ports.UserService
	sessions  ports.SessionService
	jwtSecret string
}

func NewAuthHandler(users ports.UserService, sessions ports.SessionService, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, jwtSecret: jwtSecret}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.users.Register(c.Request().Context(), req.Username, req.Password, req.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Message: "user registered successfully",
		User:    profile,
	})
}

// Login authenticates a user and issues a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	profile, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	session, err := h.sessions.Create(ctx, profile.Username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := h.users.RecordLogin(ctx, profile.Username); err != nil {
		// Session is already live; the login stamp is best effort.
		c.Logger().Warnf("record login for %s: %v", profile.Username, err)
	}

	accessToken, err := h.signToken(session)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Message:     "login successful",
		SessionID:   session.Token,
		AccessToken: accessToken,
		Username:    profile.Username,
		User:        profile,
	})
}

// Validate checks a session token and refreshes its last-active marker.
//
// @Summary      Validate a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Session token"
// @Success      200   {object}  validateResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/validate [post]
func (h *AuthHandler) Validate(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.sessions.Validate(c.Request().Context(), req.SessionID)
	if err != nil {
		metrics.SessionValidationsTotal.WithLabelValues(validationResult(err)).Inc()
		if errors.Is(err, domain.ErrSessionExpired) {
			metrics.SessionsPrunedTotal.Inc()
		}
		return err
	}

	metrics.SessionValidationsTotal.WithLabelValues("valid").Inc()
	return c.JSON(http.StatusOK, validateResponse{
		Valid:    true,
		Username: session.Username,
		Session:  toSessionView(session),
	})
}

// Logout revokes a session. Idempotent: unknown tokens still succeed.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      logoutRequest  true  "Session token"
// @Success      200   {object}  messageResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.sessions.Revoke(c.Request().Context(), req.SessionID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

// signToken wraps the opaque session id in a signed bearer token for
// Authorization headers. Its exp mirrors the session deadline, but the
// middleware re-resolves the sid on every request, so revocation always wins.
func (h *AuthHandler) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":      session.Token,
		"username": session.Username,
		"exp":      session.ExpiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(h.jwtSecret))
}

func registerResult(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation_error"
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrEmailTaken):
		return "conflict"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return "invalid_credentials"
	}
	return "error"
}

func validationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return "expired"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "not_found"
	default:
		return "error"
	}
}
