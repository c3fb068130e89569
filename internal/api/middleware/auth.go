package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/dreamscape/identity-system/internal/core/ports"
)

// Auth validates the bearer JWT and resolves its session id against the
// session authority, so a revoked or expired session invalidates the JWT
// regardless of the JWT's own exp claim. On success the session's username is
// injected into the request context.
func Auth(jwtSecret string, sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid, _ := claims["sid"].(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session")
			}

			username, err := sessions.Resolve(c.Request().Context(), sid)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "session no longer valid")
			}

			c.Set("username", username)
			c.Set("session_id", sid)

			return next(c)
		}
	}
}
