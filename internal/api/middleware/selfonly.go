package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SelfOnly restricts a route to the user the session belongs to: the
// :username path parameter must match the identity injected by Auth.
func SelfOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authenticated, _ := c.Get("username").(string)
			if authenticated == "" || authenticated != c.Param("username") {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
