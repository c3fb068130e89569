package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dreamscape/identity-system/internal/core/ports"
)

// UserHandler exposes profile reads and preference updates.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile returns the redacted record for a user.
//
// @Summary      Get a user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  domain.Profile
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /users/{username} [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.users.GetProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdatePreferences merges preference keys into the user's account.
//
// @Summary      Update user preferences
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string                    true  "Username"
// @Param        body      body      updatePreferencesRequest  true  "Preference keys to merge"
// @Success      200       {object}  domain.Profile
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /users/{username}/preferences [put]
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	var req updatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.users.UpdatePreferences(c.Request().Context(), c.Param("username"), req.Preferences)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
