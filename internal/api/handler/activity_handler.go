package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dreamscape/identity-system/internal/core/ports"
)

// ActivityDispatcher is the interface the handler uses to enqueue events.
type ActivityDispatcher interface {
	Enqueue(event ports.ActivityInput)
	EnqueueBatch(events []ports.ActivityInput)
}

// ActivityHandler ingests activity reports against the authenticated user's
// statistics. The username always comes from the session, never the payload,
// so a caller cannot inflate another account's counters.
type ActivityHandler struct {
	dispatcher ActivityDispatcher
}

// NewActivityHandler creates an ActivityHandler backed by the given dispatcher.
func NewActivityHandler(dispatcher ActivityDispatcher) *ActivityHandler {
	return &ActivityHandler{dispatcher: dispatcher}
}

// Receive handles POST /v1/activity. Enqueues a single event and returns 202.
//
// @Summary      Report a single activity event
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      activityRequest  true  "Activity event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/activity [post]
func (h *ActivityHandler) Receive(c echo.Context) error {
	var req activityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(h.toInput(c, req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "activity accepted"})
}

// ReceiveBatch handles POST /v1/activity/batch. Enqueues a batch and returns 202.
//
// @Summary      Report a batch of activity events
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []activityRequest  true  "Array of activity events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/activity/batch [post]
func (h *ActivityHandler) ReceiveBatch(c echo.Context) error {
	var reqs []activityRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.ActivityInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("event[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, h.toInput(c, req))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "activity accepted",
		Count:   len(inputs),
	})
}

// toInput maps the HTTP request to the service DTO, binding it to the
// session's user.
func (h *ActivityHandler) toInput(c echo.Context, r activityRequest) ports.ActivityInput {
	username, _ := c.Get("username").(string)
	return ports.ActivityInput{
		Username:  username,
		Kind:      r.Kind,
		Amount:    r.Amount,
		Timestamp: r.Timestamp,
		Source:    r.Source,
	}
}
