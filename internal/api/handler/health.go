package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// DependencyProbe names a dependency and how to check it. The active store
// backend registers its own probe, so readiness reflects whatever this
// deployment actually persists to.
type DependencyProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadinessHandler handles GET /health/ready, a readiness probe over the
// registered dependency probes.
type ReadinessHandler struct {
	probes []DependencyProbe
}

func NewReadinessHandler(probes ...DependencyProbe) *ReadinessHandler {
	return &ReadinessHandler{probes: probes}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.probes))
	healthy := true

	for _, probe := range h.probes {
		if err := probe.Check(ctx); err != nil {
			deps[probe.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[probe.Name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
