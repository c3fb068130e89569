package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dreamscape/identity-system/internal/api/handler"
	"github.com/dreamscape/identity-system/internal/api/middleware"
	"github.com/dreamscape/identity-system/internal/core/ports"
)

// Deps carries everything the router wires together. The caller owns
// construction and lifecycle of all of it.
type Deps struct {
	Users      ports.UserService
	Sessions   ports.SessionService
	Dispatcher handler.ActivityDispatcher
	Probes     []handler.DependencyProbe
	JWTSecret  string
	Log        zerolog.Logger
	// Registry overrides the default Prometheus registry. Tests pass a fresh
	// one so building several routers does not double-register collectors.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer = deps.Registry
		gatherer = deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Users, deps.Sessions, deps.JWTSecret)
	userHandler := handler.NewUserHandler(deps.Users)
	activityHandler := handler.NewActivityHandler(deps.Dispatcher)
	authMiddleware := middleware.Auth(deps.JWTSecret, deps.Sessions)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/validate", authHandler.Validate)
	e.POST("/auth/logout", authHandler.Logout)

	// --- User routes (bearer-protected, session owner only) ---
	users := e.Group("/users", authMiddleware, middleware.SelfOnly())
	users.GET("/:username", userHandler.GetProfile)
	users.PUT("/:username/preferences", userHandler.UpdatePreferences)

	// --- Activity ingestion (bearer-protected) ---
	activity := e.Group("/v1/activity", authMiddleware)
	activity.POST("", activityHandler.Receive)
	activity.POST("/batch", activityHandler.ReceiveBatch)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Probes...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer,
	}))

	return e
}
