package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/naiarievilo/todoapp/internal/api/handler"
	"github.com/naiarievilo/todoapp/internal/api/middleware"
	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
)

// Dependencies are the collaborators the HTTP surface is built on.
type Dependencies struct {
	AuthService ports.AuthService
	Gate        middleware.Gate
	Readiness   *handler.ReadinessHandler

	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "todoapp",
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	gate := middleware.Authenticate(deps.Gate)
	userHandler := handler.NewUserHandler(deps.AuthService, log)
	adminHandler := handler.NewAdminHandler(deps.AuthService)

	// --- Account routes ---
	// Renewal is reached with an expired access token, so it stays outside the gate.
	e.POST("/users/:id/re-authentication", userHandler.Reauthenticate)

	users := e.Group("/users", gate)
	users.POST("", userHandler.Register)
	users.POST("/authentication", userHandler.Login)
	users.POST("/action-requests", userHandler.RequestAction)
	users.GET("/me", userHandler.Me, middleware.RequireIdentity())
	users.GET("/:id/verification", userHandler.Verify)
	users.GET("/:id/unlock", userHandler.Unlock)
	users.GET("/:id/enable", userHandler.Enable)

	// --- Operator routes ---
	admin := e.Group("/admin", gate, middleware.RequireAuthority(domain.RoleAdmin))
	admin.POST("/users/:id/:action", adminHandler.Apply)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness) // liveness
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness) // readiness: mongo + redis
	}

	// --- Metrics and API docs ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
