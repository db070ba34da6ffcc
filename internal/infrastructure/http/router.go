package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/yamdb/reviewhub/internal/infrastructure/http/handlers"
)

// RegisterOperational mounts the routes that sit outside the versioned API:
// health probes, prometheus metrics and the swagger UI.
func RegisterOperational(e *echo.Echo, checks ...handlers.Check) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks...)

	e.GET("/health/live", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
