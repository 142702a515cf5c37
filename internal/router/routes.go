package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/auth"
	"github.com/legxcy/outreach-api/internal/config"
	"github.com/legxcy/outreach-api/internal/handler"
	"github.com/legxcy/outreach-api/internal/metrics"
	middlewarepkg "github.com/legxcy/outreach-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Outreach  *handler.OutreachHandler
	Contacted *handler.ContactedHandler
	Contact   *handler.ContactFormHandler
	Cron      *handler.CronHandler
	Outdated  *handler.OutdatedSitesHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/auth/login", handlers.Auth.Login)

	api := e.Group("/api")
	api.POST("/contact", handlers.Contact.Submit)
	api.GET("/cron-refresh", handlers.Cron.Refresh, middlewarepkg.BearerSecret(cfg.CronSecret))

	operator := api.Group("")
	if cfg.OperatorAuthEnabled() {
		operator.Use(middlewarepkg.JWT(jwtManager), middlewarepkg.RequireRole(auth.RoleOperator))
	} else {
		slog.Warn("OPERATOR_PASSWORD_HASH is not set, operator routes are unauthenticated")
	}
	operator.Use(middlewarepkg.RouteRateLimiter(cfg.RateLimitOutreach))

	operator.GET("/outreach", handlers.Outreach.List)
	operator.POST("/outreach", handlers.Outreach.Send)
	operator.GET("/contacted", handlers.Contacted.Get)
	operator.POST("/contacted", handlers.Contacted.Update)
	operator.GET("/outdated-sites", handlers.Outdated.List)
}
