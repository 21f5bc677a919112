// Package httpapi is the JSON transport of the vault, built on echo.
package httpapi

import (
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware and routes.
func NewRouter(vault services.Vault, deps map[string]dbx.Pinger, logger logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			r := c.Request()
			c.SetRequest(r.WithContext(logging.WithRequestID(r.Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info(c.Request().Context(), "request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	}))
	e.Use(requestMetrics())

	h := NewHandler(vault)
	health := NewHealthHandler(deps)

	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/refresh", h.Refresh)

	bearer := RequireBearer(vault)
	e.POST("/logout", h.Logout, bearer)
	e.POST("/credentials", h.SaveCredential, bearer)
	e.POST("/credentials/verify", h.VerifyCredential, bearer)
	e.GET("/credentials", h.ListServices, bearer)
	e.PUT("/credentials/:service", h.UpdateCredential, bearer)
	e.DELETE("/credentials/:service", h.DeleteCredential, bearer)
	e.GET("/audit-log", h.AuditLog, bearer)

	return e
}
