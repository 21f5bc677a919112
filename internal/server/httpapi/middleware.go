package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/labstack/echo/v4"
)

const usernameKey = "username"

// bearerToken extracts the token from "Authorization: Bearer <token>".
// An absent or malformed header yields "".
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireBearer authenticates the access token and stores the username on
// the echo context.
func RequireBearer(vault services.Vault) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, err := vault.Authenticate(c.Request().Context(), bearerToken(c))
			if err != nil {
				return err
			}
			c.Set(usernameKey, username)
			return next(c)
		}
	}
}

// currentUser returns the username set by RequireBearer.
func currentUser(c echo.Context) (string, error) {
	u, ok := c.Get(usernameKey).(string)
	if !ok || u == "" {
		return "", common.ErrUnauthorized
	}
	return u, nil
}

// requestMetrics observes HTTPRequestDuration. The error is handed to the
// error handler first so the recorded code is the one sent.
func requestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func requestMeta(c echo.Context) services.RequestMeta {
	return services.RequestMeta{
		SourceAddress: c.RealIP(),
		ClientAgent:   c.Request().UserAgent(),
	}
}
