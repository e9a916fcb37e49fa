package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"task-tracker.com/task-tracker/internal/auth"
	"task-tracker.com/task-tracker/internal/sessions"
)

const LoginPath = "/login"

// RequireLogin redirects anonymous requests to the login page and puts the
// session's identity on the request context otherwise.
func RequireLogin(manager *sessions.Manager, gate *auth.Gate, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, ok, err := manager.Resolve(c)
			if err != nil {
				logger.Warn("session lookup failed", "error", err)
			}
			if !ok || !gate.Known(username) {
				return c.Redirect(http.StatusFound, LoginPath)
			}

			ctx := auth.WithIdentity(c.Request().Context(), auth.Identity{Username: username})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
