package http

import (
	"github.com/labstack/echo/v4"

	middleware "task-tracker.com/task-tracker/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute))

	e.GET("/health", h.Health)
	e.GET("/sweep", h.Sweep)
	e.GET(middleware.LoginPath, h.LoginForm)
	e.POST(middleware.LoginPath, h.Login)
	e.GET("/logout", h.Logout)

	guarded := e.Group("", middleware.RequireLogin(h.sessions, h.gate, h.logger))
	guarded.GET("/", h.ListOpen)
	guarded.GET("/closed", h.ListClosed)
	guarded.GET("/task", h.NewTaskForm)
	guarded.POST("/task", h.CreateTask)
	guarded.GET("/task/:id", h.EditTaskForm)
	guarded.POST("/task/:id", h.UpdateTask)
	guarded.GET("/task_close/:id", h.CloseTask)
	guarded.GET("/task_up/:id", h.TaskUp)
	guarded.GET("/task_down/:id", h.TaskDown)
	guarded.GET("/task_reschedule/:id", h.RescheduleTask)
	guarded.GET("/search", h.Search)
}
