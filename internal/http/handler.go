package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"task-tracker.com/task-tracker/internal/auth"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/http/validators"
	model "task-tracker.com/task-tracker/internal/models"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/internal/sessions"
)

type Handler struct {
	tasks    *services.TaskService
	sweep    *services.SweepService
	gate     *auth.Gate
	sessions *sessions.Manager
	location *time.Location
	logger   *slog.Logger
}

func NewHandler(
	tasks *services.TaskService,
	sweep *services.SweepService,
	gate *auth.Gate,
	sessionManager *sessions.Manager,
	location *time.Location,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tasks:    tasks,
		sweep:    sweep,
		gate:     gate,
		sessions: sessionManager,
		location: location,
		logger:   logger,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Sweep runs the recurrence sweep on demand for an external scheduler.
func (h *Handler) Sweep(c echo.Context) error {
	if _, err := h.sweep.Run(c.Request().Context()); err != nil {
		h.logger.Error("sweep request failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "sweep failed")
	}
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{})
}

func (h *Handler) Login(c echo.Context) error {
	id, err := h.gate.Authenticate(c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return c.Render(apperrors.StatusCode(err), "login.html", echo.Map{"Error": err.Error()})
	}

	if err := h.sessions.Start(c, id.Username); err != nil {
		h.logger.Error("start session failed", "user", id.Username, "error", err)
		return h.renderError(c, err)
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		h.logger.Warn("destroy session failed", "error", err)
	}
	return c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) ListOpen(c echo.Context) error {
	views, err := h.tasks.ListOpen(c.Request().Context())
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, "index.html", echo.Map{"Tasks": views, "Closed": false})
}

func (h *Handler) ListClosed(c echo.Context) error {
	views, err := h.tasks.ListClosed(c.Request().Context())
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, "index.html", echo.Map{"Tasks": views, "Closed": true})
}

func (h *Handler) NewTaskForm(c echo.Context) error {
	return h.render(c, "task.html", echo.Map{"Task": (*model.Task)(nil)})
}

func (h *Handler) EditTaskForm(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	task, err := h.tasks.Get(c.Request().Context(), id)
	if err != nil {
		return h.renderError(c, err)
	}
	return h.render(c, "task.html", echo.Map{"Task": task})
}

func (h *Handler) CreateTask(c echo.Context) error {
	in, err := h.parseForm(c)
	if err != nil {
		return h.renderError(c, err)
	}

	if _, err := h.tasks.Create(c.Request().Context(), in); err != nil {
		return h.renderError(c, err)
	}
	return h.home(c)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	in, err := h.parseForm(c)
	if err != nil {
		return h.renderError(c, err)
	}

	if err := h.tasks.Update(c.Request().Context(), id, in); err != nil {
		return h.renderError(c, err)
	}
	return h.home(c)
}

func (h *Handler) CloseTask(c echo.Context) error {
	return h.act(c, h.tasks.Close)
}

func (h *Handler) TaskUp(c echo.Context) error {
	return h.reprioritize(c, services.DirectionUp)
}

func (h *Handler) TaskDown(c echo.Context) error {
	return h.reprioritize(c, services.DirectionDown)
}

func (h *Handler) RescheduleTask(c echo.Context) error {
	return h.act(c, h.tasks.Reschedule)
}

func (h *Handler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	closed := parseFlag(c.QueryParam("closed"))
	data := echo.Map{"Query": query, "Closed": closed}

	if query == "" {
		return h.render(c, "search.html", data)
	}

	results, err := h.tasks.Search(c.Request().Context(), query, closed)
	if err != nil {
		return h.renderError(c, err)
	}
	data["Results"] = results
	return h.render(c, "search.html", data)
}

func (h *Handler) reprioritize(c echo.Context, direction services.Direction) error {
	return h.act(c, func(ctx context.Context, id string) error {
		return h.tasks.Reprioritize(ctx, id, direction)
	})
}

// act runs a single-id lifecycle operation and goes back to the list.
func (h *Handler) act(c echo.Context, op func(ctx context.Context, id string) error) error {
	id, err := taskID(c)
	if err != nil {
		return h.renderError(c, err)
	}

	if err := op(c.Request().Context(), id); err != nil {
		return h.renderError(c, err)
	}
	return h.home(c)
}

func (h *Handler) parseForm(c echo.Context) (services.TaskInput, error) {
	form, err := c.FormParams()
	if err != nil {
		return services.TaskInput{}, apperrors.ErrInvalidForm
	}
	return validators.ParseTaskForm(form, h.location)
}

func (h *Handler) home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) render(c echo.Context, name string, data echo.Map) error {
	if id, ok := auth.IdentityFrom(c.Request().Context()); ok {
		data["User"] = id.Username
	}
	return c.Render(http.StatusOK, name, data)
}

func (h *Handler) renderError(c echo.Context, err error) error {
	if errors.Is(err, apperrors.ErrAuthRequired) {
		return c.Redirect(http.StatusFound, "/login")
	}

	status := apperrors.StatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		message = http.StatusText(status)
	}

	data := echo.Map{"Status": status, "Message": message}
	if id, ok := auth.IdentityFrom(c.Request().Context()); ok {
		data["User"] = id.Username
	}
	return c.Render(status, "error.html", data)
}

func taskID(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", apperrors.ErrTaskIDRequired
	}
	return id, nil
}

func parseFlag(raw string) bool {
	if raw == "" {
		return false
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw == "on" || raw == "yes"
}
