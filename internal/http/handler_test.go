package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker.com/task-tracker/internal/auth"
	config "task-tracker.com/task-tracker/internal/configs"
	repository "task-tracker.com/task-tracker/internal/repositories"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/internal/sessions"
)

type testServer struct {
	e       *echo.Echo
	tasks   *services.TaskService
	cookies []*http.Cookie
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := config.NewDatabaseClient(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := repository.NewTaskRepository(db, "tasks")
	require.NoError(t, repo.Migrate(context.Background()))

	clock := services.NewClock(func() time.Time {
		return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	}, time.UTC)
	tasks := services.NewTaskService(repo, clock, nil)
	sweep := services.NewSweepService(repo, clock, nil)

	manager, err := sessions.NewManager(sessions.NewMemoryStore(), "s3cret", time.Hour, false)
	require.NoError(t, err)
	gate := auth.NewGate(map[string]string{"alice": "wonderland"})

	renderer, err := NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	Register(e, NewHandler(tasks, sweep, gate, manager, time.UTC, nil), 1000)

	return &testServer{e: e, tasks: tasks}
}

func (s *testServer) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"wonderland"}})
	require.Equal(t, http.StatusFound, rec.Code)
	s.cookies = rec.Result().Cookies()
	require.NotEmpty(t, s.cookies)
}

func (s *testServer) openTaskID(t *testing.T, name string) string {
	t.Helper()

	ctx := auth.WithIdentity(context.Background(), auth.Identity{Username: "alice"})
	views, err := s.tasks.ListOpen(ctx)
	require.NoError(t, err)
	for _, view := range views {
		if view.Name == name {
			return view.ID
		}
	}
	t.Fatalf("open task %q not found", name)
	return ""
}

func TestHandler_Health(t *testing.T) {
	srv := setupTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_GuardedRoutesRedirectToLogin(t *testing.T) {
	srv := setupTestServer(t)

	for _, target := range []string{"/", "/closed", "/task", "/task/abc", "/task_close/abc", "/task_up/abc", "/search?q=milk"} {
		rec := srv.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), target)
	}

	rec := srv.do(t, http.MethodPost, "/task", url.Values{"task_name": {"sneaky"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestHandler_LoginRejectsBadCredentials(t *testing.T) {
	srv := setupTestServer(t)

	rec := srv.do(t, http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandler_TaskLifecycle(t *testing.T) {
	srv := setupTestServer(t)
	srv.login(t)

	rec := srv.do(t, http.MethodPost, "/task", url.Values{
		"task_name":     {"Buy milk"},
		"task_project":  {"groceries"},
		"task_priority": {""},
		"task_due":      {"2024-01-01"},
		"task_repeat":   {"7"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = srv.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Buy milk")
	assert.Contains(t, rec.Body.String(), "overdue")

	id := srv.openTaskID(t, "Buy milk")

	rec = srv.do(t, http.MethodGet, "/task/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="groceries"`)

	rec = srv.do(t, http.MethodGet, "/task_up/"+id, nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/search?q=milk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Buy milk")

	rec = srv.do(t, http.MethodGet, "/task_close/"+id, nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/closed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Buy milk")
	assert.Contains(t, rec.Body.String(), "2024-01-08 00:00")

	rec = srv.do(t, http.MethodGet, "/task_close/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/task_reschedule/"+id, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, id, srv.openTaskID(t, "Buy milk"))

	rec = srv.do(t, http.MethodPost, "/task/"+id, url.Values{"task_name": {"Buy oat milk"}, "task_priority": {"3"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, id, srv.openTaskID(t, "Buy oat milk"))
}

func TestHandler_ErrorPages(t *testing.T) {
	srv := setupTestServer(t)
	srv.login(t)

	rec := srv.do(t, http.MethodPost, "/task", url.Values{"task_name": {"x"}, "task_priority": {"9"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid task")

	rec = srv.do(t, http.MethodPost, "/task", url.Values{"task_name": {"x"}, "task_repeat": {"0"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "repeat interval")

	rec = srv.do(t, http.MethodGet, "/task/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/task_down/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/search?q=%3F%3F", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/search", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_SweepIsUnguarded(t *testing.T) {
	srv := setupTestServer(t)

	rec := srv.do(t, http.MethodGet, "/sweep", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandler_LogoutEndsSession(t *testing.T) {
	srv := setupTestServer(t)
	srv.login(t)

	rec := srv.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/logout", nil)
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestParseFlag(t *testing.T) {
	assert.True(t, parseFlag("1"))
	assert.True(t, parseFlag("true"))
	assert.True(t, parseFlag("on"))
	assert.False(t, parseFlag(""))
	assert.False(t, parseFlag("0"))
	assert.False(t, parseFlag("nah"))
}
