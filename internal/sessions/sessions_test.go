package sessions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "task-tracker.com/task-tracker/internal/configs"
)

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", "alice", time.Hour))

	username, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "abc", "alice", time.Minute))

	now = now.Add(59 * time.Second)
	_, err := store.Load(ctx, "abc")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCookieCodec(t *testing.T) {
	codec, err := newCookieCodec("s3cret")
	require.NoError(t, err)

	encoded, err := codec.Encode("session-id")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "session-id")

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "session-id", decoded)

	other, err := newCookieCodec("different")
	require.NoError(t, err)
	_, err = other.Decode(encoded)
	assert.Error(t, err)

	_, err = codec.Decode("not base64 !!")
	assert.Error(t, err)
	_, err = codec.Decode("")
	assert.Error(t, err)

	_, err = newCookieCodec("")
	assert.Error(t, err)
}

func newContext(e *echo.Echo, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestManager_RoundTrip(t *testing.T) {
	e := echo.New()
	manager, err := NewManager(NewMemoryStore(), "s3cret", time.Hour, false)
	require.NoError(t, err)

	c, rec := newContext(e)
	require.NoError(t, manager.Start(c, "alice"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	c, _ = newContext(e, cookies[0])
	username, ok, err := manager.Resolve(c)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	c, rec = newContext(e, cookies[0])
	require.NoError(t, manager.Destroy(c))
	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Empty(t, expired[0].Value)
	assert.Negative(t, expired[0].MaxAge)

	c, _ = newContext(e, cookies[0])
	_, ok, err = manager.Resolve(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_RejectsForgedCookies(t *testing.T) {
	e := echo.New()
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "known-id", "alice", time.Hour))

	manager, err := NewManager(store, "s3cret", time.Hour, false)
	require.NoError(t, err)

	for _, value := range []string{"", "known-id", "garbage"} {
		c, _ := newContext(e, &http.Cookie{Name: CookieName, Value: value})
		_, ok, err := manager.Resolve(c)
		require.NoError(t, err)
		assert.False(t, ok, "cookie %q", value)
	}

	c, _ := newContext(e)
	_, ok, err := manager.Resolve(c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client, err := config.NewRedisClient(addr)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, nil)
	ctx := context.Background()
	id := uuid.NewString()

	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, id, "alice", time.Minute))
	username, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
