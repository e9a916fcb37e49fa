package sessions

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const CookieName = "task_session"

type Manager struct {
	store  Store
	codec  *cookieCodec
	ttl    time.Duration
	secure bool
}

func NewManager(store Store, secret string, ttl time.Duration, secureCookie bool) (*Manager, error) {
	codec, err := newCookieCodec(secret)
	if err != nil {
		return nil, err
	}
	return &Manager{
		store:  store,
		codec:  codec,
		ttl:    ttl,
		secure: secureCookie,
	}, nil
}

// Start records a new session for username and sets the cookie.
func (m *Manager) Start(c echo.Context, username string) error {
	id := uuid.NewString()
	if err := m.store.Save(c.Request().Context(), id, username, m.ttl); err != nil {
		return err
	}

	value, err := m.codec.Encode(id)
	if err != nil {
		return err
	}

	c.SetCookie(m.cookie(value, int(m.ttl.Seconds())))
	return nil
}

// Resolve returns the username behind the request's cookie. A missing,
// tampered or expired cookie is reported as ok == false with no error.
func (m *Manager) Resolve(c echo.Context) (string, bool, error) {
	id, ok := m.sessionID(c)
	if !ok {
		return "", false, nil
	}

	username, err := m.store.Load(c.Request().Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return username, true, nil
}

// Destroy forgets the session server-side and expires the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	c.SetCookie(m.cookie("", -1))

	id, ok := m.sessionID(c)
	if !ok {
		return nil
	}
	return m.store.Delete(c.Request().Context(), id)
}

func (m *Manager) sessionID(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
