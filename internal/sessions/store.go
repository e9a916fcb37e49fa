// Package sessions keeps logged-in identities between requests. The browser
// holds only an encrypted session id; the username lives in a Store.
package sessions

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

type Store interface {
	Save(ctx context.Context, id, username string, ttl time.Duration) error
	// Load returns ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}
