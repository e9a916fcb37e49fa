// Package auth is the single-tenant access gate: a fixed credential map and
// the authenticated identity carried in a request context.
package auth

import (
	"context"

	apperrors "task-tracker.com/task-tracker/internal/errors"
)

type Identity struct {
	Username string
}

type Gate struct {
	credentials map[string]string
}

func NewGate(credentials map[string]string) *Gate {
	copied := make(map[string]string, len(credentials))
	for user, password := range credentials {
		copied[user] = password
	}
	return &Gate{credentials: copied}
}

// Authenticate checks the pair against the configured mapping with a plain
// string comparison.
func (g *Gate) Authenticate(username, password string) (Identity, error) {
	expected, ok := g.credentials[username]
	if !ok || expected != password {
		return Identity{}, apperrors.ErrInvalidCredentials
	}
	return Identity{Username: username}, nil
}

// Known reports whether username is still configured. Sessions for removed
// users are treated as anonymous.
func (g *Gate) Known(username string) bool {
	_, ok := g.credentials[username]
	return ok
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.Username != ""
}

// Require returns ErrAuthRequired unless ctx carries an identity.
func Require(ctx context.Context) (Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Identity{}, apperrors.ErrAuthRequired
	}
	return id, nil
}
