package session

import (
	"context"
	"errors"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the authenticated caller passed to protected operations.
type Identity struct {
	StudentID int64
	Email     string
}

// Manager issues opaque session tokens and resolves them back to an
// identity.
type Manager interface {
	Issue(ctx context.Context, id Identity) (string, error)
	Resolve(ctx context.Context, token string) (*Identity, error)
	Revoke(ctx context.Context, token string) error
	Close() error
}
