package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnresolved is returned when no identity could be established from
// a credential. Callers surface it as "authentication failed" without
// revealing whether the token or the key path failed.
var ErrUnresolved = errors.New("authentication failed")

// ErrUnauthenticated is returned by handlers that require an identity
// but find none in the context.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the acting identity resolved from a request credential.
// It is constructed per request and never persisted.
type Identity struct {
	AccountID uuid.UUID

	// OrgID is uuid.Nil unless the account itself is an organization
	// (has at least one member), in which case it equals AccountID.
	OrgID uuid.UUID
}

// IsOrganization reports whether the identity is acting as an organization.
func (id Identity) IsOrganization() bool {
	return id.OrgID != uuid.Nil
}

type contextKey int

const identityContextKey contextKey = iota

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the acting identity from the context.
// The second return value is false for unauthenticated contexts.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

// RequireIdentity extracts the acting identity or returns
// ErrUnauthenticated. Absence of identity metadata always means
// unauthenticated, never an unknown personal account.
func RequireIdentity(ctx context.Context) (Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}
