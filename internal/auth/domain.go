package auth

import (
	"context"
	"time"

	"github.com/modelgate/modelgate/internal/shared"
)

// User represents an account row. LastKeyGeneratedAt is the key epoch:
// a bearer key is valid exactly while its embedded epoch equals this
// value, so re-issuing a key revokes every key issued before it. The
// field is nil only for accounts created before API keys existed.
type User struct {
	ID                 string
	Email              string
	Name               string
	Image              string
	SubscriptionID     string
	IsActive           bool
	LastKeyGeneratedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Identity is the per-request authentication result. Session is nil when
// the request was authenticated by bearer key (token auth is stateless).
type Identity struct {
	User    *User
	Session *shared.Session
}

// TokenError reports why a bearer key was rejected. All kinds collapse to
// the same HTTP response; Kind exists for the audit trail only.
type TokenError struct {
	Kind string
}

func (e *TokenError) Error() string { return "auth: " + e.Kind }

// Unwrap lets callers match shared.ErrInvalidToken without seeing Kind.
func (e *TokenError) Unwrap() error { return shared.ErrInvalidToken }

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity, nil when anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// UserFromContext is a convenience accessor for handlers.
func UserFromContext(ctx context.Context) *User {
	if id := IdentityFromContext(ctx); id != nil {
		return id.User
	}
	return nil
}
