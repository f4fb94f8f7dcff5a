package domain

import (
	"context"
	"time"
)

// CurrentUserKey is the key under which a scope persists its selected viewer.
const CurrentUserKey = "currentUser"

// ViewerStore is a durable key-value scope holding serialized users.
// Get returns ErrNotFound when nothing is stored under key.
type ViewerStore interface {
	Get(ctx context.Context, scope, key string) (*User, error)
	Set(ctx context.Context, scope, key string, user *User) error
}

// ViewerService resolves and switches the user a client scope is acting as.
type ViewerService interface {
	// Current loads the persisted viewer or picks one at random and persists it.
	Current(ctx context.Context, scope string) (*User, error)
	Switch(ctx context.Context, scope string, userID int64) (*User, error)
}

// ViewerTokenIssuer issues signed tokens carrying a viewer scope id.
type ViewerTokenIssuer interface {
	Issue(scope string, expiry time.Duration) (string, error)
}

// ViewerTokenVerifier verifies a token and returns the scope id it carries.
type ViewerTokenVerifier interface {
	Verify(token string) (scope string, err error)
}
