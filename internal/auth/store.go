package auth

import (
	"context"
	"time"
)

// SessionStore describes persistence operations required by the session resolver.
// Lookups return ErrNotFound when the row does not exist.
type SessionStore interface {
	CreateSession(ctx context.Context, rec SessionRecord) error
	FindSession(ctx context.Context, tokenHash string) (*SessionLookup, error)
	DeleteSession(ctx context.Context, tokenHash string) (userID string, err error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	FindCredential(ctx context.Context, email string) (*Credential, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}
