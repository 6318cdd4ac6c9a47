package domain

import (
	"context"
	"time"
)

// Session is a server-side session row. The token is the opaque value the
// client carries in its cookie; identity is always resolved by looking the
// token up, never by decoding it.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionRepository defines storage for server-side sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// GetUserID resolves a session token to its user ID. Expired or
	// unknown tokens yield ErrNotFound.
	GetUserID(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
