package middleware

import (
	"context"
	"net/http"
	"strings"

	h "gatherly/internal/delivery/http/helpers"
	"gatherly/internal/domain"
)

// SessionCookieName is the cookie carrying the opaque server-side session
// token. Identity is resolved by looking the token up, never by decoding it.
const SessionCookieName = "gatherly_session"

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Authenticator resolves a request to a user identity from either a Bearer
// token or the session cookie.
type Authenticator struct {
	Sessions domain.SessionRepository
	Verifier domain.TokenVerifier
}

// Identify resolves the request's identity. A Bearer token takes precedence;
// otherwise the session cookie is looked up. Returns ("", false) when no
// valid identity is present.
func (a *Authenticator) Identify(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return "", false
		}
		token := strings.TrimSpace(auth[len(prefix):])
		if token == "" {
			return "", false
		}
		userID, err := a.Verifier.Verify(token)
		if err != nil {
			return "", false
		}
		return userID, true
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	// Expired and unknown tokens are simply unauthenticated; a storage
	// failure here must not break anonymous reads either.
	userID, err := a.Sessions.GetUserID(r.Context(), cookie.Value)
	if err != nil {
		return "", false
	}
	return userID, true
}

// RequireAuth returns a wrapper that resolves the request identity and sets
// the user ID in the request context. Without a valid identity it responds
// with 401 and does not call next.
func (a *Authenticator) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := a.Identify(r)
		if !ok {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
			return
		}
		next(w, r.WithContext(SetUserID(r.Context(), userID)))
	}
}

// OptionalAuth resolves the identity when present but always calls next, so
// anonymous reads work and handlers can personalize when a viewer is known.
func (a *Authenticator) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := a.Identify(r); ok {
			r = r.WithContext(SetUserID(r.Context(), userID))
		}
		next(w, r)
	}
}
