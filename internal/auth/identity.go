package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Identity is either anonymous or an authenticated user id.
type Identity struct {
	userId        uuid.UUID
	authenticated bool
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(userId uuid.UUID) Identity {
	return Identity{userId: userId, authenticated: true}
}

func (i Identity) UserId() (uuid.UUID, bool) {
	return i.userId, i.authenticated
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) Identity {
	if identity, ok := ctx.Value(identityKey{}).(Identity); ok {
		return identity
	}
	return Anonymous()
}

// OptionalIdentity attaches the resolved identity to the request context and
// never rejects a request.
func (m *TokenManager) OptionalIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), m.Resolve(r))))
	})
}

// RequireIdentity rejects requests without a valid bearer token.
func (m *TokenManager) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := m.Resolve(r)
		if _, ok := identity.UserId(); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing or invalid authorization token"}` + "\n")) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}
