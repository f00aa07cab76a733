package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vastrahub/vastra/pkg/auth"
	"github.com/vastrahub/vastra/pkg/response"
)

// CookieName is the http-only cookie carrying the credential.
const CookieName = "token"

// Identity is the resolved caller, stored once per request in the
// request context by the auth gate. Handlers read it with FromCtx;
// nothing consults a process-wide current user.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// UserResolver turns a token's user id into a live identity.
// It returns ok=false when the user no longer exists.
type UserResolver interface {
	ResolveUser(ctx context.Context, id string) (Identity, bool)
}

type identityKey struct{}

// FromCtx returns the authenticated identity, if any.
func FromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// withIdentity stores the identity in ctx.
func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// extractToken reads the credential from the Authorization header or,
// failing that, the auth cookie.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Auth returns the authentication gate. It validates the JWT, resolves
// the user record through resolver, and rejects with a generic 401 when
// the token is missing, invalid, expired, or the user is gone. The error
// message never distinguishes the cases.
func Auth(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				response.Unauthorized(w, "Authentication required")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Authentication required")
				return
			}

			identity, ok := resolver.ResolveUser(r.Context(), claims.UserID)
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// OptionalAuth attaches the identity when a valid credential is present
// but lets anonymous requests straight through. Used on endpoints that
// serve guests and signed-in customers alike.
func OptionalAuth(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if claims, err := auth.ValidateToken(token); err == nil {
					if identity, ok := resolver.ResolveUser(r.Context(), claims.UserID); ok {
						r = r.WithContext(withIdentity(r.Context(), identity))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
