package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastrahub/vastra/pkg/auth"
	"github.com/vastrahub/vastra/pkg/middleware"
)

// stubResolver resolves a fixed set of user ids.
type stubResolver struct {
	users map[string]middleware.Identity
}

func (s *stubResolver) ResolveUser(_ context.Context, id string) (middleware.Identity, bool) {
	u, ok := s.users[id]
	return u, ok
}

func resolverWith(ids ...string) *stubResolver {
	s := &stubResolver{users: map[string]middleware.Identity{}}
	for _, id := range ids {
		s.users[id] = middleware.Identity{ID: id, Name: "Asha", Email: "asha@example.com", Role: "customer"}
	}
	return s
}

func protected() (http.Handler, *middleware.Identity) {
	var seen middleware.Identity
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := middleware.FromCtx(r.Context()); ok {
			seen = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return h, &seen
}

func bodyMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

const userID = "64f1b2a0c3d4e5f6a7b8c9d0"

func TestAuthAcceptsBearerToken(t *testing.T) {
	token, err := auth.GenerateToken(userID, "customer")
	require.NoError(t, err)

	handler, seen := protected()
	gate := middleware.Auth(resolverWith(userID))(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen.ID)
	assert.Equal(t, "customer", seen.Role)
}

func TestAuthAcceptsCookie(t *testing.T) {
	token, err := auth.GenerateToken(userID, "customer")
	require.NoError(t, err)

	handler, seen := protected()
	gate := middleware.Auth(resolverWith(userID))(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen.ID)
}

// Missing token, garbage token and vanished user must all produce the
// same generic 401.
func TestAuthRejectionsAreUniform(t *testing.T) {
	validToken, err := auth.GenerateToken(userID, "customer")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		resolver *stubResolver
	}{
		{"no token", "", resolverWith(userID)},
		{"garbage token", "Bearer garbage", resolverWith(userID)},
		{"user gone", "Bearer " + validToken, resolverWith()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := protected()
			gate := middleware.Auth(tt.resolver)(handler)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Authentication required", bodyMessage(t, rec))
		})
	}
}

func TestOptionalAuthLetsGuestsThrough(t *testing.T) {
	handler, seen := protected()
	gate := middleware.OptionalAuth(resolverWith(userID))(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, seen.ID)
}

func TestOptionalAuthAttachesIdentity(t *testing.T) {
	token, err := auth.GenerateToken(userID, "customer")
	require.NoError(t, err)

	handler, seen := protected()
	gate := middleware.OptionalAuth(resolverWith(userID))(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen.ID)
}
