package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastrahub/vastra/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestNamedRouteURL(t *testing.T) {
	r := router.New()
	r.Get("/api/products/{id}", "products.show", ok)

	url, err := r.URL("products.show", map[string]string{"id": "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/abc123", url)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err, "missing params should error")

	_, err = r.URL("nope", nil)
	assert.Error(t, err, "unknown route should error")
}

func TestGroupPrefixAndNesting(t *testing.T) {
	r := router.New()
	api := r.Group("/api")
	admin := api.Group("/admin")
	admin.Get("/orders", "admin.orders.index", ok)

	path, found := r.Path("admin.orders.index")
	require.True(t, found)
	assert.Equal(t, "/api/admin/orders", path)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGroupMiddlewareApplies(t *testing.T) {
	var order []string
	mw := func(tag string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, tag)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	api := r.Group("/api", mw("outer"))
	inner := api.Group("/admin", mw("inner"))
	inner.Get("/dashboard", "admin.dashboard", ok, mw("route"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"outer", "inner", "route"}, order)
}

func TestRoutesListing(t *testing.T) {
	r := router.New()
	r.Get("/health", "health", ok)
	r.Post("/api/orders", "orders.store", ok)
	r.Get("/unnamed", "", ok)

	infos := r.Routes()
	assert.Len(t, infos, 2, "unnamed routes are not listed")

	names := map[string]bool{}
	for _, ri := range infos {
		names[ri.Name] = true
	}
	assert.True(t, names["health"])
	assert.True(t, names["orders.store"])
}

func TestMethodIsEnforced(t *testing.T) {
	r := router.New()
	r.Post("/api/orders", "orders.store", ok)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
