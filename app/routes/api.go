// Package routes wires every endpoint onto the router.
package routes

import (
	"net/http"
	"time"

	"github.com/vastrahub/vastra/app/controllers"
	appgraphql "github.com/vastrahub/vastra/app/graphql"
	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/app/services"
	"github.com/vastrahub/vastra/config"
	"github.com/vastrahub/vastra/pkg/audit"
	"github.com/vastrahub/vastra/pkg/logger"
	"github.com/vastrahub/vastra/pkg/metrics"
	"github.com/vastrahub/vastra/pkg/middleware"
	"github.com/vastrahub/vastra/pkg/rbac"
	"github.com/vastrahub/vastra/pkg/reqid"
	"github.com/vastrahub/vastra/pkg/response"
	"github.com/vastrahub/vastra/pkg/router"
)

// Deps carries the wired services into route registration.
type Deps struct {
	Users     *repositories.UserRepository
	Catalog   *services.CatalogService
	Checkout  *services.CheckoutService
	Orders    *services.OrderService
	Dashboard *services.DashboardService
	Trail     *audit.Trail
}

// Register mounts all routes and returns the router.
func Register(d Deps) *router.Router {
	r := router.New()

	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
		metrics.Middleware(),
		middleware.RateLimit(config.RateLimitPerMinute(), time.Minute),
	)

	products := controllers.NewProductController(d.Catalog)
	orders := controllers.NewOrderController(d.Checkout, d.Orders)
	authc := controllers.NewAuthController(services.NewAuthService(d.Users))
	dashboard := controllers.NewDashboardController(d.Dashboard)

	requireAuth := middleware.Auth(d.Users)
	optionalAuth := middleware.OptionalAuth(d.Users)
	requireAdmin := rbac.HasRole(models.RoleAdmin)

	// Liveness and metrics.
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, response.Payload{"status": "ok"})
	})
	r.Get("/metrics", "metrics", metrics.Handler().ServeHTTP)

	api := r.Group("/api")

	// Public storefront.
	api.Get("/products", "products.index", products.Index)
	api.Get("/products/{id}", "products.show", products.Show)
	api.Post("/orders", "orders.store", orders.Store, optionalAuth)

	// GraphQL catalog reads.
	if schema, err := appgraphql.NewSchema(d.Catalog); err != nil {
		logger.Error("routes: graphql schema build failed", "error", err)
	} else {
		api.Post("/graphql", "graphql", appgraphql.Handler(schema))
	}

	// Accounts.
	api.Post("/auth/register", "auth.register", authc.Register)
	api.Post("/auth/login", "auth.login", authc.Login)
	api.Post("/auth/logout", "auth.logout", authc.Logout)
	api.Post("/auth/password/forgot", "auth.password.forgot", authc.Forgot)
	api.Post("/auth/password/reset", "auth.password.reset", authc.Reset)

	// Signed-in customers.
	authed := api.Group("", requireAuth)
	authed.Get("/auth/me", "auth.me", authc.Me)
	authed.Get("/orders/mine", "orders.mine", orders.Mine)
	authed.Get("/orders/{id}", "orders.show", orders.Show)

	// Admin.
	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.Post("/products", "admin.products.store", products.Store)
	admin.Put("/products/{id}", "admin.products.update", products.Update)
	admin.Delete("/products/{id}", "admin.products.destroy", products.Destroy)
	admin.Post("/products/{id}/images", "admin.products.images", products.UploadImage)
	admin.Get("/orders", "admin.orders.index", orders.Index)
	admin.Patch("/orders/{id}/status", "admin.orders.status", orders.UpdateStatus)
	admin.Delete("/orders/{id}", "admin.orders.destroy", orders.Destroy)
	admin.Get("/dashboard", "admin.dashboard", dashboard.Stats)
	admin.Get("/orders/stream", "admin.orders.stream", dashboard.Stream)

	return r
}
