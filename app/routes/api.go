package routes

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"github.com/shashiranjanraj/bazaar/pkg/graphql"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/reqid"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/ws"

	gqllib "github.com/graphql-go/graphql"
)

// Deps carries everything the route table needs. The server bootstrap
// builds one and hands it over.
type Deps struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Uploads  *controllers.UploadController
	Health   *controllers.HealthController

	Auth   middleware.UserSource
	Owners middleware.OwnerSource

	Hub    *ws.Hub
	Schema gqllib.Schema
}

// RegisterAPI mounts the whole HTTP surface on r.
func RegisterAPI(r *router.Router, d Deps) {
	r.Use(metrics.Middleware(), middleware.Recovery, reqid.Middleware(), middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	authed := middleware.Authenticate(d.Auth)
	optional := middleware.OptionalAuth(d.Auth)
	adminOnly := middleware.Authorize(models.RoleAdmin)
	sellerOnly := middleware.Authorize(models.RoleSeller, models.RoleAdmin)
	owned := func(resource string) router.Middleware {
		return middleware.VerifyOwnership(resource, "id", d.Owners)
	}

	general := middleware.RateLimit(config.RateLimitMax(), config.RateLimitWindow())
	authLimit := middleware.RateLimit(config.AuthRateLimitMax(), config.RateLimitWindow())

	r.Get("/health", "health", ctx.Wrap(d.Health.Status))
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/ws/orders", authed(ws.Handler(d.Hub)))

	api := r.Group("/api", general)

	// Accounts. Credential endpoints carry the tighter limiter on top of
	// the general one.
	users := api.Group("/users")
	users.Post("/register", "users.register", ctx.Wrap(d.Users.Register), authLimit)
	users.Post("/login", "users.login", ctx.Wrap(d.Users.Login), authLimit)
	users.Post("/refresh-token", "users.refresh", ctx.Wrap(d.Users.Refresh), authLimit)
	users.Post("/logout", "users.logout", ctx.Wrap(d.Users.Logout))
	users.Post("/logout-all", "users.logout_all", ctx.Wrap(d.Users.LogoutAll), authed)
	users.Get("/profile", "users.profile", ctx.Wrap(d.Users.Profile), authed)
	users.Put("/profile", "users.update", ctx.Wrap(d.Users.UpdateProfile), authed)
	users.Put("/change-password", "users.password", ctx.Wrap(d.Users.ChangePassword), authed)
	users.Post("/verify-email", "users.verify", ctx.Wrap(d.Users.VerifyEmail), authed)
	users.Delete("/deactivate", "users.deactivate", ctx.Wrap(d.Users.Deactivate), authed)
	users.Get("/stats", "users.stats", ctx.Wrap(d.Users.Stats), authed)
	users.Get("/admin/all", "users.admin.index", ctx.Wrap(d.Users.List), authed, adminOnly)
	users.Get("/admin/{id}", "users.admin.show", ctx.Wrap(d.Users.Show), authed, adminOnly)

	// Catalogue: public reads (personalised when a token is present),
	// seller-gated writes with ownership checks.
	products := api.Group("/products")
	products.Get("", "products.index", ctx.Wrap(d.Products.List), optional)
	products.Get("/featured", "products.featured", ctx.Wrap(d.Products.Featured), optional)
	products.Get("/categories", "products.categories", ctx.Wrap(d.Products.Categories), optional)
	products.Get("/mine", "products.mine", ctx.Wrap(d.Products.MyListings), authed, sellerOnly)
	products.Get("/stats/mine", "products.stats", ctx.Wrap(d.Products.SellerStats), authed, sellerOnly)
	products.Get("/{id}", "products.show", ctx.Wrap(d.Products.Show), optional)
	products.Post("", "products.create", ctx.Wrap(d.Products.Create),
		authed, sellerOnly, middleware.RequireVerifiedEmail)
	products.Put("/{id}", "products.update", ctx.Wrap(d.Products.Update), authed, owned("product"))
	products.Delete("/{id}", "products.delete", ctx.Wrap(d.Products.Delete), authed, owned("product"))

	// Orders.
	orders := api.Group("/orders", authed)
	orders.Post("", "orders.create", ctx.Wrap(d.Orders.Create))
	orders.Get("", "orders.index", ctx.Wrap(d.Orders.List))
	orders.Get("/selling", "orders.selling", ctx.Wrap(d.Orders.Selling), sellerOnly)
	orders.Get("/stats", "orders.stats", ctx.Wrap(d.Orders.Stats))
	orders.Get("/{id}", "orders.show", ctx.Wrap(d.Orders.Show), owned("order"))
	orders.Put("/{id}/status", "orders.status", ctx.Wrap(d.Orders.UpdateStatus), owned("order"))
	orders.Post("/{id}/cancel", "orders.cancel", ctx.Wrap(d.Orders.Cancel))

	// Uploads.
	uploads := api.Group("/uploads", authed)
	uploads.Post("/avatar", "uploads.avatar", ctx.Wrap(d.Uploads.Avatar))
	uploads.Post("/products", "uploads.products", ctx.Wrap(d.Uploads.ProductImage), sellerOnly)

	// GraphQL catalogue view.
	api.Post("/graphql", "graphql", graphql.Handler(d.Schema))

	// Locally stored uploads. The s3 disk serves its own URLs.
	if config.StorageDefault() == "local" {
		r.Handle("/storage/*", http.StripPrefix("/storage/",
			http.FileServer(http.Dir(config.StorageLocalRoot()))))
	}
}
