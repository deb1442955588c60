package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/lttsale-console/api/controllers"
	"github.com/angelmondragon/lttsale-console/api/middleware"
	"github.com/angelmondragon/lttsale-console/api/responses"
	"github.com/angelmondragon/lttsale-console/internal/console"
	"github.com/angelmondragon/lttsale-console/internal/settings"
	"github.com/angelmondragon/lttsale-console/pkg/config"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	"github.com/angelmondragon/lttsale-console/pkg/redis"
)

// NewRouter wires the console API. redisClient may be nil, in which case readiness
// skips the Redis ping and login attempts are not rate limited. metricsHandler is
// mounted at /metrics when set.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *console.Registry,
	settingsService *settings.Service,
	redisClient *redis.Client,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	cookie := responses.SessionCookie{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    cfg.Session.TTL,
	}

	// A nil *redis.Client must not reach the interfaces below as a non-nil value.
	var (
		pinger     redis.Pinger
		rateLimits middleware.RateLimiterStore
	)
	if redisClient != nil {
		pinger = redisClient
		rateLimits = redisClient
	}
	loginPolicy := middleware.NewLoginRateLimitPolicy(cfg.Session.LoginWindow, cfg.Session.LoginAttempts)

	r.Get("/healthz", controllers.HealthReady(cfg, logg, pinger))
	r.Get("/healthz/live", controllers.HealthLive(cfg))
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(registry, cookie, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(loginPolicy, rateLimits, logg)).Post("/login", controllers.AuthLogin(registry, logg))
			r.Post("/logout", controllers.AuthLogout(registry, logg))
			r.Get("/session", controllers.AuthSession(logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(logg))
				r.Get("/permissions", controllers.AuthPermissions(logg))
				r.Get("/can", controllers.AuthCan(logg))
				r.Get("/me", controllers.AuthProfile(logg))
				r.Put("/me", controllers.AuthUpdateProfile(logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(logg))

			r.Get("/nav", controllers.Navigation(logg))

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.SettingsGet(settingsService, logg))
				r.Put("/", controllers.SettingsUpdate(settingsService, logg))
				r.Post("/toggle-nav", controllers.SettingsToggleNav(settingsService, logg))
				r.Delete("/", controllers.SettingsReset(settingsService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(middleware.RequirePermission(console.PermOrders, logg))
				r.Get("/", controllers.OrdersList(logg))
				r.Post("/", controllers.OrdersCreate(logg))
				r.Post("/legacy", controllers.OrdersCreateLegacy(logg))
				r.Get("/state", controllers.OrdersState(logg))
				r.Post("/preview-totals", controllers.OrdersPreviewTotals(logg))
				r.Get("/transitions", controllers.OrdersTransitions(logg))
				r.Route("/{orderId}", func(r chi.Router) {
					r.Get("/", controllers.OrdersGet(logg))
					r.Put("/", controllers.OrdersUpdate(logg))
					r.Delete("/", controllers.OrdersDelete(logg))
					r.Patch("/status", controllers.OrdersUpdateStatus(logg))
					r.Post("/cancel", controllers.OrdersCancel(logg))
					r.Post("/paid", controllers.OrdersMarkPaid(logg))
					r.Post("/items", controllers.OrdersAddItem(logg))
					r.Delete("/items/{itemId}", controllers.OrdersRemoveItem(logg))
					r.Get("/history", controllers.OrdersHistory(logg))
					r.Patch("/toggle-delivered", controllers.OrdersToggleDelivered(logg))
					r.Patch("/toggle-paid", controllers.OrdersTogglePaid(logg))
				})
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.RequirePermission(console.PermProducts, logg))
				mountCatalog(r, controllers.Products(logg))
				r.Patch("/{id}/toggle-published", controllers.ProductsTogglePublished(logg))
			})
			r.Route("/customers", func(r chi.Router) {
				r.Use(middleware.RequirePermission(console.PermCustomers, logg))
				mountCatalog(r, controllers.Customers(logg))
				r.Get("/building/{buildingId}", controllers.CustomersByBuilding(logg))
			})
			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.RequirePermission(console.PermCategories, logg))
				mountCatalog(r, controllers.Categories(logg))
			})
			r.Route("/buildings", func(r chi.Router) {
				r.Use(middleware.RequirePermission(console.PermBuildings, logg))
				mountCatalog(r, controllers.Buildings(logg))
			})
			r.Route("/apartments", func(r chi.Router) {
				r.Use(middleware.RequirePermission(console.PermApartments, logg))
				mountCatalog(r, controllers.Apartments(logg))
			})
			r.With(middleware.RequirePermission(console.PermAnalytics, logg)).
				Get("/analytics", controllers.OrderAnalytics(logg))

			r.Route("/admin", func(r chi.Router) {
				mountAdmin(r, controllers.NewAdminHandlers(logg), logg)
			})
		})
	})

	return r
}

func mountCatalog(r chi.Router, h controllers.CatalogHandlers) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func mountAdmin(r chi.Router, h *controllers.AdminHandlers, logg *logger.Logger) {
	r.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.RequirePermission(console.PermAccounts, logg))
		r.Get("/", h.ListAccounts())
		r.Post("/", h.CreateAccount())
		r.Get("/{id}", h.GetAccount())
		r.Put("/{id}", h.UpdateAccount())
		r.Delete("/{id}", h.DeleteAccount())
		r.Get("/{id}/roles", h.AccountRoles())
		r.Post("/{id}/roles", h.AssignRoles())
		r.Delete("/{id}/roles", h.RemoveRole())
		r.Get("/{id}/permissions", h.AccountPermissions())
	})
	r.Route("/roles", func(r chi.Router) {
		r.Use(middleware.RequirePermission(console.PermRoles, logg))
		r.Get("/", h.ListRoles())
		r.Post("/", h.CreateRole())
		r.Get("/{id}", h.GetRole())
		r.Put("/{id}", h.UpdateRole())
		r.Delete("/{id}", h.DeleteRole())
		r.Get("/{id}/policies", h.RolePolicies())
	})
	r.Route("/permissions", func(r chi.Router) {
		r.Use(middleware.RequirePermission(console.PermPermissions, logg))
		r.Get("/", h.ListPermissions())
		r.Post("/", h.CreatePermission())
		r.Put("/{id}", h.UpdatePermission())
		r.Delete("/{id}", h.DeletePermission())
	})
	r.Route("/resources", func(r chi.Router) {
		r.Use(middleware.RequirePermission(console.PermResources, logg))
		r.Get("/", h.ListResources())
		r.Post("/", h.CreateResource())
		r.Put("/{id}", h.UpdateResource())
		r.Delete("/{id}", h.DeleteResource())
	})
	r.Route("/policies", func(r chi.Router) {
		r.Use(middleware.RequirePermission(console.PermPolicies, logg))
		r.Get("/", h.ListPolicies())
		r.Post("/", h.AddPolicy())
		r.Delete("/", h.RemovePolicy())
	})
}
