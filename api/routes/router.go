package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agromart/agromart-backend/api/controllers"
	"github.com/agromart/agromart-backend/api/middleware"
	"github.com/agromart/agromart-backend/internal/address"
	"github.com/agromart/agromart-backend/internal/auth"
	"github.com/agromart/agromart-backend/internal/cart"
	"github.com/agromart/agromart-backend/internal/notifications"
	"github.com/agromart/agromart-backend/internal/orders"
	products "github.com/agromart/agromart-backend/internal/products"
	"github.com/agromart/agromart-backend/internal/users"
	"github.com/agromart/agromart-backend/pkg/access"
	"github.com/agromart/agromart-backend/pkg/auth/session"
	"github.com/agromart/agromart-backend/pkg/config"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/metrics"
	"github.com/agromart/agromart-backend/pkg/redis"
)

// RedisBackend is the Redis surface the HTTP layer depends on.
type RedisBackend interface {
	redis.IdempotencyStore
	redis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps carries everything the router wires into handlers. Nil services
// answer 500 from their handlers instead of failing at startup.
type Deps struct {
	DB       db.Pinger
	Redis    RedisBackend
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer

	Auth          auth.Service
	Users         users.Service
	Notifications notifications.Service
	Announcer     controllers.Announcer
	Cart          cart.Service
	Addresses     address.Service
	Products      products.Service
	Orders        orders.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	authenticated := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	can := func(c access.Capability) func(http.Handler) http.Handler {
		return middleware.RequireCapability(c, logg)
	}
	optionalIdem := middleware.Idempotency(deps.Redis, middleware.OptionalIdempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.LoginPolicy(cfg.AuthRateLimit), deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(
				middleware.AuthRateLimit(middleware.RegisterPolicy(cfg.AuthRateLimit), deps.Redis, logg),
				optionalIdem,
			).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(authenticated).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			if cfg.App.IsDev() {
				r.Post("/admin/register", controllers.AdminAuthRegister(deps.Auth, logg))
			}
		})

		r.With(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)).
			Get("/products/{productId}", controllers.GetProduct(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Get("/unread-count", controllers.NotificationUnreadCount(deps.Notifications, logg))
				r.Put("/mark-all-read", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
				r.Delete("/clear-all", controllers.ClearNotifications(deps.Notifications, logg))
				r.Get("/preferences", controllers.GetNotificationPreferences(deps.Notifications, logg))
				r.Put("/preferences", controllers.UpdateNotificationPreferences(deps.Notifications, logg))
				r.Put("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Put("/{notificationId}/unread", controllers.MarkNotificationUnread(deps.Notifications, logg))
				r.Delete("/{notificationId}", controllers.DeleteNotification(deps.Notifications, logg))
				r.With(can(access.CapabilitySendNotifications), optionalIdem).
					Post("/", controllers.AdminCreateNotification(deps.Notifications, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(can(access.CapabilityManageCart))
				r.Get("/", controllers.CartList(deps.Cart, logg))
				r.With(optionalIdem).Post("/", controllers.CartAdd(deps.Cart, logg))
				r.Put("/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Use(can(access.CapabilityManageAddresses))
				r.Get("/", controllers.AddressList(deps.Addresses, logg))
				r.Post("/", controllers.AddressCreate(deps.Addresses, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(deps.Addresses, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(deps.Addresses, logg))
				r.Post("/{addressId}/set-default", controllers.AddressSetDefault(deps.Addresses, logg))
			})

			r.With(can(access.CapabilityManageProducts)).
				Post("/products", controllers.CreateProduct(deps.Products, logg))
			r.With(can(access.CapabilityManageProducts)).
				Patch("/products/{productId}/stock", controllers.UpdateProductStock(deps.Products, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.With(
					can(access.CapabilityPlaceOrders),
					middleware.Idempotency(deps.Redis, middleware.CheckoutIdempotency, logg),
				).Post("/checkout", controllers.Checkout(deps.Orders, logg))
				r.With(can(access.CapabilityManageOrders)).
					Put("/{orderId}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.With(can(access.CapabilitySendNotifications), optionalIdem).
					Post("/announcements", controllers.AdminAnnouncement(deps.Announcer, logg))
				r.With(can(access.CapabilityManageUsers)).
					Put("/users/{userId}/deactivate", controllers.AdminDeactivateUser(deps.Users, logg))
			})
		})
	})

	return r
}
