package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bitesofsouth/ordering-backend/api/controllers"
	"github.com/bitesofsouth/ordering-backend/api/middleware"
	cartsvc "github.com/bitesofsouth/ordering-backend/internal/cart"
	checkoutsvc "github.com/bitesofsouth/ordering-backend/internal/checkout"
	couponsvc "github.com/bitesofsouth/ordering-backend/internal/coupons"
	"github.com/bitesofsouth/ordering-backend/internal/menu"
	orderssvc "github.com/bitesofsouth/ordering-backend/internal/orders"
	rewardsvc "github.com/bitesofsouth/ordering-backend/internal/rewards"
	"github.com/bitesofsouth/ordering-backend/pkg/config"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Menu     menu.Repository
	Carts    cartsvc.Service
	Coupons  couponsvc.Service
	Rewards  rewardsvc.Service
	Orders   orderssvc.Service
	Checkout checkoutsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Browsing and ordering work for guests and signed-in users alike.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))

			r.Get("/menu", controllers.MenuList(deps.Menu, logg))
			r.Get("/coupons", controllers.CouponList(deps.Coupons, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Carts, logg))
				r.Post("/items", controllers.CartAdd(deps.Carts, deps.Menu, logg))
				r.Patch("/items/{lineID}", controllers.CartUpdateQuantity(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
				r.Post("/quote", controllers.CartQuote(deps.Checkout, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/payment-order", controllers.PaymentOrderCreate(deps.Checkout, logg))
				r.Post("/", controllers.CheckoutPlace(deps.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(deps.Orders, logg))
				r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
				r.Get("/{orderID}/events", controllers.OrderEvents(deps.Orders, logg))
			})

			// Guests see the catalog with a zero balance.
			r.Get("/rewards", controllers.RewardsCatalog(deps.Rewards, logg))
		})

		// Redeeming needs a signed-in user; the service rejects guests, the
		// middleware rejects missing tokens outright.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/rewards/redeem", controllers.RewardRedeem(deps.Rewards, logg))
		})

		// Kitchen dashboard.
		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, logg),
				middleware.RequireRole(string(enums.RoleStaff), logg),
			)

			r.Patch("/kitchen/orders/{orderID}/progress", controllers.OrderProgressUpdate(deps.Orders, logg))
		})
	})

	return r
}
