package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Auth     *AuthHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
}

// NewRouter mounts the storefront API under /api/v1 and wraps it in an otel server span.
func NewRouter(h Handlers, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(IdentityMiddleware)
	r.Use(LanguageMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.Catalog.ListProducts)
			r.Get("/{product_id}/price", h.Catalog.GetPrice)
			r.Post("/{product_id}/quote", h.Catalog.Quote)
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
		})
		r.Route("/account", func(r chi.Router) {
			r.Get("/", h.Auth.GetAccount)
			r.Put("/", h.Auth.UpdateAccount)
			r.Delete("/", h.Auth.DeleteAccount)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Put("/open", h.Cart.SetOpen)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{item_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{item_id}", h.Cart.RemoveItem)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.Begin)
			r.Delete("/", h.Checkout.Cancel)
			r.Post("/delivery", h.Checkout.SubmitDelivery)
			r.Get("/summary", h.Checkout.Summary)
			r.Post("/payment", h.Checkout.SubmitPayment)
			r.Get("/confirmation", h.Checkout.Confirmation)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Post("/{order_id}/status", h.Orders.UpdateStatus)
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}),
	)
}
