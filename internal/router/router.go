package router

import (
	"net/http"

	"simpleshop/internal/handler"
	"simpleshop/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Cart    *handler.CartHandler
	Payment *handler.PaymentHandler
	Address *handler.AddressHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Applied in order: Recovery -> CorrelationID -> Logging -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	// Health check endpoint (no authentication required)
	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.List)
		r.Get("/products/{id}", h.Product.GetByID)
		r.Get("/brands", h.Product.Brands)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.List)
				r.Post("/", h.Cart.Add)
				r.Delete("/", h.Cart.Clear)
				r.Post("/checkout", h.Order.Checkout)
				r.Delete("/{productId}", h.Cart.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.Order.List)
				r.Post("/", h.Order.Create)
				r.Get("/{id}", h.Order.GetByID)
				r.Get("/{id}/invoice", h.Order.Invoice)
			})

			r.Post("/payments/intent", h.Payment.Intent)
			r.Post("/payments/confirm", h.Payment.Confirm)

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", h.Address.List)
				r.Post("/", h.Address.Create)
				r.Get("/{id}", h.Address.Get)
				r.Put("/{id}", h.Address.Update)
				r.Patch("/{id}", h.Address.Patch)
				r.Delete("/{id}", h.Address.Delete)
			})
		})
	})

	return r
}
