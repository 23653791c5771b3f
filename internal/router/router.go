package router

import (
	"github.com/antonminaichev/storefront-orders/internal/admin"
	"github.com/antonminaichev/storefront-orders/internal/catalog"
	"github.com/antonminaichev/storefront-orders/internal/checkout"
	"github.com/antonminaichev/storefront-orders/internal/logger"
	"github.com/antonminaichev/storefront-orders/internal/middleware"
	"github.com/antonminaichev/storefront-orders/internal/order"
	"github.com/antonminaichev/storefront-orders/internal/webhook"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	webhookH *webhook.Handler,
	checkoutH *checkout.Handler,
	catalogH *catalog.Handler,
	orderH *order.Handler,
	adminH *admin.Handler,
	jwtSecret []byte,
	operators admin.OperatorRepository,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)

	// Raw body matters for signature verification, keep the webhook outside
	// the gzip wrapper.
	r.Post("/api/webhooks/stripe", webhookH.Handle)

	r.Group(func(r chi.Router) {
		r.Use(middleware.GzipHandler)

		r.Post("/api/checkout", checkoutH.CreateSession)
		r.Get("/api/products", catalogH.ListProducts)
		r.Get("/api/products/{id}", catalogH.GetProduct)

		r.Route("/api/admin", func(r chi.Router) {
			r.Post("/login", adminH.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTMiddleware(jwtSecret, operators))

				r.Get("/orders", orderH.ListOrders)
				r.Get("/orders/{id}", orderH.GetOrder)
				r.Patch("/orders/{id}/status", orderH.UpdateStatus)
				r.Get("/stats", orderH.Stats)
			})
		})
	})

	return r
}
