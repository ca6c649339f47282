package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/payu_gateway/internal/payments"
)

// RegisterPaymentRoutes wires card payment endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	g := r.Group("/payments")
	g.Post("/purchase", h.Purchase)
	g.Post("/authorize", h.Authorize)
	g.Post("/capture", h.Capture)
	g.Post("/refund", h.Refund)
	g.Post("/void", h.Void)
	g.Post("/verify", h.Verify)
	g.Post("/store", h.Store)
	g.Get("/credentials", h.Credentials)
	g.Get("/countries", h.Countries)
}
