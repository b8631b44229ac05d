package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/earnings"
)

// RegisterEarningsRoutes wires the pool-proxy dashboard endpoints.
func RegisterEarningsRoutes(r fiber.Router, h *earnings.Handler, portal, poolLimit fiber.Handler) {
	r.Get("/customers/:customerId/earnings/:currency", portal, poolLimit, h.Summary)
	r.Get("/customers/:customerId/workers/:currency", portal, poolLimit, h.Workers)
}
