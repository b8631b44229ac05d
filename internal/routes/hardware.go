package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/hardware"
)

// RegisterHardwareRoutes wires miner inventory endpoints.
func RegisterHardwareRoutes(r fiber.Router, h *hardware.Handler, admin fiber.Handler) {
	r.Post("/miners", admin, h.Register)
	r.Patch("/miners/:minerId/status", admin, h.UpdateStatus)
	r.Get("/customers/:customerId/miners", admin, h.ListByCustomer)
}
