package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/customer"
)

// RegisterCustomerRoutes wires customer directory endpoints. All of these are
// back-office operations, so the admin guard covers the group.
func RegisterCustomerRoutes(r fiber.Router, h *customer.Handler, admin fiber.Handler) {
	customers := r.Group("/customers", admin)
	customers.Post("", h.Register)
	customers.Get("", h.List)
	customers.Get("/:customerId", h.Get)
	customers.Put("/:customerId/subaccount", h.SetSubaccount)
	customers.Post("/:customerId/portal-key", h.IssuePortalKey)
}
