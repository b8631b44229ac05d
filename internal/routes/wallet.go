package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/wallet"
)

// RegisterWalletRoutes wires payout-settings endpoints. Reads are
// customer-facing and rate limited against the pool; cache invalidation is an
// operator action.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, admin, portal, poolLimit fiber.Handler) {
	r.Get("/customers/:customerId/wallet/:currency/settings", portal, poolLimit, h.GetSettings)
	r.Delete("/customers/:customerId/wallet/:currency/settings/cache", admin, h.InvalidateCache)
}
