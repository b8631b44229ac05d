package routes

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/minedesk/minedesk/internal/invoice"
	"github.com/minedesk/minedesk/internal/middleware"
)

// RegisterInvoiceRoutes wires invoicing endpoints. Unsafe billing operations
// sit behind the idempotency middleware when Redis is available so retried
// requests never double-post to the ledger.
func RegisterInvoiceRoutes(r fiber.Router, h *invoice.Handler, admin, portal fiber.Handler, cache *redis.Client, idemTTL time.Duration, logger *slog.Logger) {
	writes := r.Group("/invoices", admin)
	if cache != nil {
		writes.Use(middleware.Idempotency(cache, idemTTL, logger))
	}
	writes.Post("", h.Generate)
	writes.Post("/:invoiceId/payments", h.RecordPayment)

	r.Get("/customers/:customerId/invoices", portal, h.List)
	r.Get("/customers/:customerId/balance", portal, h.Balance)
}
