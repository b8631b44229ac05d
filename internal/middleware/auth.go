package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/customer"
)

const (
	adminTokenHeader = "X-Admin-Token"
	portalKeyHeader  = "X-Portal-Key"
)

// AdminToken guards operator-only routes with a static shared token. When no
// token is configured (dev mode) the guard is a no-op.
func AdminToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		presented := c.Get(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid admin token")
		}
		return c.Next()
	}
}

// PortalAuth verifies the customer's portal access key for customer-scoped
// routes. The key travels in a header and is checked against the stored
// bcrypt hash; the admin token bypasses the check for back-office use.
func PortalAuth(customers *customer.Service, adminToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminToken != "" {
			presented := c.Get(adminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(adminToken)) == 1 {
				return c.Next()
			}
		}

		key := c.Get(portalKeyHeader)
		if key == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing portal key")
		}
		if err := customers.VerifyPortalKey(c.UserContext(), c.Params("customerId"), key); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid portal key")
		}
		return c.Next()
	}
}
