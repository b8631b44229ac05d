package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes wallet-settings HTTP endpoints.
type Handler struct {
	gateway *Gateway
}

// NewHandler builds a wallet-settings HTTP handler.
func NewHandler(gateway *Gateway) *Handler {
	return &Handler{gateway: gateway}
}

// GetSettings serves a customer's payout configuration.
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	currency := c.Params("currency")
	if currency == "" {
		return fiber.NewError(http.StatusBadRequest, "currency is required")
	}

	settings, err := h.gateway.GetSettings(c.UserContext(), customerID, currency)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(settings)
}

// InvalidateCache drops the cached payout configuration so the next read
// refetches from the pool. Intended for operators after an out-of-band
// change on the pool side.
func (h *Handler) InvalidateCache(c *fiber.Ctx) error {
	h.gateway.Invalidate(c.Params("customerId"), c.Params("currency"))
	return c.SendStatus(http.StatusNoContent)
}

func (h *Handler) renderError(c *fiber.Ctx, err error) error {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return err
	}

	status := http.StatusBadGateway
	switch gerr.Kind {
	case KindCustomerNotFound:
		status = http.StatusNotFound
	case KindNoSubaccount:
		status = http.StatusConflict
	case KindRateLimited:
		status = http.StatusTooManyRequests
	case KindUnavailable:
		status = http.StatusServiceUnavailable
	case KindForbidden, KindUpstream:
		status = http.StatusBadGateway
	}

	if gerr.RetryAfter > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(gerr.RetryAfter.Seconds())))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": gerr.Message,
		"kind":  string(gerr.Kind),
	})
}
