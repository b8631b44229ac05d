package earnings

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/customer"
	"github.com/minedesk/minedesk/internal/pool"
)

// Handler exposes earnings dashboard HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an earnings HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Summary serves the customer's earnings dashboard data.
func (h *Handler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(
		c.UserContext(),
		c.Params("customerId"),
		c.Params("currency"),
		c.QueryInt("days", 30),
	)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"currency":          summary.Currency,
		"subaccount":        summary.SubaccountID,
		"hashrate_ths":      summary.HashrateTHs,
		"hashrate_24h_ths":  summary.Avg24hTHs,
		"days":              summary.Days,
		"total_revenue":     summary.TotalRevenue,
		"avg_daily_revenue": summary.AvgDailyRevenue,
		"revenue":           summary.Revenue,
	})
}

// Workers serves the sorted, paginated worker list.
func (h *Handler) Workers(c *fiber.Ctx) error {
	result, err := h.service.ListWorkers(
		c.UserContext(),
		c.Params("customerId"),
		c.Params("currency"),
		c.QueryInt("page", 1),
		c.QueryInt("per_page", 50),
		c.Query("sort", "hashrate"),
	)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"workers":  result.Workers,
		"total":    result.Total,
		"active":   result.Active,
		"inactive": result.Inactive,
		"page":     result.Page,
		"per_page": result.PerPage,
	})
}

func renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, customer.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "customer not found")
	case errors.Is(err, customer.ErrNotConfigured):
		return fiber.NewError(http.StatusConflict, "customer has no pool subaccount configured")
	}

	var apiErr *pool.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fiber.NewError(http.StatusTooManyRequests, "pool api is rate limiting requests")
		case apiErr.StatusCode >= 500:
			return fiber.NewError(http.StatusServiceUnavailable, "pool api unavailable")
		default:
			return fiber.NewError(http.StatusBadGateway, apiErr.Message)
		}
	}
	return err
}
