package invoice

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes invoicing HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an invoice HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type generateRequest struct {
	CustomerID  string    `json:"customer_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

type paymentRequest struct {
	PaymentRef string `json:"payment_ref"`
}

type invoiceResponse struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	CustomerID  string    `json:"customer_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Lines       []Line    `json:"lines"`
	TotalCents  int64     `json:"total_cents"`
	Status      string    `json:"status"`
	IssuedAt    time.Time `json:"issued_at"`
	PaidAt      any       `json:"paid_at,omitempty"`
}

func toResponse(inv Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		CustomerID:  inv.CustomerID,
		PeriodStart: inv.PeriodStart,
		PeriodEnd:   inv.PeriodEnd,
		Lines:       inv.Lines,
		TotalCents:  inv.TotalCents,
		Status:      inv.Status,
		IssuedAt:    inv.IssuedAt,
	}
	if !inv.PaidAt.IsZero() {
		resp.PaidAt = inv.PaidAt
	}
	return resp
}

// Generate issues an invoice for a hosting period.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.service.Generate(c.UserContext(), req.CustomerID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		if errors.Is(err, ErrAlreadyIssued) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(inv))
}

// RecordPayment settles an invoice.
func (h *Handler) RecordPayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	inv, err := h.service.RecordPayment(c.UserContext(), c.Params("invoiceId"), req.PaymentRef)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "invoice not found")
		}
		return err
	}
	return c.JSON(toResponse(inv))
}

// List returns a sorted, paginated invoice history with owed totals.
func (h *Handler) List(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)
	sortBy := c.Query("sort", "issued_at")

	result, err := h.service.List(c.UserContext(), customerID, page, perPage, sortBy)
	if err != nil {
		return err
	}

	out := make([]invoiceResponse, 0, len(result.Invoices))
	for _, inv := range result.Invoices {
		out = append(out, toResponse(inv))
	}
	return c.JSON(fiber.Map{
		"invoices":           out,
		"total":              result.Total,
		"page":               result.Page,
		"per_page":           result.PerPage,
		"total_owed_cents":   result.TotalOwed,
		"total_billed_cents": result.TotalBilled,
	})
}

// Balance returns the customer's receivable balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.service.Balance(c.UserContext(), c.Params("customerId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"customer_id":   c.Params("customerId"),
		"balance_cents": balance,
		"timestamp":     time.Now().UTC(),
	})
}
