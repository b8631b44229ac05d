package hardware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes miner inventory HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a hardware HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	CustomerID  string  `json:"customer_id"`
	Model       string  `json:"model"`
	HashrateTHs float64 `json:"hashrate_ths"`
	PowerWatts  int64   `json:"power_watts"`
	Rack        string  `json:"rack"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type minerResponse struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customer_id"`
	Model       string  `json:"model"`
	HashrateTHs float64 `json:"hashrate_ths"`
	PowerWatts  int64   `json:"power_watts"`
	Rack        string  `json:"rack,omitempty"`
	Status      string  `json:"status"`
}

func toResponse(m Miner) minerResponse {
	return minerResponse{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		Model:       m.Model,
		HashrateTHs: m.HashrateTHs,
		PowerWatts:  m.PowerWatts,
		Rack:        m.Rack,
		Status:      m.Status,
	}
}

// Register racks a new machine.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	m, err := h.service.Register(c.UserContext(), RegisterInput{
		CustomerID:  req.CustomerID,
		Model:       req.Model,
		HashrateTHs: req.HashrateTHs,
		PowerWatts:  req.PowerWatts,
		Rack:        req.Rack,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(m))
}

// ListByCustomer returns a customer's machines plus fleet totals.
func (h *Handler) ListByCustomer(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	miners, err := h.service.ListByCustomer(c.UserContext(), customerID)
	if err != nil {
		return err
	}
	totals, err := h.service.Totals(c.UserContext(), customerID)
	if err != nil {
		return err
	}

	out := make([]minerResponse, 0, len(miners))
	for _, m := range miners {
		out = append(out, toResponse(m))
	}
	return c.JSON(fiber.Map{
		"miners": out,
		"totals": fiber.Map{
			"machines":     totals.Machines,
			"active":       totals.Active,
			"hashrate_ths": totals.HashrateTHs,
			"power_watts":  totals.PowerWatts,
		},
	})
}

// UpdateStatus applies a lifecycle transition.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	m, err := h.service.UpdateStatus(c.UserContext(), c.Params("minerId"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "miner not found")
		case errors.Is(err, ErrInvalidTransition):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return err
		}
	}
	return c.JSON(toResponse(m))
}
