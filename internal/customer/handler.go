package customer

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes customer HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a customer HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	PoolSubaccount string `json:"pool_subaccount"`
}

type subaccountRequest struct {
	PoolSubaccount string `json:"pool_subaccount"`
}

type customerResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	PoolSubaccount string `json:"pool_subaccount,omitempty"`
	Status         string `json:"status"`
}

func toResponse(c Customer) customerResponse {
	return customerResponse{
		ID:             c.ID,
		Email:          c.Email,
		Name:           c.Name,
		PoolSubaccount: c.PoolSubaccount,
		Status:         c.Status,
	}
}

// Register onboards a new customer.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cust, err := h.service.Register(c.UserContext(), RegisterInput{
		Email:          req.Email,
		Name:           req.Name,
		PoolSubaccount: req.PoolSubaccount,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(cust))
}

// Get returns a single customer.
func (h *Handler) Get(c *fiber.Ctx) error {
	cust, err := h.service.Get(c.UserContext(), c.Params("customerId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "customer not found")
		}
		return err
	}
	return c.JSON(toResponse(cust))
}

// List returns all customers.
func (h *Handler) List(c *fiber.Ctx) error {
	customers, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]customerResponse, 0, len(customers))
	for _, cust := range customers {
		out = append(out, toResponse(cust))
	}
	return c.JSON(fiber.Map{"customers": out})
}

// SetSubaccount updates the external pool subaccount mapping.
func (h *Handler) SetSubaccount(c *fiber.Ctx) error {
	var req subaccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	err := h.service.SetPoolSubaccount(c.UserContext(), c.Params("customerId"), req.PoolSubaccount)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "customer not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// IssuePortalKey rotates the customer's portal access key.
func (h *Handler) IssuePortalKey(c *fiber.Ctx) error {
	key, err := h.service.IssuePortalKey(c.UserContext(), c.Params("customerId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "customer not found")
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"portal_key": key})
}
