package hardware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTransition indicates a lifecycle change the state machine forbids.
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions encodes the miner lifecycle:
// provisioning -> active <-> maintenance -> retired.
var validTransitions = map[string][]string{
	StatusProvisioning: {StatusActive, StatusRetired},
	StatusActive:       {StatusMaintenance, StatusRetired},
	StatusMaintenance:  {StatusActive, StatusRetired},
	StatusRetired:      {},
}

// Service manages the miner inventory.
type Service struct {
	repo Repository
}

// NewService builds a hardware service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures data required to rack a machine.
type RegisterInput struct {
	CustomerID  string
	Model       string
	HashrateTHs float64
	PowerWatts  int64
	Rack        string
}

// Register racks a new machine in provisioning state.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Miner, error) {
	if _, err := uuid.Parse(input.CustomerID); err != nil {
		return Miner{}, fmt.Errorf("invalid customer id: %w", err)
	}
	if strings.TrimSpace(input.Model) == "" {
		return Miner{}, errors.New("model is required")
	}
	if input.HashrateTHs <= 0 {
		return Miner{}, errors.New("hashrate must be positive")
	}
	if input.PowerWatts <= 0 {
		return Miner{}, errors.New("power draw must be positive")
	}

	m := Miner{
		ID:          uuid.New().String(),
		CustomerID:  input.CustomerID,
		Model:       strings.TrimSpace(input.Model),
		HashrateTHs: input.HashrateTHs,
		PowerWatts:  input.PowerWatts,
		Rack:        strings.TrimSpace(input.Rack),
		Status:      StatusProvisioning,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Miner{}, err
	}
	return m, nil
}

// Get fetches a miner by id.
func (s *Service) Get(ctx context.Context, id string) (Miner, error) {
	return s.repo.Get(ctx, id)
}

// ListByCustomer returns a customer's machines.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Miner, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// UpdateStatus applies a lifecycle transition after validating it.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Miner, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return Miner{}, err
	}

	allowed := false
	for _, next := range validTransitions[m.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return Miner{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return Miner{}, err
	}
	m.Status = status
	return m, nil
}

// Totals aggregates machine counts, hashrate and power draw for a customer.
// Retired machines are excluded; power is summed for billing.
func (s *Service) Totals(ctx context.Context, customerID string) (FleetTotals, error) {
	miners, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return FleetTotals{}, err
	}

	var totals FleetTotals
	for _, m := range miners {
		if m.Status == StatusRetired {
			continue
		}
		totals.Machines++
		if m.Status == StatusActive {
			totals.Active++
			totals.HashrateTHs += m.HashrateTHs
			totals.PowerWatts += m.PowerWatts
		}
	}
	return totals, nil
}
