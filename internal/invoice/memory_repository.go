package invoice

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	invoices map[string]Invoice
}

// NewMemoryRepository builds an in-memory invoice store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{invoices: make(map[string]Invoice)}
}

func (r *memoryRepository) Create(_ context.Context, inv Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.Number == inv.Number {
			return errors.New("invoice number exists")
		}
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (r *memoryRepository) GetByNumber(_ context.Context, number string) (Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.Number == number {
			return inv, nil
		}
	}
	return Invoice{}, ErrNotFound
}

func (r *memoryRepository) ListByCustomer(_ context.Context, customerID string) ([]Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var invoices []Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			invoices = append(invoices, inv)
		}
	}
	return invoices, nil
}

func (r *memoryRepository) MarkPaid(_ context.Context, id string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return ErrNotFound
	}
	inv.Status = StatusPaid
	inv.PaidAt = paidAt
	r.invoices[id] = inv
	return nil
}
