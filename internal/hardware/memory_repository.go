package hardware

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	miners map[string]Miner
}

// NewMemoryRepository builds an in-memory miner store for dev mode and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{miners: make(map[string]Miner)}
}

func (r *memoryRepository) Create(_ context.Context, m Miner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.miners[m.ID]; exists {
		return errors.New("miner exists")
	}
	r.miners[m.ID] = m
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Miner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.miners[id]
	if !ok {
		return Miner{}, ErrNotFound
	}
	return m, nil
}

func (r *memoryRepository) ListByCustomer(_ context.Context, customerID string) ([]Miner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var miners []Miner
	for _, m := range r.miners {
		if m.CustomerID == customerID {
			miners = append(miners, m)
		}
	}
	sort.Slice(miners, func(i, j int) bool {
		return miners[i].CreatedAt.Before(miners[j].CreatedAt)
	})
	return miners, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.miners[id]
	if !ok {
		return ErrNotFound
	}
	m.Status = status
	r.miners[id] = m
	return nil
}
