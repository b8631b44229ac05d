package customer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotConfigured indicates the customer exists but has no pool subaccount
// mapping yet, so pool-backed lookups cannot proceed.
var ErrNotConfigured = errors.New("no pool subaccount configured")

// ErrInvalidPortalKey indicates a portal key that does not match the stored hash.
var ErrInvalidPortalKey = errors.New("invalid portal key")

// Service manages the customer directory.
type Service struct {
	repo Repository
}

// NewService creates a customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput captures the data required to onboard a customer.
type RegisterInput struct {
	Email          string
	Name           string
	PoolSubaccount string
}

// Register onboards a new hosting customer.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Customer, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Customer{}, errors.New("valid email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return Customer{}, errors.New("name is required")
	}

	c := Customer{
		ID:             uuid.New().String(),
		Email:          email,
		Name:           strings.TrimSpace(input.Name),
		PoolSubaccount: strings.TrimSpace(input.PoolSubaccount),
		Status:         StatusActive,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// Get fetches a customer by id.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}

// SetPoolSubaccount maps the customer to its external pool subaccount.
func (s *Service) SetPoolSubaccount(ctx context.Context, id, subaccount string) error {
	subaccount = strings.TrimSpace(subaccount)
	if subaccount == "" {
		return errors.New("subaccount is required")
	}
	return s.repo.UpdateSubaccount(ctx, id, subaccount)
}

// ResolveSubaccount maps an internal customer id to the external pool
// subaccount name. Returns ErrNotFound for unknown customers and
// ErrNotConfigured when the mapping is missing.
func (s *Service) ResolveSubaccount(ctx context.Context, id string) (string, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if c.PoolSubaccount == "" {
		return "", ErrNotConfigured
	}
	return c.PoolSubaccount, nil
}

// IssuePortalKey generates a fresh portal access key, stores its bcrypt hash
// and returns the plaintext. The plaintext is shown to the customer once and
// never persisted.
func (s *Service) IssuePortalKey(ctx context.Context, id string) (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate portal key: %w", err)
	}
	key := "mdk_" + hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash portal key: %w", err)
	}

	if err := s.repo.UpdatePortalKey(ctx, id, hash); err != nil {
		return "", err
	}
	return key, nil
}

// VerifyPortalKey checks a presented portal key against the stored hash.
func (s *Service) VerifyPortalKey(ctx context.Context, id, key string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if len(c.PortalKeyHash) == 0 {
		return ErrInvalidPortalKey
	}
	if err := bcrypt.CompareHashAndPassword(c.PortalKeyHash, []byte(key)); err != nil {
		return ErrInvalidPortalKey
	}
	return nil
}
