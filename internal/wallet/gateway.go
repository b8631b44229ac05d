package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/minedesk/minedesk/internal/customer"
	"github.com/minedesk/minedesk/internal/pool"
)

const (
	// DefaultTTL bounds how long a cached payout configuration is served
	// without consulting the pool.
	DefaultTTL = 10 * time.Minute

	// rateLimitCooldown is the retry hint returned when the pool is
	// rate-limiting and no cached fallback exists.
	rateLimitCooldown = 60 * time.Second
)

// Directory maps internal customer ids to external pool subaccount names.
// Implemented by customer.Service.
type Directory interface {
	ResolveSubaccount(ctx context.Context, customerID string) (string, error)
}

type cacheEntry struct {
	settings pool.PaymentSettings
	storedAt time.Time
}

// Gateway fetches a customer's payout configuration from the pool API,
// cached per (customer, currency) key. Expired entries are kept around and
// served as a degraded response while the pool is rate-limiting; nothing
// evicts them except Invalidate or a successful refetch.
type Gateway struct {
	directory Directory
	client    pool.Client
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// Option customizes gateway construction.
type Option func(*Gateway)

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gateway) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithClock injects the time source. Tests use this to step through expiry
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGateway builds a wallet-settings gateway.
func NewGateway(directory Directory, client pool.Client, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		directory: directory,
		client:    client,
		ttl:       DefaultTTL,
		now:       time.Now,
		logger:    logger,
		entries:   make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetSettings returns the payout configuration for a customer and currency.
// A fresh cache hit answers without I/O. On a pool 429 any cached entry,
// however stale, is served instead of failing; every other upstream failure
// is translated into a typed *Error.
func (g *Gateway) GetSettings(ctx context.Context, customerID, currency string) (pool.PaymentSettings, error) {
	if customerID == "" {
		return pool.PaymentSettings{}, &Error{Kind: KindCustomerNotFound, Message: "customer id is required"}
	}
	if currency == "" {
		return pool.PaymentSettings{}, &Error{Kind: KindUpstream, Message: "currency is required"}
	}

	subaccount, err := g.directory.ResolveSubaccount(ctx, customerID)
	if err != nil {
		switch {
		case errors.Is(err, customer.ErrNotFound):
			return pool.PaymentSettings{}, &Error{Kind: KindCustomerNotFound, Message: "customer not found"}
		case errors.Is(err, customer.ErrNotConfigured):
			return pool.PaymentSettings{}, &Error{Kind: KindNoSubaccount, Message: "customer has no pool subaccount configured"}
		default:
			return pool.PaymentSettings{}, fmt.Errorf("resolve subaccount: %w", err)
		}
	}

	key := cacheKey(customerID, currency)

	g.mu.RLock()
	entry, cached := g.entries[key]
	g.mu.RUnlock()

	if cached && g.now().Sub(entry.storedAt) < g.ttl {
		return entry.settings, nil
	}

	settings, err := g.client.GetPaymentSettings(ctx, currency, subaccount)
	if err != nil {
		return g.translateFetchError(err, key, entry, cached)
	}

	g.mu.Lock()
	g.entries[key] = cacheEntry{settings: settings, storedAt: g.now()}
	g.mu.Unlock()

	return settings, nil
}

// Invalidate drops the cache entry for a customer/currency pair so the next
// GetSettings call refetches. Absent entries are a no-op.
func (g *Gateway) Invalidate(customerID, currency string) {
	g.mu.Lock()
	delete(g.entries, cacheKey(customerID, currency))
	g.mu.Unlock()
}

// translateFetchError maps pool failures onto the gateway taxonomy. The
// stale-cache fallback applies to 429 only; a 403 or 5xx is never masked by
// cached data.
func (g *Gateway) translateFetchError(err error, key string, entry cacheEntry, cached bool) (pool.PaymentSettings, error) {
	var apiErr *pool.APIError
	if !errors.As(err, &apiErr) {
		return pool.PaymentSettings{}, &Error{
			Kind:       KindUnavailable,
			Message:    "pool api unreachable",
			RetryAfter: rateLimitCooldown,
		}
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		if cached {
			g.logger.Warn("pool rate limited, serving cached wallet settings",
				"key", key, "age", g.now().Sub(entry.storedAt).String())
			return entry.settings, nil
		}
		return pool.PaymentSettings{}, &Error{
			Kind:       KindRateLimited,
			Message:    "pool api is rate limiting requests",
			RetryAfter: rateLimitCooldown,
		}
	case apiErr.StatusCode == http.StatusForbidden:
		return pool.PaymentSettings{}, &Error{Kind: KindForbidden, Message: "pool api rejected credentials"}
	case apiErr.StatusCode >= 500:
		return pool.PaymentSettings{}, &Error{
			Kind:       KindUnavailable,
			Message:    "pool api unavailable",
			RetryAfter: rateLimitCooldown,
		}
	default:
		return pool.PaymentSettings{}, &Error{Kind: KindUpstream, Message: apiErr.Message}
	}
}

func cacheKey(customerID, currency string) string {
	return fmt.Sprintf("wallet:%s:%s", customerID, currency)
}
