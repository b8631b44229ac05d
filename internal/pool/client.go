package pool

import (
	"context"
	"fmt"
	"time"
)

// PayoutAddress is a single destination receiving a share of mining revenue.
type PayoutAddress struct {
	Address           string  `json:"address"`
	AllocationPercent float64 `json:"allocation_percent"`
}

// PaymentSettings is the payout configuration held by the pool for a
// subaccount/currency pair. MineDesk caches and forwards it without
// interpreting the fields.
type PaymentSettings struct {
	Addresses    []PayoutAddress `json:"addresses"`
	Frequency    string          `json:"frequency"`
	NextPayoutAt time.Time       `json:"next_payout_at"`
}

// HashrateSample reports current and day-average hashrate in TH/s.
type HashrateSample struct {
	CurrentTHs float64 `json:"current_ths"`
	Avg24hTHs  float64 `json:"avg_24h_ths"`
}

// DailyRevenue is one day of mined revenue in the smallest currency unit
// (satoshi for BTC).
type DailyRevenue struct {
	Date    string  `json:"date"`
	Amount  int64   `json:"amount"`
	HashTHs float64 `json:"hashrate_ths"`
}

// Worker describes a single mining machine as seen by the pool.
type Worker struct {
	Name        string    `json:"name"`
	HashrateTHs float64   `json:"hashrate_ths"`
	Active      bool      `json:"active"`
	LastShareAt time.Time `json:"last_share_at"`
}

// APIError is the typed error raised for any non-success pool API response.
// StatusCode carries the upstream HTTP status; transport-level failures are
// returned as plain errors, not APIErrors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pool api: status %d: %s", e.StatusCode, e.Message)
}

// Client is the contract implemented by pool API connectors (Luxor, Binance).
type Client interface {
	GetPaymentSettings(ctx context.Context, currency, subaccount string) (PaymentSettings, error)
	GetHashrate(ctx context.Context, currency, subaccount string) (HashrateSample, error)
	GetRevenue(ctx context.Context, currency, subaccount string, days int) ([]DailyRevenue, error)
	GetWorkers(ctx context.Context, currency, subaccount string) ([]Worker, error)
}
