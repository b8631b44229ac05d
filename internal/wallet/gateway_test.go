package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minedesk/minedesk/internal/customer"
	"github.com/minedesk/minedesk/internal/logging"
	"github.com/minedesk/minedesk/internal/pool"
)

type stubDirectory struct {
	subaccounts map[string]string
	err         error
}

func (d *stubDirectory) ResolveSubaccount(_ context.Context, customerID string) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	sub, ok := d.subaccounts[customerID]
	if !ok {
		return "", customer.ErrNotFound
	}
	if sub == "" {
		return "", customer.ErrNotConfigured
	}
	return sub, nil
}

type mockPoolClient struct {
	pool.Client

	calls    int
	settings pool.PaymentSettings
	err      error
}

func (m *mockPoolClient) GetPaymentSettings(_ context.Context, _, _ string) (pool.PaymentSettings, error) {
	m.calls++
	if m.err != nil {
		return pool.PaymentSettings{}, m.err
	}
	return m.settings, nil
}

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestGateway(client *mockPoolClient, clock *manualClock) *Gateway {
	dir := &stubDirectory{subaccounts: map[string]string{
		"cust-1": "acme-01",
		"cust-2": "",
	}}
	return NewGateway(dir, client, logging.Discard(), WithClock(clock.Now))
}

func settingsFixture(address string) pool.PaymentSettings {
	return pool.PaymentSettings{
		Addresses: []pool.PayoutAddress{{Address: address, AllocationPercent: 100}},
		Frequency: "daily",
	}
}

func TestGetSettingsServedFromFreshCache(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qfirst")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	first, err := gw.GetSettings(ctx, "cust-1", "BTC")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}

	clock.Advance(9 * time.Minute)

	second, err := gw.GetSettings(ctx, "cust-1", "BTC")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	if client.calls != 1 {
		t.Fatalf("expected 1 pool call, got %d", client.calls)
	}
	if first.Addresses[0].Address != second.Addresses[0].Address {
		t.Fatalf("cache returned different value: %v vs %v", first, second)
	}
}

func TestGetSettingsRefetchesAfterExpiry(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qfirst")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("first get: %v", err)
	}

	clock.Advance(10 * time.Minute)

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 pool calls after expiry, got %d", client.calls)
	}
}

func TestGetSettingsServesStaleOnRateLimit(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qcached")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	clock.Advance(30 * time.Minute)
	client.err = &pool.APIError{StatusCode: 429, Message: "slow down"}

	settings, err := gw.GetSettings(ctx, "cust-1", "BTC")
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if settings.Addresses[0].Address != "bc1qcached" {
		t.Fatalf("expected cached settings, got %+v", settings)
	}
}

func TestGetSettingsRateLimitedWithoutCache(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{err: &pool.APIError{StatusCode: 429, Message: "slow down"}}
	gw := newTestGateway(client, clock)

	_, err := gw.GetSettings(context.Background(), "cust-1", "BTC")
	if KindOf(err) != KindRateLimited {
		t.Fatalf("expected KindRateLimited, got %v", err)
	}
	if !IsRetryable(err) {
		t.Fatalf("rate limited should be retryable")
	}

	var gerr *Error
	if !errors.As(err, &gerr) || gerr.RetryAfter != 60*time.Second {
		t.Fatalf("expected 60s retry hint, got %v", err)
	}
}

func TestForbiddenIsNeverMaskedByCache(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qcached")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	clock.Advance(30 * time.Minute)
	client.err = &pool.APIError{StatusCode: 403, Message: "forbidden"}

	_, err := gw.GetSettings(ctx, "cust-1", "BTC")
	if KindOf(err) != KindForbidden {
		t.Fatalf("expected KindForbidden despite stale cache, got %v", err)
	}
	if IsRetryable(err) {
		t.Fatalf("forbidden must not be retryable")
	}
}

func TestServerErrorNotMaskedByCache(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qcached")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	clock.Advance(30 * time.Minute)
	client.err = &pool.APIError{StatusCode: 503, Message: "maintenance"}

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); KindOf(err) != KindUnavailable {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestInvalidateForcesRefetchAndOverwrite(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qfirst")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("first get: %v", err)
	}

	gw.Invalidate("cust-1", "BTC")
	client.settings = settingsFixture("bc1qsecond")

	settings, err := gw.GetSettings(ctx, "cust-1", "BTC")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected exactly 2 pool calls, got %d", client.calls)
	}
	if settings.Addresses[0].Address != "bc1qsecond" {
		t.Fatalf("expected refreshed settings, got %+v", settings)
	}

	// The overwrite must now be the cached value.
	again, err := gw.GetSettings(ctx, "cust-1", "BTC")
	if err != nil {
		t.Fatalf("third get: %v", err)
	}
	if client.calls != 2 || again.Addresses[0].Address != "bc1qsecond" {
		t.Fatalf("expected cache hit on overwritten value, calls=%d settings=%+v", client.calls, again)
	}
}

func TestInvalidateAbsentEntryIsNoop(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	gw := newTestGateway(&mockPoolClient{}, clock)

	gw.Invalidate("cust-1", "BTC")
	gw.Invalidate("cust-1", "BTC")
}

func TestUnconfiguredCustomerShortCircuits(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qnever")}
	gw := newTestGateway(client, clock)

	_, err := gw.GetSettings(context.Background(), "cust-2", "BTC")
	if KindOf(err) != KindNoSubaccount {
		t.Fatalf("expected KindNoSubaccount, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("pool client must not be called, got %d calls", client.calls)
	}
}

func TestUnknownCustomer(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{}
	gw := newTestGateway(client, clock)

	_, err := gw.GetSettings(context.Background(), "ghost", "BTC")
	if KindOf(err) != KindCustomerNotFound {
		t.Fatalf("expected KindCustomerNotFound, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("pool client must not be called, got %d calls", client.calls)
	}
}

func TestTransportErrorTranslated(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{err: errors.New("dial tcp: i/o timeout")}
	gw := newTestGateway(client, clock)

	_, err := gw.GetSettings(context.Background(), "cust-1", "BTC")
	if KindOf(err) != KindUnavailable {
		t.Fatalf("expected KindUnavailable for transport error, got %v", err)
	}

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if gerr.Message == "dial tcp: i/o timeout" {
		t.Fatalf("raw transport error leaked across the boundary")
	}
}

func TestCacheKeysAreIndependentPerCurrency(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	client := &mockPoolClient{settings: settingsFixture("bc1qbtc")}
	gw := newTestGateway(client, clock)
	ctx := context.Background()

	if _, err := gw.GetSettings(ctx, "cust-1", "BTC"); err != nil {
		t.Fatalf("btc get: %v", err)
	}
	if _, err := gw.GetSettings(ctx, "cust-1", "LTC"); err != nil {
		t.Fatalf("ltc get: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected one call per currency, got %d", client.calls)
	}
}
