package wallet

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/minedesk/minedesk/internal/pool"
)

func newTestApp(client *mockPoolClient) *fiber.App {
	clock := &manualClock{now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	h := NewHandler(newTestGateway(client, clock))

	app := fiber.New()
	app.Get("/customers/:customerId/wallet/:currency/settings", h.GetSettings)
	app.Delete("/customers/:customerId/wallet/:currency/settings/cache", h.InvalidateCache)
	return app
}

func TestHandlerRateLimitedSetsRetryAfter(t *testing.T) {
	client := &mockPoolClient{err: &pool.APIError{StatusCode: 429, Message: "slow down"}}
	app := newTestApp(client)

	req := httptest.NewRequest(fiber.MethodGet, "/customers/cust-1/wallet/BTC/settings", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderRetryAfter); got != "60" {
		t.Fatalf("expected Retry-After 60, got %q", got)
	}
}

func TestHandlerUnknownCustomerIs404(t *testing.T) {
	app := newTestApp(&mockPoolClient{settings: settingsFixture("bc1qnever")})

	req := httptest.NewRequest(fiber.MethodGet, "/customers/ghost/wallet/BTC/settings", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandlerNoSubaccountIs409(t *testing.T) {
	app := newTestApp(&mockPoolClient{settings: settingsFixture("bc1qnever")})

	req := httptest.NewRequest(fiber.MethodGet, "/customers/cust-2/wallet/BTC/settings", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestHandlerUpstreamOutageIs503(t *testing.T) {
	client := &mockPoolClient{err: &pool.APIError{StatusCode: 503, Message: "maintenance"}}
	app := newTestApp(client)

	req := httptest.NewRequest(fiber.MethodGet, "/customers/cust-1/wallet/BTC/settings", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestHandlerForbiddenIs502(t *testing.T) {
	client := &mockPoolClient{err: &pool.APIError{StatusCode: 403, Message: "forbidden"}}
	app := newTestApp(client)

	req := httptest.NewRequest(fiber.MethodGet, "/customers/cust-1/wallet/BTC/settings", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestHandlerInvalidateReturns204(t *testing.T) {
	app := newTestApp(&mockPoolClient{settings: settingsFixture("bc1qfirst")})

	req := httptest.NewRequest(fiber.MethodDelete, "/customers/cust-1/wallet/BTC/settings/cache", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}
