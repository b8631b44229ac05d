package middleware

import (
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestUpstreamRateLimitCapsRequests(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Get("/customers/:customerId/earnings", UpstreamRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(fiber.MethodGet, "/customers/cust-1/earnings", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		statuses = append(statuses, resp.StatusCode)
	}

	if statuses[0] != fiber.StatusOK || statuses[1] != fiber.StatusOK {
		t.Fatalf("first two requests should pass, got %v", statuses)
	}
	if statuses[2] != fiber.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %v", statuses)
	}
}

func TestUpstreamRateLimitIsPerCustomer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Get("/customers/:customerId/earnings", UpstreamRateLimit(cache, 1), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	for _, id := range []string{"cust-1", "cust-2"} {
		req := httptest.NewRequest(fiber.MethodGet, "/customers/"+id+"/earnings", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected independent budgets, got %d for %s", resp.StatusCode, id)
		}
	}
}

func TestUpstreamRateLimitWithoutRedisFailsOpen(t *testing.T) {
	app := fiber.New()
	app.Get("/customers/:customerId/earnings", UpstreamRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(fiber.MethodGet, "/customers/cust-1/earnings", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected fail-open without redis, got %d", resp.StatusCode)
		}
	}
}
