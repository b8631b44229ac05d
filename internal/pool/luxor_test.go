package pool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLuxorGetPaymentSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pool/wallet-settings/BTC/acme-01" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Fatalf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"wallet_addresses": [
				{"address": "bc1qexample", "allocation": 80},
				{"address": "bc1qbackup", "allocation": 20}
			],
			"payout_frequency": "daily",
			"next_payout_time": "2026-03-01T00:00:00Z"
		}`))
	}))
	defer srv.Close()

	client := NewLuxorClient(srv.URL, "test-key")
	settings, err := client.GetPaymentSettings(context.Background(), "BTC", "acme-01")
	if err != nil {
		t.Fatalf("get payment settings: %v", err)
	}
	if len(settings.Addresses) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(settings.Addresses))
	}
	if settings.Addresses[0].Address != "bc1qexample" || settings.Addresses[0].AllocationPercent != 80 {
		t.Fatalf("unexpected first address: %+v", settings.Addresses[0])
	}
	if settings.Frequency != "daily" {
		t.Fatalf("expected daily frequency, got %s", settings.Frequency)
	}
	if settings.NextPayoutAt.IsZero() {
		t.Fatalf("expected parsed next payout time")
	}
}

func TestLuxorErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewLuxorClient(srv.URL, "test-key")
	_, err := client.GetPaymentSettings(context.Background(), "BTC", "acme-01")
	if err == nil {
		t.Fatalf("expected error for 429 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "rate limit exceeded" {
		t.Fatalf("unexpected upstream message %q", apiErr.Message)
	}
}

func TestLuxorErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewLuxorClient(srv.URL, "test-key")
	_, err := client.GetWorkers(context.Background(), "BTC", "acme-01")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream exploded" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
