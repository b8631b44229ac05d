package pool

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBinanceSignatureIsFinalParameter(t *testing.T) {
	const secret = "top-secret"
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		if r.Header.Get("X-MBX-APIKEY") != "api-key" {
			t.Fatalf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"fifteenMinHashRate": "95000000000000", "dayHashRate": "90000000000000"}}`))
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, "api-key", secret)
	sample, err := client.GetHashrate(context.Background(), "BTC", "acme-01")
	if err != nil {
		t.Fatalf("get hashrate: %v", err)
	}
	if sample.CurrentTHs != 95 || sample.Avg24hTHs != 90 {
		t.Fatalf("expected H/s normalized to TH/s, got %+v", sample)
	}

	idx := strings.LastIndex(rawQuery, "&signature=")
	if idx < 0 {
		t.Fatalf("signature missing or not final: %q", rawQuery)
	}
	payload, sig := rawQuery[:idx], rawQuery[idx+len("&signature="):]
	if strings.Contains(payload, "signature=") {
		t.Fatalf("signature must appear once, at the end: %q", rawQuery)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	if sig != hex.EncodeToString(mac.Sum(nil)) {
		t.Fatalf("signature does not cover the preceding query: %q", rawQuery)
	}
}

func TestBinanceRejectsMalformedHashrate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"fifteenMinHashRate": "garbage", "dayHashRate": "1"}}`))
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, "key", "secret")
	if _, err := client.GetHashrate(context.Background(), "BTC", "acme-01"); err == nil {
		t.Fatalf("expected parse error for malformed hashrate")
	}
}

func TestBinanceMissingHashrateReadsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {}}`))
	}))
	defer srv.Close()

	client := NewBinanceClient(srv.URL, "key", "secret")
	sample, err := client.GetHashrate(context.Background(), "BTC", "acme-01")
	if err != nil {
		t.Fatalf("get hashrate: %v", err)
	}
	if sample.CurrentTHs != 0 || sample.Avg24hTHs != 0 {
		t.Fatalf("expected zero sample for absent fields, got %+v", sample)
	}
}
