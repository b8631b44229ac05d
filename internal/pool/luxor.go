package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const luxorRequestTimeout = 15 * time.Second

// LuxorClient talks to the Luxor pool REST API using a static API key.
type LuxorClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewLuxorClient builds a Luxor connector. baseURL must not have a trailing slash.
func NewLuxorClient(baseURL, apiKey string) *LuxorClient {
	return &LuxorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: luxorRequestTimeout},
	}
}

// GetPaymentSettings fetches the payout configuration for a subaccount.
func (c *LuxorClient) GetPaymentSettings(ctx context.Context, currency, subaccount string) (PaymentSettings, error) {
	var out struct {
		Addresses []struct {
			Address    string  `json:"address"`
			Allocation float64 `json:"allocation"`
		} `json:"wallet_addresses"`
		PayoutFrequency string `json:"payout_frequency"`
		NextPayoutTime  string `json:"next_payout_time"`
	}
	path := fmt.Sprintf("/pool/wallet-settings/%s/%s", url.PathEscape(currency), url.PathEscape(subaccount))
	if err := c.get(ctx, path, nil, &out); err != nil {
		return PaymentSettings{}, err
	}

	settings := PaymentSettings{Frequency: out.PayoutFrequency}
	for _, a := range out.Addresses {
		settings.Addresses = append(settings.Addresses, PayoutAddress{
			Address:           a.Address,
			AllocationPercent: a.Allocation,
		})
	}
	if out.NextPayoutTime != "" {
		if t, err := time.Parse(time.RFC3339, out.NextPayoutTime); err == nil {
			settings.NextPayoutAt = t
		}
	}
	return settings, nil
}

// GetHashrate returns current and 24h-average hashrate for a subaccount.
func (c *LuxorClient) GetHashrate(ctx context.Context, currency, subaccount string) (HashrateSample, error) {
	var out struct {
		HashrateTHs    float64 `json:"hashrate_ths"`
		Hashrate24hTHs float64 `json:"hashrate_24h_ths"`
	}
	path := fmt.Sprintf("/pool/hashrate/%s/%s", url.PathEscape(currency), url.PathEscape(subaccount))
	if err := c.get(ctx, path, nil, &out); err != nil {
		return HashrateSample{}, err
	}
	return HashrateSample{CurrentTHs: out.HashrateTHs, Avg24hTHs: out.Hashrate24hTHs}, nil
}

// GetRevenue returns per-day mined revenue for the trailing period.
func (c *LuxorClient) GetRevenue(ctx context.Context, currency, subaccount string, days int) ([]DailyRevenue, error) {
	var out struct {
		Revenue []struct {
			Date        string  `json:"date"`
			Amount      int64   `json:"amount_sats"`
			HashrateTHs float64 `json:"hashrate_ths"`
		} `json:"revenue"`
	}
	path := fmt.Sprintf("/pool/revenue/%s/%s", url.PathEscape(currency), url.PathEscape(subaccount))
	query := url.Values{"days": {strconv.Itoa(days)}}
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	revenue := make([]DailyRevenue, 0, len(out.Revenue))
	for _, r := range out.Revenue {
		revenue = append(revenue, DailyRevenue{Date: r.Date, Amount: r.Amount, HashTHs: r.HashrateTHs})
	}
	return revenue, nil
}

// GetWorkers lists the pool-visible workers for a subaccount.
func (c *LuxorClient) GetWorkers(ctx context.Context, currency, subaccount string) ([]Worker, error) {
	var out struct {
		Workers []struct {
			Name        string  `json:"name"`
			HashrateTHs float64 `json:"hashrate_ths"`
			Status      string  `json:"status"`
			LastShare   string  `json:"last_share_time"`
		} `json:"workers"`
	}
	path := fmt.Sprintf("/pool/workers/%s/%s", url.PathEscape(currency), url.PathEscape(subaccount))
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	workers := make([]Worker, 0, len(out.Workers))
	for _, w := range out.Workers {
		worker := Worker{
			Name:        w.Name,
			HashrateTHs: w.HashrateTHs,
			Active:      strings.EqualFold(w.Status, "active"),
		}
		if w.LastShare != "" {
			if t, err := time.Parse(time.RFC3339, w.LastShare); err == nil {
				worker.LastShareAt = t
			}
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

func (c *LuxorClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build luxor request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("luxor request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read luxor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode luxor response: %w", err)
	}
	return nil
}

// upstreamMessage extracts a short human-readable message from an error body,
// falling back to the raw body when it is not the usual JSON envelope.
func upstreamMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	if msg == "" {
		msg = "no response body"
	}
	return msg
}
