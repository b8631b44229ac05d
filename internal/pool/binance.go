package pool

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const binanceRequestTimeout = 15 * time.Second

// BinanceClient talks to the Binance mining API. Every request carries the
// API key header plus an HMAC-SHA256 signature over the query string.
type BinanceClient struct {
	baseURL string
	apiKey  string
	secret  []byte
	http    *http.Client
	now     func() time.Time
}

// NewBinanceClient builds a Binance mining connector.
func NewBinanceClient(baseURL, apiKey, apiSecret string) *BinanceClient {
	return &BinanceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		secret:  []byte(apiSecret),
		http:    &http.Client{Timeout: binanceRequestTimeout},
		now:     time.Now,
	}
}

// GetPaymentSettings fetches payout configuration for a mining account.
func (c *BinanceClient) GetPaymentSettings(ctx context.Context, currency, subaccount string) (PaymentSettings, error) {
	var out struct {
		Data struct {
			Accounts []struct {
				WalletAddress string  `json:"walletAddress"`
				Proportion    float64 `json:"proportion"`
			} `json:"accounts"`
			PayCycle    string `json:"payCycle"`
			NextPayTime int64  `json:"nextPayTime"`
		} `json:"data"`
	}
	query := url.Values{"algo": {algoForCurrency(currency)}, "userName": {subaccount}}
	if err := c.get(ctx, "/sapi/v1/mining/payment/config", query, &out); err != nil {
		return PaymentSettings{}, err
	}

	settings := PaymentSettings{Frequency: out.Data.PayCycle}
	for _, a := range out.Data.Accounts {
		settings.Addresses = append(settings.Addresses, PayoutAddress{
			Address:           a.WalletAddress,
			AllocationPercent: a.Proportion * 100,
		})
	}
	if out.Data.NextPayTime > 0 {
		settings.NextPayoutAt = time.UnixMilli(out.Data.NextPayTime).UTC()
	}
	return settings, nil
}

// GetHashrate returns current and day-average hashrate for a mining account.
func (c *BinanceClient) GetHashrate(ctx context.Context, currency, subaccount string) (HashrateSample, error) {
	var out struct {
		Data struct {
			Hashrate15m string `json:"fifteenMinHashRate"`
			HashrateDay string `json:"dayHashRate"`
		} `json:"data"`
	}
	query := url.Values{"algo": {algoForCurrency(currency)}, "userName": {subaccount}}
	if err := c.get(ctx, "/sapi/v1/mining/statistics/user/status", query, &out); err != nil {
		return HashrateSample{}, err
	}
	current, err := parseHashrate("fifteenMinHashRate", out.Data.Hashrate15m)
	if err != nil {
		return HashrateSample{}, err
	}
	day, err := parseHashrate("dayHashRate", out.Data.HashrateDay)
	if err != nil {
		return HashrateSample{}, err
	}
	// Binance reports H/s; normalize to TH/s.
	return HashrateSample{CurrentTHs: current / 1e12, Avg24hTHs: day / 1e12}, nil
}

// GetRevenue returns per-day mined revenue for the trailing period.
func (c *BinanceClient) GetRevenue(ctx context.Context, currency, subaccount string, days int) ([]DailyRevenue, error) {
	var out struct {
		Data struct {
			AccountProfits []struct {
				Time         int64   `json:"time"`
				ProfitAmount float64 `json:"profitAmount"`
				DayHashRate  float64 `json:"dayHashRate"`
			} `json:"accountProfits"`
		} `json:"data"`
	}
	query := url.Values{
		"algo":     {algoForCurrency(currency)},
		"userName": {subaccount},
		"pageSize": {strconv.Itoa(days)},
	}
	if err := c.get(ctx, "/sapi/v1/mining/payment/list", query, &out); err != nil {
		return nil, err
	}
	revenue := make([]DailyRevenue, 0, len(out.Data.AccountProfits))
	for _, p := range out.Data.AccountProfits {
		revenue = append(revenue, DailyRevenue{
			Date:    time.UnixMilli(p.Time).UTC().Format("2006-01-02"),
			Amount:  int64(p.ProfitAmount * 1e8),
			HashTHs: p.DayHashRate / 1e12,
		})
	}
	return revenue, nil
}

// GetWorkers lists the pool-visible workers for a mining account.
func (c *BinanceClient) GetWorkers(ctx context.Context, currency, subaccount string) ([]Worker, error) {
	var out struct {
		Data struct {
			WorkerDatas []struct {
				WorkerName string  `json:"workerName"`
				HashRate   float64 `json:"hashRate"`
				Status     int     `json:"status"`
				LastShare  int64   `json:"lastShareTime"`
			} `json:"workerDatas"`
		} `json:"data"`
	}
	query := url.Values{"algo": {algoForCurrency(currency)}, "userName": {subaccount}}
	if err := c.get(ctx, "/sapi/v1/mining/worker/list", query, &out); err != nil {
		return nil, err
	}
	workers := make([]Worker, 0, len(out.Data.WorkerDatas))
	for _, w := range out.Data.WorkerDatas {
		worker := Worker{
			Name:        w.WorkerName,
			HashrateTHs: w.HashRate / 1e12,
			Active:      w.Status == 1,
		}
		if w.LastShare > 0 {
			worker.LastShareAt = time.UnixMilli(w.LastShare).UTC()
		}
		workers = append(workers, worker)
	}
	return workers, nil
}

func (c *BinanceClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	// The signature goes last, computed over everything before it.
	encoded := query.Encode()
	encoded += "&signature=" + c.sign(encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+encoded, nil)
	if err != nil {
		return fmt.Errorf("build binance request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("binance request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read binance response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode binance response: %w", err)
	}
	return nil
}

func (c *BinanceClient) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// parseHashrate decodes Binance's string-typed hashrate fields. A missing
// field reads as zero; a malformed one is an error, never a silent zero.
func parseHashrate(field, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return v, nil
}

func algoForCurrency(currency string) string {
	switch strings.ToUpper(currency) {
	case "LTC", "DOGE":
		return "scrypt"
	case "ETC":
		return "ethash"
	default:
		return "sha256"
	}
}
