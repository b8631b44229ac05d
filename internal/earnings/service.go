package earnings

import (
	"context"
	"sort"
	"strings"

	"github.com/minedesk/minedesk/internal/pool"
)

// Directory maps internal customer ids to external pool subaccount names.
type Directory interface {
	ResolveSubaccount(ctx context.Context, customerID string) (string, error)
}

// Summary aggregates a customer's recent mining performance.
type Summary struct {
	Currency        string
	SubaccountID    string
	HashrateTHs     float64
	Avg24hTHs       float64
	Days            int
	TotalRevenue    int64
	AvgDailyRevenue int64
	Revenue         []pool.DailyRevenue
}

// WorkerPage is one page of the customer's worker list.
type WorkerPage struct {
	Workers  []pool.Worker
	Total    int
	Active   int
	Inactive int
	Page     int
	PerPage  int
}

// Service proxies pool statistics for customer dashboards.
type Service struct {
	directory Directory
	client    pool.Client
}

// NewService constructs an earnings service.
func NewService(directory Directory, client pool.Client) *Service {
	return &Service{directory: directory, client: client}
}

// GetSummary fetches hashrate and revenue from the pool and aggregates
// totals for the trailing period.
func (s *Service) GetSummary(ctx context.Context, customerID, currency string, days int) (Summary, error) {
	if days <= 0 || days > 90 {
		days = 30
	}

	subaccount, err := s.directory.ResolveSubaccount(ctx, customerID)
	if err != nil {
		return Summary{}, err
	}

	hashrate, err := s.client.GetHashrate(ctx, currency, subaccount)
	if err != nil {
		return Summary{}, err
	}
	revenue, err := s.client.GetRevenue(ctx, currency, subaccount, days)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Currency:     currency,
		SubaccountID: subaccount,
		HashrateTHs:  hashrate.CurrentTHs,
		Avg24hTHs:    hashrate.Avg24hTHs,
		Days:         days,
		Revenue:      revenue,
	}
	for _, day := range revenue {
		summary.TotalRevenue += day.Amount
	}
	if len(revenue) > 0 {
		summary.AvgDailyRevenue = summary.TotalRevenue / int64(len(revenue))
	}
	return summary, nil
}

// ListWorkers fetches the pool worker list, then sorts and paginates it.
// sortBy is one of hashrate (default, descending), name, active.
func (s *Service) ListWorkers(ctx context.Context, customerID, currency string, page, perPage int, sortBy string) (WorkerPage, error) {
	subaccount, err := s.directory.ResolveSubaccount(ctx, customerID)
	if err != nil {
		return WorkerPage{}, err
	}

	workers, err := s.client.GetWorkers(ctx, currency, subaccount)
	if err != nil {
		return WorkerPage{}, err
	}

	switch sortBy {
	case "name":
		sort.Slice(workers, func(i, j int) bool {
			return strings.ToLower(workers[i].Name) < strings.ToLower(workers[j].Name)
		})
	case "active":
		sort.Slice(workers, func(i, j int) bool {
			if workers[i].Active != workers[j].Active {
				return workers[i].Active
			}
			return workers[i].HashrateTHs > workers[j].HashrateTHs
		})
	default:
		sort.Slice(workers, func(i, j int) bool { return workers[i].HashrateTHs > workers[j].HashrateTHs })
	}

	result := WorkerPage{Total: len(workers), Page: page, PerPage: perPage}
	for _, w := range workers {
		if w.Active {
			result.Active++
		} else {
			result.Inactive++
		}
	}

	if perPage <= 0 {
		perPage = 50
		result.PerPage = perPage
	}
	if page < 1 {
		page = 1
		result.Page = page
	}
	start := (page - 1) * perPage
	if start >= len(workers) {
		result.Workers = []pool.Worker{}
		return result, nil
	}
	end := start + perPage
	if end > len(workers) {
		end = len(workers)
	}
	result.Workers = workers[start:end]
	return result, nil
}
