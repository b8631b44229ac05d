package invoice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/minedesk/minedesk/internal/billing"
	"github.com/minedesk/minedesk/internal/hardware"
	"github.com/minedesk/minedesk/internal/notification"
)

// ErrAlreadyIssued indicates an invoice already exists for the customer and period.
var ErrAlreadyIssued = errors.New("invoice already issued for period")

// Rates carries the operator's billing rates in cents.
type Rates struct {
	HostingFeeCentsPerDay int64
	PowerRateCentsPerKWh  int64
}

// Service generates invoices from the hardware fleet and posts them to the
// billing ledger.
type Service struct {
	repo     Repository
	ledger   billing.Ledger
	fleet    *hardware.Service
	notifier notification.Notifier
	rates    Rates
}

// NewService constructs an invoice service.
func NewService(repo Repository, ledger billing.Ledger, fleet *hardware.Service, notifier notification.Notifier, rates Rates) *Service {
	return &Service{repo: repo, ledger: ledger, fleet: fleet, notifier: notifier, rates: rates}
}

// Generate builds and posts an invoice for one hosting period. The ledger
// charge is keyed by the invoice number, so regenerating the same period is
// rejected rather than double-billed.
func (s *Service) Generate(ctx context.Context, customerID string, periodStart, periodEnd time.Time) (Invoice, error) {
	if !periodEnd.After(periodStart) {
		return Invoice{}, fmt.Errorf("period end must be after period start")
	}

	number := invoiceNumber(customerID, periodStart)
	if _, err := s.repo.GetByNumber(ctx, number); err == nil {
		return Invoice{}, ErrAlreadyIssued
	} else if !errors.Is(err, ErrNotFound) {
		return Invoice{}, err
	}

	totals, err := s.fleet.Totals(ctx, customerID)
	if err != nil {
		return Invoice{}, err
	}
	if totals.Machines == 0 {
		return Invoice{}, fmt.Errorf("customer has no billable machines")
	}

	days := int64(periodEnd.Sub(periodStart).Hours() / 24)
	if days < 1 {
		days = 1
	}

	lines := []Line{
		{
			Description: fmt.Sprintf("Hosting fee, %d machines x %d days", totals.Machines, days),
			Quantity:    int64(totals.Machines) * days,
			UnitCents:   s.rates.HostingFeeCentsPerDay,
			AmountCents: int64(totals.Machines) * days * s.rates.HostingFeeCentsPerDay,
		},
	}

	// Power is billed on active draw: watts * 24h * days, rounded to whole kWh.
	kwh := totals.PowerWatts * 24 * days / 1000
	if kwh > 0 {
		lines = append(lines, Line{
			Description: fmt.Sprintf("Power, %d kWh @ active draw %dW", kwh, totals.PowerWatts),
			Quantity:    kwh,
			UnitCents:   s.rates.PowerRateCentsPerKWh,
			AmountCents: kwh * s.rates.PowerRateCentsPerKWh,
		})
	}

	var total int64
	for _, l := range lines {
		total += l.AmountCents
	}

	account := billing.CustomerAccountCode(customerID)
	if err := s.ledger.EnsureAccount(ctx, account); err != nil {
		return Invoice{}, err
	}
	if _, err := s.ledger.Charge(ctx, account, number, total); err != nil && !errors.Is(err, billing.ErrDuplicateTransaction) {
		return Invoice{}, err
	}

	inv := Invoice{
		ID:          uuid.New().String(),
		Number:      number,
		CustomerID:  customerID,
		PeriodStart: periodStart.UTC(),
		PeriodEnd:   periodEnd.UTC(),
		Lines:       lines,
		TotalCents:  total,
		Status:      StatusIssued,
		IssuedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return Invoice{}, err
	}

	s.notify(ctx, notification.KindInvoiceIssued, customerID,
		fmt.Sprintf("invoice %s issued for %d cents", inv.Number, inv.TotalCents))
	return inv, nil
}

// RecordPayment credits the customer account and marks the invoice paid.
func (s *Service) RecordPayment(ctx context.Context, invoiceID, paymentRef string) (Invoice, error) {
	inv, err := s.repo.Get(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status == StatusPaid {
		return inv, nil
	}

	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}
	account := billing.CustomerAccountCode(inv.CustomerID)
	if _, err := s.ledger.Credit(ctx, account, paymentRef, inv.TotalCents); err != nil && !errors.Is(err, billing.ErrDuplicateTransaction) {
		return Invoice{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkPaid(ctx, inv.ID, now); err != nil {
		return Invoice{}, err
	}
	inv.Status = StatusPaid
	inv.PaidAt = now

	s.notify(ctx, notification.KindPaymentReceived, inv.CustomerID,
		fmt.Sprintf("payment received for invoice %s", inv.Number))
	return inv, nil
}

// Get fetches a single invoice.
func (s *Service) Get(ctx context.Context, id string) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

// Balance returns the customer's receivable balance in cents.
func (s *Service) Balance(ctx context.Context, customerID string) (int64, error) {
	balance, err := s.ledger.Balance(ctx, billing.CustomerAccountCode(customerID))
	if errors.Is(err, billing.ErrUnknownAccount) {
		return 0, nil
	}
	return balance, err
}

// Page is one page of a customer's invoice history.
type Page struct {
	Invoices    []Invoice
	Total       int
	Page        int
	PerPage     int
	TotalOwed   int64
	TotalBilled int64
}

// List returns a sorted, paginated page of a customer's invoices. sortBy is
// one of issued_at (default, newest first), total, status.
func (s *Service) List(ctx context.Context, customerID string, page, perPage int, sortBy string) (Page, error) {
	invoices, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return Page{}, err
	}

	switch sortBy {
	case "total":
		sort.Slice(invoices, func(i, j int) bool { return invoices[i].TotalCents > invoices[j].TotalCents })
	case "status":
		sort.Slice(invoices, func(i, j int) bool {
			if invoices[i].Status != invoices[j].Status {
				return invoices[i].Status < invoices[j].Status
			}
			return invoices[i].IssuedAt.After(invoices[j].IssuedAt)
		})
	default:
		sort.Slice(invoices, func(i, j int) bool { return invoices[i].IssuedAt.After(invoices[j].IssuedAt) })
	}

	result := Page{Total: len(invoices), Page: page, PerPage: perPage}
	for _, inv := range invoices {
		result.TotalBilled += inv.TotalCents
		if inv.Status != StatusPaid {
			result.TotalOwed += inv.TotalCents
		}
	}

	if perPage <= 0 {
		perPage = 20
		result.PerPage = perPage
	}
	if page < 1 {
		page = 1
		result.Page = page
	}
	start := (page - 1) * perPage
	if start >= len(invoices) {
		result.Invoices = []Invoice{}
		return result, nil
	}
	end := start + perPage
	if end > len(invoices) {
		end = len(invoices)
	}
	result.Invoices = invoices[start:end]
	return result, nil
}

func (s *Service) notify(ctx context.Context, kind, customerID, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: customerID, Body: body})
}

func invoiceNumber(customerID string, periodStart time.Time) string {
	short := customerID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("INV-%s-%s", periodStart.UTC().Format("200601"), short)
}
