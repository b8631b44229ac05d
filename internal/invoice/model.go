package invoice

import "time"

const (
	// StatusIssued — generated and awaiting payment.
	StatusIssued = "issued"
	// StatusPaid — settled in full.
	StatusPaid = "paid"
)

// Line is a single billable item on an invoice. Amounts are cents.
type Line struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitCents   int64  `json:"unit_cents"`
	AmountCents int64  `json:"amount_cents"`
}

// Invoice bills a customer for one hosting period.
type Invoice struct {
	ID          string
	Number      string
	CustomerID  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Lines       []Line
	TotalCents  int64
	Status      string
	IssuedAt    time.Time
	PaidAt      time.Time
}
