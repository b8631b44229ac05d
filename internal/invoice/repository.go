package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the invoice does not exist.
var ErrNotFound = errors.New("invoice not found")

// Repository persists invoices.
type Repository interface {
	Create(ctx context.Context, inv Invoice) error
	Get(ctx context.Context, id string) (Invoice, error)
	GetByNumber(ctx context.Context, number string) (Invoice, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
}

// PostgresRepository stores invoices in PostgreSQL; line items are kept as JSONB.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an invoice record.
func (r *PostgresRepository) Create(ctx context.Context, inv Invoice) error {
	invoiceID, err := uuid.Parse(inv.ID)
	if err != nil {
		return err
	}
	customerID, err := uuid.Parse(inv.CustomerID)
	if err != nil {
		return err
	}
	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO invoices (id, number, customer_id, period_start, period_end, lines, total_cents, status, issued_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		invoiceID, inv.Number, customerID, inv.PeriodStart.UTC(), inv.PeriodEnd.UTC(), lines, inv.TotalCents, inv.Status, inv.IssuedAt.UTC())
	return err
}

const selectColumns = `SELECT id, number, customer_id, period_start, period_end, lines, total_cents, status, issued_at, paid_at FROM invoices`

// Get fetches an invoice by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return Invoice{}, ErrNotFound
	}
	return scanInvoice(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, invoiceID))
}

// GetByNumber fetches an invoice by its human-facing number.
func (r *PostgresRepository) GetByNumber(ctx context.Context, number string) (Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, selectColumns+` WHERE number = $1`, number))
}

// ListByCustomer returns every invoice issued to a customer.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]Invoice, error) {
	owner, err := uuid.Parse(customerID)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	rows, err := r.db.Query(ctx, selectColumns+` WHERE customer_id = $1`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// MarkPaid records settlement of an invoice.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE invoices SET status = $1, paid_at = $2 WHERE id = $3`,
		StatusPaid, paidAt.UTC(), invoiceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (Invoice, error) {
	var (
		id         uuid.UUID
		customerID uuid.UUID
		lines      []byte
		paidAt     *time.Time
		inv        Invoice
	)
	if err := row.Scan(&id, &inv.Number, &customerID, &inv.PeriodStart, &inv.PeriodEnd, &lines, &inv.TotalCents, &inv.Status, &inv.IssuedAt, &paidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	if err := json.Unmarshal(lines, &inv.Lines); err != nil {
		return Invoice{}, err
	}
	inv.ID = id.String()
	inv.CustomerID = customerID.String()
	inv.PeriodStart = inv.PeriodStart.UTC()
	inv.PeriodEnd = inv.PeriodEnd.UTC()
	inv.IssuedAt = inv.IssuedAt.UTC()
	if paidAt != nil {
		inv.PaidAt = paidAt.UTC()
	}
	return inv, nil
}
