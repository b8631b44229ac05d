package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists billing entries in PostgreSQL ensuring double-entry balance.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureAccount guarantees an account exists for the provided code.
func (l *PostgresLedger) EnsureAccount(ctx context.Context, code string) error {
	_, err := l.db.Exec(ctx, `INSERT INTO billing_accounts (id, code) VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code)
	return err
}

// Balance returns the summed balance for the specified account code. The
// account lookup runs separately from the aggregate so an unknown account is
// reported as such instead of summing zero rows to 0.
func (l *PostgresLedger) Balance(ctx context.Context, code string) (int64, error) {
	var accountID uuid.UUID
	if err := l.db.QueryRow(ctx, `SELECT id FROM billing_accounts WHERE code = $1`, code).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUnknownAccount
		}
		return 0, err
	}

	var balance int64
	if err := l.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM billing_entries WHERE account_id = $1`, accountID).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Charge increases the customer's receivable balance.
func (l *PostgresLedger) Charge(ctx context.Context, accountCode, clientTxID string, amount int64) (PostingResult, error) {
	return l.post(ctx, kindCharge, accountCode, RevenueAccountCode, clientTxID, amount)
}

// Credit decreases the customer's receivable balance.
func (l *PostgresLedger) Credit(ctx context.Context, accountCode, clientTxID string, amount int64) (PostingResult, error) {
	return l.post(ctx, kindCredit, accountCode, ClearingAccountCode, clientTxID, -amount)
}

func (l *PostgresLedger) post(ctx context.Context, kind, accountCode, counterCode, clientTxID string, amount int64) (PostingResult, error) {
	if amount == 0 {
		return PostingResult{}, fmt.Errorf("amount must be non-zero")
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PostingResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Counter accounts (revenue, clearing) are system-owned; create lazily.
	if _, err := tx.Exec(ctx, `INSERT INTO billing_accounts (id, code) VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), counterCode); err != nil {
		return PostingResult{}, err
	}

	const accountQuery = `SELECT id FROM billing_accounts WHERE code = $1 FOR UPDATE`

	var accountID uuid.UUID
	if err := tx.QueryRow(ctx, accountQuery, accountCode).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostingResult{}, fmt.Errorf("%w: %s", ErrUnknownAccount, accountCode)
		}
		return PostingResult{}, err
	}

	var counterID uuid.UUID
	if err := tx.QueryRow(ctx, accountQuery, counterCode).Scan(&counterID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostingResult{}, fmt.Errorf("%w: %s", ErrUnknownAccount, counterCode)
		}
		return PostingResult{}, err
	}

	const existingQuery = `SELECT id FROM billing_transactions WHERE client_tx_id = $1 AND kind = $2`
	var existingID uuid.UUID
	if err := tx.QueryRow(ctx, existingQuery, clientTxID, kind).Scan(&existingID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return PostingResult{}, err
		}
	} else {
		balance, err := balanceForAccount(ctx, tx, accountID)
		if err != nil {
			return PostingResult{}, err
		}
		return PostingResult{TransactionID: existingID.String(), AccountBalance: balance}, ErrDuplicateTransaction
	}

	txID := uuid.New()
	if _, err := tx.Exec(ctx, `INSERT INTO billing_transactions (id, client_tx_id, kind) VALUES ($1, $2, $3)`,
		txID, clientTxID, kind); err != nil {
		return PostingResult{}, err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO billing_entries (id, transaction_id, account_id, amount) VALUES ($1, $2, $3, $4)`,
		uuid.New(), txID, accountID, amount); err != nil {
		return PostingResult{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO billing_entries (id, transaction_id, account_id, amount) VALUES ($1, $2, $3, $4)`,
		uuid.New(), txID, counterID, -amount); err != nil {
		return PostingResult{}, err
	}

	balance, err := balanceForAccount(ctx, tx, accountID)
	if err != nil {
		return PostingResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PostingResult{}, err
	}

	return PostingResult{TransactionID: txID.String(), AccountBalance: balance}, nil
}

func balanceForAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM billing_entries WHERE account_id = $1`, accountID).Scan(&balance)
	return balance, err
}
