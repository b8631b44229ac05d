package billing

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateTransaction indicates the provided client transaction identifier
	// already exists for the posting kind, so the operation is idempotent.
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrUnknownAccount occurs when a posting references an account that was
	// never created.
	ErrUnknownAccount = errors.New("unknown account")
)

const (
	// RevenueAccountCode collects hosting and power charges.
	RevenueAccountCode = "revenue:hosting"
	// ClearingAccountCode parks received customer payments.
	ClearingAccountCode = "clearing:payments"

	kindCharge = "charge"
	kindCredit = "credit"
)

// CustomerAccountCode derives the receivable account for a customer.
func CustomerAccountCode(customerID string) string {
	return fmt.Sprintf("customer:%s", customerID)
}

// PostingResult captures the outcome of a ledger posting. AccountBalance is
// the customer's receivable balance after the posting: positive means the
// customer owes the operator.
type PostingResult struct {
	TransactionID  string
	AccountBalance int64
}

// Ledger is the contract implemented by accounting backends. All amounts are
// cents. Postings are double-entry and idempotent on (kind, clientTxID).
type Ledger interface {
	EnsureAccount(ctx context.Context, code string) error
	Balance(ctx context.Context, code string) (int64, error)
	// Charge increases what the customer owes (invoice issued).
	Charge(ctx context.Context, accountCode, clientTxID string, amount int64) (PostingResult, error)
	// Credit decreases what the customer owes (payment received).
	Credit(ctx context.Context, accountCode, clientTxID string, amount int64) (PostingResult, error)
}
