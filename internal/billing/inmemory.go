package billing

import (
	"context"
	"errors"
	"sync"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]int64
	postings map[string]PostingResult
}

// NewInMemory creates a concurrency-safe in-memory ledger for dev mode and tests.
func NewInMemory() Ledger {
	l := &inMemoryLedger{
		balances: make(map[string]int64),
		postings: make(map[string]PostingResult),
	}
	l.balances[RevenueAccountCode] = 0
	l.balances[ClearingAccountCode] = 0
	return l
}

func (l *inMemoryLedger) EnsureAccount(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[code]; !exists {
		l.balances[code] = 0
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, code string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, exists := l.balances[code]
	if !exists {
		return 0, ErrUnknownAccount
	}
	return balance, nil
}

func (l *inMemoryLedger) Charge(_ context.Context, accountCode, clientTxID string, amount int64) (PostingResult, error) {
	return l.post(kindCharge, accountCode, RevenueAccountCode, clientTxID, amount)
}

func (l *inMemoryLedger) Credit(_ context.Context, accountCode, clientTxID string, amount int64) (PostingResult, error) {
	return l.post(kindCredit, accountCode, ClearingAccountCode, clientTxID, -amount)
}

// post moves amount onto the customer account and its negation onto the
// counter account, keeping the book balanced. A positive amount increases the
// receivable (charge), a negative one decreases it (credit).
func (l *inMemoryLedger) post(kind, accountCode, counterCode, clientTxID string, amount int64) (PostingResult, error) {
	if amount == 0 {
		return PostingResult{}, errors.New("amount must be non-zero")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := kind + ":" + clientTxID
	if res, exists := l.postings[key]; exists {
		return res, ErrDuplicateTransaction
	}

	balance, ok := l.balances[accountCode]
	if !ok {
		return PostingResult{}, ErrUnknownAccount
	}

	balance += amount
	l.balances[accountCode] = balance
	l.balances[counterCode] -= amount

	res := PostingResult{TransactionID: key, AccountBalance: balance}
	l.postings[key] = res
	return res, nil
}
