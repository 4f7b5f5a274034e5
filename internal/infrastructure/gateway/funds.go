package gateway

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/openfinance/backend/internal/domain/payment"
)

// InMemoryFundsReserver tracks debtor balances and reservations in memory.
// Reservations are idempotent per reference so a retried reserve call does
// not double-hold funds.
type InMemoryFundsReserver struct {
	mu           sync.Mutex
	balances     map[string]decimal.Decimal
	reservations map[string]decimal.Decimal
	defaultLimit decimal.Decimal
}

// NewInMemoryFundsReserver creates a reserver where unseeded accounts hold
// defaultLimit
func NewInMemoryFundsReserver(defaultLimit decimal.Decimal) *InMemoryFundsReserver {
	return &InMemoryFundsReserver{
		balances:     make(map[string]decimal.Decimal),
		reservations: make(map[string]decimal.Decimal),
		defaultLimit: defaultLimit,
	}
}

// SetBalance seeds the available balance of an account
func (r *InMemoryFundsReserver) SetBalance(accountID string, balance decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[accountID] = balance
}

// Reserve holds amount on the account, reporting false when the available
// balance does not cover it
func (r *InMemoryFundsReserver) Reserve(ctx context.Context, debtorAccountID string, amount decimal.Decimal, currency, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, done := r.reservations[reference]; done {
		return true, nil
	}

	balance, ok := r.balances[debtorAccountID]
	if !ok {
		balance = r.defaultLimit
	}
	if balance.LessThan(amount) {
		return false, nil
	}

	r.balances[debtorAccountID] = balance.Sub(amount)
	r.reservations[reference] = amount
	return true, nil
}

var _ payment.FundsReserver = (*InMemoryFundsReserver)(nil)
