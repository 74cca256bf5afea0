// Package token declares the collaborator token-module interface the ledger
// drives for currency debits and reward payouts, plus an in-memory
// implementation used by tests and local deployments.
//
// The token's own transfer-tax, burn and LP mechanics are out of scope; the
// ledger only ever calls the two primitives below, synchronously, and the
// collaborator must never call back into the ledger.
package token

import (
	"context"
	"errors"
	"sync"

	"github.com/xraph/stakeledger/types"
)

// ErrInsufficientBalance is returned by PullPayment when the payer cannot
// cover the requested amount.
var ErrInsufficientBalance = errors.New("token: insufficient balance")

// Module is the collaborator surface consumed by the ledger.
type Module interface {
	// MintOrTransfer delivers amount of reward token to the recipient,
	// minting when the treasury cannot cover it.
	MintOrTransfer(ctx context.Context, to string, amount types.Amount) error

	// PullPayment debits amount of stake currency from the payer.
	PullPayment(ctx context.Context, from string, amount types.Amount) error
}

// Memory is an in-process token module tracking currency and reward-token
// balances per account. It also exposes an LP reserve pair so the oracle can
// be pointed at it in tests.
type Memory struct {
	mu       sync.RWMutex
	currency map[string]types.Amount
	reward   map[string]types.Amount
	minted   types.Amount

	reserveCurrency types.Amount
	reserveToken    types.Amount
}

// NewMemory creates an empty in-memory token module.
func NewMemory() *Memory {
	return &Memory{
		currency: make(map[string]types.Amount),
		reward:   make(map[string]types.Amount),
	}
}

// Credit funds an account with stake currency.
func (m *Memory) Credit(account string, amount types.Amount) {
	m.mu.Lock()
	m.currency[account] = m.currency[account].Add(amount)
	m.mu.Unlock()
}

// CurrencyBalance returns the stake-currency balance of an account.
func (m *Memory) CurrencyBalance(account string) types.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currency[account]
}

// RewardBalance returns the reward-token balance of an account.
func (m *Memory) RewardBalance(account string) types.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reward[account]
}

// TotalMinted returns the cumulative reward token minted.
func (m *Memory) TotalMinted() types.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.minted
}

// MintOrTransfer implements Module. The memory module always mints.
func (m *Memory) MintOrTransfer(_ context.Context, to string, amount types.Amount) error {
	if amount.IsNegative() {
		return errors.New("token: negative mint amount")
	}
	m.mu.Lock()
	m.reward[to] = m.reward[to].Add(amount)
	m.minted = m.minted.Add(amount)
	m.mu.Unlock()
	return nil
}

// PullPayment implements Module.
func (m *Memory) PullPayment(_ context.Context, from string, amount types.Amount) error {
	if amount.IsNegative() {
		return errors.New("token: negative pull amount")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.currency[from]
	if bal.LessThan(amount) {
		return ErrInsufficientBalance
	}
	m.currency[from] = bal.Sub(amount)
	return nil
}

// SetReserves installs the LP reserve pair reported to the oracle.
func (m *Memory) SetReserves(currency, token types.Amount) {
	m.mu.Lock()
	m.reserveCurrency = currency
	m.reserveToken = token
	m.mu.Unlock()
}

// Reserves implements oracle.ReservePair.
func (m *Memory) Reserves(_ context.Context) (types.Amount, types.Amount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reserveCurrency, m.reserveToken, nil
}
