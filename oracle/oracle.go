// Package oracle supplies the reward-token exchange rate used at settlement
// time. The canonical source is a liquidity-pool reserve pair exposed by the
// collaborator token module; a fixed oracle covers administered pricing and
// tests.
package oracle

import (
	"context"
	"errors"
	"sync"

	"github.com/xraph/stakeledger/types"
)

// ErrNoLiquidity is returned when a reserve pair cannot yield a price.
var ErrNoLiquidity = errors.New("oracle: pool has no liquidity")

// PriceOracle reads the current exchange rate: reward token per unit of
// stake currency, 18-decimal fixed point. Implementations must be
// synchronous and side-effect-free with respect to ledger state.
type PriceOracle interface {
	CurrentPrice(ctx context.Context) (types.Amount, error)
}

// ReservePair reads the liquidity-pool reserves backing the LP oracle:
// stake-currency reserve and reward-token reserve, in that order.
type ReservePair interface {
	Reserves(ctx context.Context) (currency, token types.Amount, err error)
}

// LP derives the price from a liquidity-pool reserve pair:
// price = tokenReserve / currencyReserve, floored at 18 decimals.
type LP struct {
	pair ReservePair
}

// NewLP creates an LP oracle over the given reserve pair.
func NewLP(pair ReservePair) *LP {
	return &LP{pair: pair}
}

// CurrentPrice implements PriceOracle.
func (o *LP) CurrentPrice(ctx context.Context) (types.Amount, error) {
	currency, token, err := o.pair.Reserves(ctx)
	if err != nil {
		return types.Zero(), err
	}
	if !currency.IsPositive() || !token.IsPositive() {
		return types.Zero(), ErrNoLiquidity
	}
	return token.MulDiv(types.One(), currency), nil
}

// Fixed is an administered oracle holding an explicitly set price.
// It doubles as the test oracle.
type Fixed struct {
	mu    sync.RWMutex
	price types.Amount
}

// NewFixed creates a Fixed oracle with an initial price.
func NewFixed(price types.Amount) *Fixed {
	return &Fixed{price: price}
}

// SetPrice installs a new price. Zero or negative prices are ignored so a
// bad admin update can never zero out settlement conversions.
func (o *Fixed) SetPrice(price types.Amount) {
	if !price.IsPositive() {
		return
	}
	o.mu.Lock()
	o.price = price
	o.mu.Unlock()
}

// CurrentPrice implements PriceOracle.
func (o *Fixed) CurrentPrice(_ context.Context) (types.Amount, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.price.IsPositive() {
		return types.Zero(), ErrNoLiquidity
	}
	return o.price, nil
}
