// Package order owns the stake-position model and its settlement function.
// Settlement is a pure function of (Order, params): no clocks, no stores,
// no side effects. The engine invokes it lazily from every operation that
// touches an order and persists the returned copy.
package order

import (
	"github.com/xraph/stakeledger/types"
)

// Order is a single stake position with its own payout cap and settlement
// clock. Mutated only by settlement; immutable once completed.
type Order struct {
	types.Entity

	// ID is unique and monotonically assigned by the store.
	ID uint64 `json:"id"`

	// User is the owning account key.
	User string `json:"user"`

	// Level is the staking level at creation (1..4).
	Level int `json:"level"`

	// Amount is the staked principal in stake currency.
	Amount types.Amount `json:"amount"`

	// TotalQuota caps lifetime yield: principal x level multiplier,
	// denominated in stake currency.
	TotalQuota types.Amount `json:"total_quota"`

	// ReleasedQuota is currency-denominated yield already settled.
	// Invariant: 0 <= ReleasedQuota <= TotalQuota.
	ReleasedQuota types.Amount `json:"released_quota"`

	// TotalQuotaHaf / ReleasedHaf track the same amounts pre-converted to
	// reward-token units at each settlement's price, so the token totals
	// reflect a price-weighted history rather than a single conversion.
	TotalQuotaHaf types.Amount `json:"total_quota_haf"`
	ReleasedHaf   types.Amount `json:"released_haf"`

	// StartTime and LastSettleTime are logical-clock seconds.
	StartTime      int64 `json:"start_time"`
	LastSettleTime int64 `json:"last_settle_time"`

	// IsCompleted holds exactly when ReleasedQuota == TotalQuota.
	IsCompleted bool `json:"is_completed"`
}

// Remaining returns the unreleased quota.
func (o Order) Remaining() types.Amount {
	return o.TotalQuota.Sub(o.ReleasedQuota)
}

// SettleParams carries everything settlement needs from the outside.
type SettleParams struct {
	// DailyRate is the level's yield fraction per DayLength.
	DailyRate types.Amount

	// DayLength is the accrual day in logical-clock seconds.
	DayLength int64

	// Price is the reward-token per stake-currency rate at settlement time.
	Price types.Amount

	// Now is the logical clock reading.
	Now int64
}

// Accrual is the outcome of one settlement pass.
type Accrual struct {
	// Currency is the newly released quota in stake currency.
	Currency types.Amount

	// Token is Currency converted at the settlement-time price.
	Token types.Amount

	// Completed reports that this pass exhausted the quota.
	Completed bool
}

// Settle advances the order's lazy yield to params.Now and returns the
// settled copy plus what accrued. Calling it again with an unchanged Now
// accrues exactly zero. Accrual is capped by the remaining quota; both the
// rate application and the currency-to-token conversion floor, so an order
// can never release more than its cap in either denomination.
func Settle(o Order, p SettleParams) (Order, Accrual) {
	if o.IsCompleted || p.Now <= o.LastSettleTime {
		return o, Accrual{}
	}

	elapsed := p.Now - o.LastSettleTime
	accrued := o.Amount.MulRate(p.DailyRate).MulInt(elapsed).DivInt(p.DayLength)
	accrued = accrued.Min(o.Remaining())

	o.LastSettleTime = p.Now
	if !accrued.IsPositive() {
		return o, Accrual{}
	}

	token := accrued.MulRate(p.Price)

	o.ReleasedQuota = o.ReleasedQuota.Add(accrued)
	o.ReleasedHaf = o.ReleasedHaf.Add(token)
	o.IsCompleted = o.ReleasedQuota.Equal(o.TotalQuota)

	return o, Accrual{Currency: accrued, Token: token, Completed: o.IsCompleted}
}

// ListOpts pages order listings.
type ListOpts struct {
	Limit      int
	Offset     int
	OnlyActive bool
}
