package order

import (
	"testing"

	"github.com/xraph/stakeledger/types"
)

const day = int64(86400)

// newTestOrder is a level-3 position: 1000 staked, 2.5x quota, 0.9%/day.
func newTestOrder() Order {
	amount := types.FromUnits(1000)
	quota := amount.MulRate(types.FromFraction(25, 10))
	return Order{
		ID:            1,
		User:          "alice",
		Level:         3,
		Amount:        amount,
		TotalQuota:    quota,
		TotalQuotaHaf: quota.MulRate(types.One()),
	}
}

func testParams(now int64) SettleParams {
	return SettleParams{
		DailyRate: types.FromFraction(9, 1000),
		DayLength: day,
		Price:     types.One(),
		Now:       now,
	}
}

func TestSettleOneDay(t *testing.T) {
	o := newTestOrder()

	settled, acc := Settle(o, testParams(day))

	want := types.FromUnits(9) // 1000 * 0.9%
	if !acc.Currency.Equal(want) {
		t.Errorf("accrued currency: got %s, want %s", acc.Currency.String(), want.String())
	}
	if !acc.Token.Equal(want) {
		t.Errorf("accrued token at price 1: got %s, want %s", acc.Token.String(), want.String())
	}
	if acc.Completed {
		t.Error("order completed far too early")
	}
	if settled.LastSettleTime != day {
		t.Errorf("LastSettleTime: got %d, want %d", settled.LastSettleTime, day)
	}
	if !settled.ReleasedQuota.Equal(want) {
		t.Errorf("ReleasedQuota: got %s, want %s", settled.ReleasedQuota.String(), want.String())
	}
}

func TestSettleIdempotentAtSameInstant(t *testing.T) {
	o := newTestOrder()

	settled, _ := Settle(o, testParams(day))
	again, acc := Settle(settled, testParams(day))

	if !acc.Currency.IsZero() {
		t.Errorf("re-settlement at the same instant accrued %s", acc.Currency.String())
	}
	if !again.ReleasedQuota.Equal(settled.ReleasedQuota) {
		t.Error("re-settlement changed released quota")
	}
}

func TestSettlePartialDay(t *testing.T) {
	o := newTestOrder()

	// Half a day accrues half the daily yield.
	_, acc := Settle(o, testParams(day/2))
	want := types.FromUnits(9).DivInt(2)
	if !acc.Currency.Equal(want) {
		t.Errorf("half-day accrual: got %s, want %s", acc.Currency.String(), want.String())
	}
}

func TestSettleClockNotAdvanced(t *testing.T) {
	o := newTestOrder()
	o.LastSettleTime = day

	for _, now := range []int64{day, day - 1, 0} {
		settled, acc := Settle(o, testParams(now))
		if !acc.Currency.IsZero() {
			t.Errorf("now=%d: accrued %s", now, acc.Currency.String())
		}
		if settled.LastSettleTime != day {
			t.Errorf("now=%d: clock moved to %d", now, settled.LastSettleTime)
		}
	}
}

func TestSettleQuotaCap(t *testing.T) {
	o := newTestOrder()

	// 300 days would accrue 2700, but the quota caps at 2500.
	settled, acc := Settle(o, testParams(300*day))

	if !acc.Currency.Equal(o.TotalQuota) {
		t.Errorf("capped accrual: got %s, want %s", acc.Currency.String(), o.TotalQuota.String())
	}
	if !acc.Completed {
		t.Error("exhausting the quota must report completion")
	}
	if !settled.IsCompleted {
		t.Error("order not marked completed")
	}
	if !settled.Remaining().IsZero() {
		t.Errorf("remaining quota after completion: %s", settled.Remaining().String())
	}
}

func TestSettleCompletedOrderIsInert(t *testing.T) {
	o := newTestOrder()
	settled, _ := Settle(o, testParams(300*day))

	again, acc := Settle(settled, testParams(600*day))
	if !acc.Currency.IsZero() {
		t.Errorf("completed order accrued %s", acc.Currency.String())
	}
	if again.LastSettleTime != settled.LastSettleTime {
		t.Error("completed order clock advanced")
	}
}

func TestSettlePriceConversion(t *testing.T) {
	o := newTestOrder()
	p := testParams(day)
	p.Price = types.FromFraction(2, 1)

	settled, acc := Settle(o, p)

	if !acc.Currency.Equal(types.FromUnits(9)) {
		t.Errorf("currency accrual: got %s", acc.Currency.String())
	}
	if !acc.Token.Equal(types.FromUnits(18)) {
		t.Errorf("token accrual at price 2: got %s, want 18", acc.Token.String())
	}
	if !settled.ReleasedHaf.Equal(types.FromUnits(18)) {
		t.Errorf("ReleasedHaf: got %s, want 18", settled.ReleasedHaf.String())
	}
	// The currency-side quota tracking is price-independent.
	if !settled.ReleasedQuota.Equal(types.FromUnits(9)) {
		t.Errorf("ReleasedQuota: got %s, want 9", settled.ReleasedQuota.String())
	}
}

// Settling in many small steps never releases more than one big step: the
// per-step flooring only ever under-releases.
func TestSettleStepwiseNeverOverruns(t *testing.T) {
	single := newTestOrder()
	single, _ = Settle(single, testParams(10*day))

	stepped := newTestOrder()
	for i := int64(1); i <= 10; i++ {
		stepped, _ = Settle(stepped, testParams(i*day))
	}

	if stepped.ReleasedQuota.GreaterThan(single.ReleasedQuota) {
		t.Errorf("stepwise released %s > single-pass %s",
			stepped.ReleasedQuota.String(), single.ReleasedQuota.String())
	}
}

func TestRemaining(t *testing.T) {
	o := newTestOrder()
	if !o.Remaining().Equal(o.TotalQuota) {
		t.Errorf("fresh order remaining: got %s", o.Remaining().String())
	}

	settled, _ := Settle(o, testParams(day))
	want := o.TotalQuota.Sub(types.FromUnits(9))
	if !settled.Remaining().Equal(want) {
		t.Errorf("remaining after one day: got %s, want %s", settled.Remaining().String(), want.String())
	}
}
