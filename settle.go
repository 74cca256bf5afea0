package stakeledger

import (
	"context"

	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
	"github.com/xraph/stakeledger/user"
)

// settleUserOrders lazily settles every open order of u at the given price
// and logical time, crediting static yield and running the referral
// distribution for each positive accrual. Callers hold the operation lock
// and are responsible for persisting u afterwards.
func (l *Ledger) settleUserOrders(ctx context.Context, u *user.User, price types.Amount, now int64) error {
	orders, err := l.store.ListOrdersByUser(ctx, u.Addr, order.ListOpts{OnlyActive: true})
	if err != nil {
		return err
	}
	for _, o := range orders {
		if err := l.settleOrder(ctx, u, o, price, now); err != nil {
			return err
		}
	}
	return nil
}

// settleOrder advances one order to now. Settlement is a pure function of
// (order, now); re-invocation at the same instant accrues nothing, so any
// operation may call it freely before reading order state.
func (l *Ledger) settleOrder(ctx context.Context, owner *user.User, o *order.Order, price types.Amount, now int64) error {
	lvlCfg := l.cfg.StakingLevels[o.Level-1]
	settled, acc := order.Settle(*o, order.SettleParams{
		DailyRate: lvlCfg.DailyRate,
		DayLength: l.cfg.DayLength,
		Price:     price,
		Now:       now,
	})
	if settled.LastSettleTime == o.LastSettleTime {
		return nil
	}
	*o = settled
	o.Touch()
	if err := l.store.UpdateOrder(ctx, o); err != nil {
		return err
	}
	if !acc.Currency.IsPositive() {
		return nil
	}

	// Static bucket matures instantly; the lifetime output figure is
	// currency-denominated while the bucket holds token units.
	owner.Static.Total = owner.Static.Total.Add(acc.Token)
	owner.Static.Released = owner.Static.Total
	owner.Static.LastUpdate = now
	owner.TotalStaticOutput = owner.TotalStaticOutput.Add(acc.Currency)

	if err := l.appendReward(ctx, owner.Addr, owner.Addr, reward.KindStatic, acc.Currency, acc.Token, now); err != nil {
		return err
	}

	if err := l.distributeAccrual(ctx, owner, acc.Currency, price, now); err != nil {
		return err
	}

	if acc.Completed {
		// A completed order's principal no longer counts toward team
		// performance; the same walk that added it removes it.
		if err := l.propagatePerformance(ctx, owner.Addr, o.Amount.Neg()); err != nil {
			return err
		}
		g, err := l.store.GetStats(ctx)
		if err != nil {
			return err
		}
		g.CompletedOrders++
		if err := l.store.SaveStats(ctx, g); err != nil {
			return err
		}
		l.plugins.EmitOrderCompleted(ctx, o)
	}

	l.plugins.EmitOrderSettled(ctx, o, acc)
	return nil
}
