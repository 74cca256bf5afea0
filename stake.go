package stakeledger

import (
	"context"
	"errors"

	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/referral"
	"github.com/xraph/stakeledger/token"
	"github.com/xraph/stakeledger/types"
)

// Stake opens a new order for addr. The staking level is selected by the
// amount range, never chosen by the caller; the order's payout cap is
// principal times the level multiplier. The principal is pulled from the
// staker through the collaborator token module and the stake amount is
// propagated up the referral chain as team performance.
func (l *Ledger) Stake(ctx context.Context, addr string, amount types.Amount) (uint64, error) {
	if addr == "" {
		return 0, ErrInvalidAddress
	}
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}

	l.op.Lock()
	defer l.op.Unlock()

	if l.paused {
		return 0, ErrSystemPaused
	}

	u, err := l.store.GetUser(ctx, addr)
	if err != nil {
		if IsNotFound(err) {
			return 0, ErrMustBindReferrer
		}
		return 0, err
	}
	if !u.HasReferrer() {
		return 0, ErrMustBindReferrer
	}

	level, verdict := l.cfg.LevelFor(amount)
	switch {
	case verdict < 0:
		return 0, ErrBelowMinimum
	case verdict > 0:
		return 0, ErrAboveMaximum
	case level == 0:
		return 0, ErrBetweenLevels
	}
	lvlCfg := l.cfg.StakingLevels[level-1]

	price, err := l.currentPrice(ctx)
	if err != nil {
		return 0, err
	}

	// All checks passed; the debit is the first effect so a failed pull
	// leaves the ledger untouched.
	if err := l.token.PullPayment(ctx, addr, amount); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return 0, ErrInsufficientBalance
		}
		return 0, err
	}

	now := l.now()
	orderID, err := l.store.NextOrderID(ctx)
	if err != nil {
		return 0, err
	}

	quota := amount.MulRate(lvlCfg.Multiplier)
	o := &order.Order{
		Entity:         types.NewEntity(),
		ID:             orderID,
		User:           addr,
		Level:          level,
		Amount:         amount,
		TotalQuota:     quota,
		TotalQuotaHaf:  quota.MulRate(price),
		StartTime:      now,
		LastSettleTime: now,
	}
	if err := l.store.CreateOrder(ctx, o); err != nil {
		return 0, err
	}

	u.OrderIDs = append(u.OrderIDs, orderID)
	u.TotalStaked = u.TotalStaked.Add(amount)
	u.Touch()
	if err := l.store.UpdateUser(ctx, u); err != nil {
		return 0, err
	}

	if err := l.propagatePerformance(ctx, addr, amount); err != nil {
		return 0, err
	}

	g, err := l.store.GetStats(ctx)
	if err != nil {
		return 0, err
	}
	g.TotalDeposited = g.TotalDeposited.Add(amount)
	if err := l.store.SaveStats(ctx, g); err != nil {
		return 0, err
	}

	l.logger.Info("stake created",
		"user", addr,
		"order", orderID,
		"level", level,
		"amount", amount.String(),
	)
	l.plugins.EmitStakeCreated(ctx, o)
	return orderID, nil
}

// propagatePerformance walks the ancestor chain adding delta to each
// ancestor's aggregate team performance and recomputing its team level
// fresh from the new figure. The walk is bounded by the configured depth.
func (l *Ledger) propagatePerformance(ctx context.Context, addr string, delta types.Amount) error {
	resolve := func(a string) (string, error) {
		u, err := l.store.GetUser(ctx, a)
		if err != nil {
			if IsNotFound(err) {
				return "", nil
			}
			return "", err
		}
		return u.Referrer, nil
	}

	return referral.WalkUp(addr, l.cfg.RootUser, l.cfg.MaxRewardDepth, resolve,
		func(ancestor string, _ int) (bool, error) {
			a, err := l.store.GetUser(ctx, ancestor)
			if err != nil {
				return false, err
			}
			a.TeamPerformance = a.TeamPerformance.Add(delta)
			a.TeamLevel = l.cfg.TeamLevelFor(a.TeamPerformance)
			a.Touch()
			if err := l.store.UpdateUser(ctx, a); err != nil {
				return false, err
			}
			return true, nil
		})
}

// currentPrice reads the oracle, translating failures into the public
// taxonomy.
func (l *Ledger) currentPrice(ctx context.Context) (types.Amount, error) {
	if l.oracle == nil {
		return types.Zero(), ErrOracleUnavailable
	}
	price, err := l.oracle.CurrentPrice(ctx)
	if err != nil || !price.IsPositive() {
		return types.Zero(), ErrOracleUnavailable
	}
	return price, nil
}
