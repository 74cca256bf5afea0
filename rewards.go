package stakeledger

import (
	"context"

	"github.com/xraph/stakeledger/id"
	"github.com/xraph/stakeledger/referral"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
	"github.com/xraph/stakeledger/user"
)

// distributeAccrual runs the referral distribution for one static accrual:
// the direct referrer's cut, then share and team-acceleration credits for
// every qualifying ancestor up the bounded chain, then the genesis pool
// slice. All bucket credits are token-denominated at the settlement price.
//
// The walk loads each ancestor exactly once; the direct referrer receives
// its direct cut and, when its team level qualifies, share/team credits in
// the same pass.
func (l *Ledger) distributeAccrual(ctx context.Context, from *user.User, accrued, price types.Amount, now int64) error {
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

	err := referral.WalkUp(from.Addr, l.cfg.RootUser, l.cfg.MaxRewardDepth, resolve,
		func(ancestor string, depth int) (bool, error) {
			a, err := l.store.GetUser(ctx, ancestor)
			if err != nil {
				return false, err
			}
			changed := false

			if depth == 1 && !a.TotalStaked.LessThan(l.cfg.DirectQualifyStake) {
				cur := accrued.MulRate(l.cfg.DirectRate)
				if cur.IsPositive() {
					tok := cur.MulRate(price)
					a.Direct.Credit(tok, now, l.cfg.Vesting, l.cfg.VestingDuration)
					if err := l.appendReward(ctx, a.Addr, from.Addr, reward.KindDirect, cur, tok, now); err != nil {
						return false, err
					}
					changed = true
				}
			}

			if a.TeamLevel >= 1 {
				cur := accrued.MulRate(l.cfg.ShareRate)
				if cur.IsPositive() {
					tok := cur.MulRate(price)
					a.Share.Credit(tok, now, l.cfg.Vesting, l.cfg.VestingDuration)
					if err := l.appendReward(ctx, a.Addr, from.Addr, reward.KindShare, cur, tok, now); err != nil {
						return false, err
					}
					changed = true
				}

				bonus := l.cfg.TeamLevels[a.TeamLevel].AccelerationBonus
				cur = accrued.MulRate(bonus)
				if cur.IsPositive() {
					tok := cur.MulRate(price)
					a.Team.Credit(tok, now, l.cfg.Vesting, l.cfg.VestingDuration)
					if err := l.appendReward(ctx, a.Addr, from.Addr, reward.KindTeam, cur, tok, now); err != nil {
						return false, err
					}
					changed = true
				}
			}

			if changed {
				a.Touch()
				if err := l.store.UpdateUser(ctx, a); err != nil {
					return false, err
				}
			}
			return true, nil
		})
	if err != nil {
		return err
	}

	cut := accrued.MulRate(l.cfg.GenesisRate)
	if cut.IsPositive() {
		pool, err := l.store.GetGenesisPool(ctx)
		if err != nil {
			return err
		}
		pool.Accrue(cut)
		if err := l.store.SaveGenesisPool(ctx, pool); err != nil {
			return err
		}
		l.plugins.EmitDividendAccrued(ctx, cut)
	}
	return nil
}

// appendReward persists one immutable reward record and emits it on the
// canonical feed.
func (l *Ledger) appendReward(ctx context.Context, to, from string, kind reward.Kind, cur, tok types.Amount, now int64) error {
	rec := &reward.Record{
		ID:             id.NewRewardID(),
		User:           to,
		FromUser:       from,
		Kind:           kind,
		Timestamp:      now,
		CurrencyAmount: cur,
		TokenAmount:    tok,
	}
	if err := l.store.AppendRewardRecord(ctx, rec); err != nil {
		return err
	}
	l.plugins.EmitRewardDistributed(ctx, rec)
	return nil
}
