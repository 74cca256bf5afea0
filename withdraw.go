package stakeledger

import (
	"context"

	"github.com/xraph/stakeledger/id"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
)

// Withdraw settles all of addr's open orders, aggregates every claimable
// bucket (static, direct, share, team and the genesis dividend), applies
// the withdrawal fee and pays the net amount in reward token through the
// collaborator module. A genesis claim of zero is valid; only an
// all-bucket zero sum fails.
func (l *Ledger) Withdraw(ctx context.Context, addr string) (types.Amount, error) {
	if addr == "" {
		return types.Zero(), ErrInvalidAddress
	}

	l.op.Lock()
	defer l.op.Unlock()

	if l.paused {
		return types.Zero(), ErrSystemPaused
	}

	u, err := l.store.GetUser(ctx, addr)
	if err != nil {
		if IsNotFound(err) {
			return types.Zero(), ErrNoRewards
		}
		return types.Zero(), err
	}

	price, err := l.currentPrice(ctx)
	if err != nil {
		return types.Zero(), err
	}
	now := l.now()

	if err := l.settleUserOrders(ctx, u, price, now); err != nil {
		return types.Zero(), err
	}
	u.ReleaseBuckets(now, l.cfg.Vesting, l.cfg.VestingDuration)

	// Compute every claimable before touching anything, so a zero total
	// rejects with no state change.
	staticTok := u.Static.Claimable()
	dynamicTok := u.DynamicClaimable()

	genesisCur := types.Zero()
	pool, err := l.store.GetGenesisPool(ctx)
	if err != nil {
		return types.Zero(), err
	}
	if u.IsGenesisNode {
		genesisCur = pool.ClaimableFor(u.GenesisRewardDebt)
	}
	genesisTok := genesisCur.MulRate(price)

	gross := types.Sum(staticTok, dynamicTok, genesisTok)
	if !gross.IsPositive() {
		return types.Zero(), ErrNoRewards
	}

	fee := gross.MulRate(l.cfg.WithdrawalFeeRate)
	net := gross.Sub(fee)

	if err := l.token.MintOrTransfer(ctx, addr, net); err != nil {
		return types.Zero(), err
	}

	u.Static.MarkClaimed()
	u.Direct.MarkClaimed()
	u.Share.MarkClaimed()
	u.Team.MarkClaimed()
	if u.IsGenesisNode {
		u.GenesisRewardDebt = pool.Accumulator
		u.GenesisWithdrawn = u.GenesisWithdrawn.Add(genesisCur)
		if genesisCur.IsPositive() {
			if err := l.appendReward(ctx, addr, addr, reward.KindGenesis, genesisCur, genesisTok, now); err != nil {
				return types.Zero(), err
			}
		}
	}
	u.Touch()
	if err := l.store.UpdateUser(ctx, u); err != nil {
		return types.Zero(), err
	}

	w := &reward.WithdrawRecord{
		ID:        id.NewWithdrawalID(),
		User:      addr,
		Timestamp: now,
		Gross:     gross,
		Fee:       fee,
		Net:       net,
		Static:    staticTok,
		Dynamic:   dynamicTok,
		Genesis:   genesisTok,
	}
	if err := l.store.AppendWithdrawRecord(ctx, w); err != nil {
		return types.Zero(), err
	}

	g, err := l.store.GetStats(ctx)
	if err != nil {
		return types.Zero(), err
	}
	g.TotalPaidOut = g.TotalPaidOut.Add(net)
	g.TotalFees = g.TotalFees.Add(fee)
	g.TotalMinted = g.TotalMinted.Add(net)
	if err := l.store.SaveStats(ctx, g); err != nil {
		return types.Zero(), err
	}

	l.logger.Info("withdrawal paid",
		"user", addr,
		"gross", gross.String(),
		"fee", fee.String(),
		"net", net.String(),
	)
	l.plugins.EmitWithdrawal(ctx, w)
	return net, nil
}
