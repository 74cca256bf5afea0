package stakeledger

import (
	"context"

	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/stats"
	"github.com/xraph/stakeledger/types"
	"github.com/xraph/stakeledger/user"
)

// UserInfo is the public read projection of one account.
type UserInfo struct {
	Addr             string       `json:"addr"`
	Referrer         string       `json:"referrer"`
	TeamLevel        int          `json:"team_level"`
	TotalStaked      types.Amount `json:"total_staked"`
	TeamPerformance  types.Amount `json:"team_performance"`
	DirectReferrals  []string     `json:"direct_referrals"`
	OrderIDs         []uint64     `json:"order_ids"`
	IsGenesisNode    bool         `json:"is_genesis_node"`
	GenesisWithdrawn types.Amount `json:"genesis_withdrawn"`

	// Dynamic aggregates of the direct, share and team buckets.
	DynamicTotal    types.Amount `json:"dynamic_total"`
	DynamicReleased types.Amount `json:"dynamic_released"`
	DynamicClaimed  types.Amount `json:"dynamic_claimed"`

	TotalStaticOutput types.Amount `json:"total_static_output"`
}

// ClaimableRewards is the public read aggregate: everything withdrawable
// right now, in reward-token units. Dynamic sums the direct, share and team
// buckets; the genesis figure is converted at the current price.
type ClaimableRewards struct {
	Static  types.Amount `json:"static"`
	Dynamic types.Amount `json:"dynamic"`
	Genesis types.Amount `json:"genesis"`
}

// TeamMemberInfo summarizes one direct referral for team views.
type TeamMemberInfo struct {
	Addr            string       `json:"addr"`
	TeamLevel       int          `json:"team_level"`
	TotalStaked     types.Amount `json:"total_staked"`
	TeamPerformance types.Amount `json:"team_performance"`
}

// GetUserInfo reports the account projection for addr. Unknown accounts
// yield an empty projection, never an error. The call settles the user's
// open orders first so the figures are current.
func (l *Ledger) GetUserInfo(ctx context.Context, addr string) (*UserInfo, error) {
	l.op.Lock()
	defer l.op.Unlock()

	u, err := l.settledUser(ctx, addr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &UserInfo{Addr: addr}, nil
	}

	return &UserInfo{
		Addr:              u.Addr,
		Referrer:          u.Referrer,
		TeamLevel:         u.TeamLevel,
		TotalStaked:       u.TotalStaked,
		TeamPerformance:   u.TeamPerformance,
		DirectReferrals:   append([]string(nil), u.DirectReferrals...),
		OrderIDs:          append([]uint64(nil), u.OrderIDs...),
		IsGenesisNode:     u.IsGenesisNode,
		GenesisWithdrawn:  u.GenesisWithdrawn,
		DynamicTotal:      types.Sum(u.Direct.Total, u.Share.Total, u.Team.Total),
		DynamicReleased:   types.Sum(u.Direct.Released, u.Share.Released, u.Team.Released),
		DynamicClaimed:    types.Sum(u.Direct.Claimed, u.Share.Claimed, u.Team.Claimed),
		TotalStaticOutput: u.TotalStaticOutput,
	}, nil
}

// GetUserOrders lists addr's orders, settled to the current instant.
func (l *Ledger) GetUserOrders(ctx context.Context, addr string) ([]*order.Order, error) {
	l.op.Lock()
	defer l.op.Unlock()

	if _, err := l.settledUser(ctx, addr); err != nil {
		return nil, err
	}
	return l.store.ListOrdersByUser(ctx, addr, order.ListOpts{})
}

// GetOrderInfo returns one order, settled to the current instant.
func (l *Ledger) GetOrderInfo(ctx context.Context, orderID uint64) (*order.Order, error) {
	l.op.Lock()
	defer l.op.Unlock()

	o, err := l.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsCompleted {
		return o, nil
	}

	owner, err := l.store.GetUser(ctx, o.User)
	if err != nil {
		return nil, err
	}
	price, err := l.currentPrice(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.settleOrder(ctx, owner, o, price, l.now()); err != nil {
		return nil, err
	}
	owner.Touch()
	if err := l.store.UpdateUser(ctx, owner); err != nil {
		return nil, err
	}
	return o, nil
}

// GetClaimableRewards reports the withdrawable static, dynamic and genesis
// aggregates for addr without claiming anything.
func (l *Ledger) GetClaimableRewards(ctx context.Context, addr string) (*ClaimableRewards, error) {
	l.op.Lock()
	defer l.op.Unlock()

	u, err := l.settledUser(ctx, addr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &ClaimableRewards{}, nil
	}

	out := &ClaimableRewards{
		Static:  u.Static.Claimable(),
		Dynamic: u.DynamicClaimable(),
	}
	if u.IsGenesisNode {
		pool, err := l.store.GetGenesisPool(ctx)
		if err != nil {
			return nil, err
		}
		price, err := l.currentPrice(ctx)
		if err != nil {
			return nil, err
		}
		out.Genesis = pool.ClaimableFor(u.GenesisRewardDebt).MulRate(price)
	}
	return out, nil
}

// GenesisPoolInfo is the public read projection of the dividend pool.
type GenesisPoolInfo struct {
	Balance     types.Amount `json:"balance"`
	Accumulator types.Amount `json:"accumulator"`
	TotalInflow types.Amount `json:"total_inflow"`
	ActiveNodes int          `json:"active_nodes"`
}

// GetGenesisPool reports the global dividend pool state.
func (l *Ledger) GetGenesisPool(ctx context.Context) (*GenesisPoolInfo, error) {
	pool, err := l.store.GetGenesisPool(ctx)
	if err != nil {
		return nil, err
	}
	return &GenesisPoolInfo{
		Balance:     pool.Balance,
		Accumulator: pool.Accumulator,
		TotalInflow: pool.TotalInflow,
		ActiveNodes: len(pool.ActiveNodes),
	}, nil
}

// GetGlobalStats returns the ledger-wide aggregate counters.
func (l *Ledger) GetGlobalStats(ctx context.Context) (*stats.Global, error) {
	return l.store.GetStats(ctx)
}

// GetDirectReferrals lists addr's direct referrals in bind order.
// Unknown accounts yield an empty list.
func (l *Ledger) GetDirectReferrals(ctx context.Context, addr string) ([]string, error) {
	u, err := l.store.GetUser(ctx, addr)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return append([]string(nil), u.DirectReferrals...), nil
}

// GetTeamMembers summarizes each of addr's direct referrals.
func (l *Ledger) GetTeamMembers(ctx context.Context, addr string) ([]*TeamMemberInfo, error) {
	u, err := l.store.GetUser(ctx, addr)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	members := make([]*TeamMemberInfo, 0, len(u.DirectReferrals))
	for _, ref := range u.DirectReferrals {
		m, err := l.store.GetUser(ctx, ref)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		members = append(members, &TeamMemberInfo{
			Addr:            m.Addr,
			TeamLevel:       m.TeamLevel,
			TotalStaked:     m.TotalStaked,
			TeamPerformance: m.TeamPerformance,
		})
	}
	return members, nil
}

// GetRewardRecords pages through addr's append-only reward log, newest first.
func (l *Ledger) GetRewardRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.Record, error) {
	return l.store.ListRewardRecords(ctx, addr, opts)
}

// GetWithdrawRecords pages through addr's withdrawal log, newest first.
func (l *Ledger) GetWithdrawRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.WithdrawRecord, error) {
	return l.store.ListWithdrawRecords(ctx, addr, opts)
}

// settledUser loads addr, settles its open orders and runs the lazy vesting
// pass, persisting the result. Returns (nil, nil) for unknown accounts.
// Callers hold the operation lock.
func (l *Ledger) settledUser(ctx context.Context, addr string) (*user.User, error) {
	u, err := l.store.GetUser(ctx, addr)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	price, err := l.currentPrice(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now()
	if err := l.settleUserOrders(ctx, u, price, now); err != nil {
		return nil, err
	}
	u.ReleaseBuckets(now, l.cfg.Vesting, l.cfg.VestingDuration)
	u.Touch()
	if err := l.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
