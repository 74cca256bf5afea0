package stakeledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/oracle"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/store/memory"
	"github.com/xraph/stakeledger/token"
	"github.com/xraph/stakeledger/types"
)

const day = int64(86400)

type fixture struct {
	ledger *stakeledger.Ledger
	store  *memory.Store
	token  *token.Memory
	clock  *stakeledger.ManualClock
	oracle *oracle.Fixed
}

func newFixture(t *testing.T, opts ...stakeledger.Option) *fixture {
	t.Helper()

	f := &fixture{
		store:  memory.New(),
		token:  token.NewMemory(),
		clock:  stakeledger.NewManualClock(0),
		oracle: oracle.NewFixed(types.One()),
	}
	base := []stakeledger.Option{
		stakeledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		stakeledger.WithToken(f.token),
		stakeledger.WithClock(f.clock),
		stakeledger.WithOracle(f.oracle),
		stakeledger.WithAdmin("admin"),
		stakeledger.WithTreasury("treasury"),
	}
	f.ledger = stakeledger.New(f.store, append(base, opts...)...)
	if err := f.ledger.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = f.ledger.Stop() })
	return f
}

// fund puts stake currency into an account and binds it under the root.
func (f *fixture) fund(t *testing.T, addr string, units int64) {
	t.Helper()
	f.token.Credit(addr, types.FromUnits(units))
	if err := f.ledger.BindReferrer(context.Background(), addr, "root"); err != nil {
		t.Fatalf("BindReferrer(%s): %v", addr, err)
	}
}

func TestBindReferrer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.ledger.BindReferrer(ctx, "alice", "root"); err != nil {
		t.Fatalf("bind to root: %v", err)
	}
	if err := f.ledger.BindReferrer(ctx, "alice", "root"); !errors.Is(err, stakeledger.ErrAlreadyBound) {
		t.Errorf("rebind: got %v", err)
	}
	if err := f.ledger.BindReferrer(ctx, "bob", "bob"); !errors.Is(err, stakeledger.ErrSelfReferral) {
		t.Errorf("self referral: got %v", err)
	}
	if err := f.ledger.BindReferrer(ctx, "bob", "ghost"); !errors.Is(err, stakeledger.ErrReferrerNotRegistered) {
		t.Errorf("unknown referrer: got %v", err)
	}
	if err := f.ledger.BindReferrer(ctx, "", "root"); !errors.Is(err, stakeledger.ErrInvalidAddress) {
		t.Errorf("empty address: got %v", err)
	}

	// A rejected bind must leave no account behind.
	info, err := f.ledger.GetUserInfo(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if info.Referrer != "" {
		t.Errorf("rejected bind left referrer %q", info.Referrer)
	}

	if err := f.ledger.BindReferrer(ctx, "bob", "alice"); err != nil {
		t.Fatalf("bind to existing user: %v", err)
	}
	refs, err := f.ledger.GetDirectReferrals(ctx, "alice")
	if err != nil {
		t.Fatalf("GetDirectReferrals: %v", err)
	}
	if len(refs) != 1 || refs[0] != "bob" {
		t.Errorf("direct referrals: got %v", refs)
	}
}

func TestStakeRequiresReferrer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000))
	if !errors.Is(err, stakeledger.ErrMustBindReferrer) {
		t.Errorf("got %v, want ErrMustBindReferrer", err)
	}
}

func TestStakeLevelBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 100000)

	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(50)); !errors.Is(err, stakeledger.ErrBelowMinimum) {
		t.Errorf("below minimum: got %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(60000)); !errors.Is(err, stakeledger.ErrAboveMaximum) {
		t.Errorf("above maximum: got %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromFraction(999, 2)); !errors.Is(err, stakeledger.ErrBetweenLevels) {
		t.Errorf("gap between levels: got %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.Zero()); !errors.Is(err, stakeledger.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v", err)
	}

	// A rejected stake must not touch the balance.
	if !f.token.CurrencyBalance("alice").Equal(types.FromUnits(100000)) {
		t.Errorf("balance changed: %s", f.token.CurrencyBalance("alice").String())
	}
}

func TestStakeCreatesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 2000)

	orderID, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000))
	if err != nil {
		t.Fatalf("Stake: %v", err)
	}

	o, err := f.ledger.GetOrderInfo(ctx, orderID)
	if err != nil {
		t.Fatalf("GetOrderInfo: %v", err)
	}
	if o.Level != 3 {
		t.Errorf("level: got %d, want 3", o.Level)
	}
	if !o.TotalQuota.Equal(types.FromUnits(2500)) {
		t.Errorf("quota: got %s, want 2500", o.TotalQuota.String())
	}
	if !f.token.CurrencyBalance("alice").Equal(types.FromUnits(1000)) {
		t.Errorf("principal not debited: %s", f.token.CurrencyBalance("alice").String())
	}

	info, err := f.ledger.GetUserInfo(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if !info.TotalStaked.Equal(types.FromUnits(1000)) {
		t.Errorf("TotalStaked: got %s", info.TotalStaked.String())
	}
	if len(info.OrderIDs) != 1 || info.OrderIDs[0] != orderID {
		t.Errorf("OrderIDs: got %v", info.OrderIDs)
	}
}

func TestStakeInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 500)

	_, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000))
	if !errors.Is(err, stakeledger.ErrInsufficientBalance) {
		t.Errorf("got %v, want ErrInsufficientBalance", err)
	}
}

func TestStakeWithoutOracle(t *testing.T) {
	s := memory.New()
	l := stakeledger.New(s,
		stakeledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		stakeledger.WithToken(token.NewMemory()),
	)
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer l.Stop()

	if err := l.BindReferrer(ctx, "alice", "root"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}
	_, err := l.Stake(ctx, "alice", types.FromUnits(1000))
	if !errors.Is(err, stakeledger.ErrOracleUnavailable) {
		t.Errorf("got %v, want ErrOracleUnavailable", err)
	}
}

func TestStaticAccrualAndWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 1000)

	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	// One accrual day at 0.9%: 9 currency, 9 token at price 1.
	f.clock.Advance(day)

	claim, err := f.ledger.GetClaimableRewards(ctx, "alice")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Static.Equal(types.FromUnits(9)) {
		t.Errorf("static claimable: got %s, want 9", claim.Static.String())
	}
	if !claim.Dynamic.IsZero() || !claim.Genesis.IsZero() {
		t.Errorf("unexpected dynamic/genesis claimable: %+v", claim)
	}

	// 5% fee: net 8.55 reward token.
	net, err := f.ledger.Withdraw(ctx, "alice")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	want := types.FromFraction(855, 100)
	if !net.Equal(want) {
		t.Errorf("net: got %s, want %s", net.String(), want.String())
	}
	if !f.token.RewardBalance("alice").Equal(want) {
		t.Errorf("reward balance: got %s", f.token.RewardBalance("alice").String())
	}

	// Nothing left immediately after.
	if _, err := f.ledger.Withdraw(ctx, "alice"); !errors.Is(err, stakeledger.ErrNoRewards) {
		t.Errorf("second withdraw: got %v", err)
	}

	recs, err := f.ledger.GetWithdrawRecords(ctx, "alice", reward.ListOpts{})
	if err != nil || len(recs) != 1 {
		t.Fatalf("withdraw records: got %d, %v", len(recs), err)
	}
	if !recs[0].Gross.Equal(types.FromUnits(9)) || !recs[0].Net.Equal(want) {
		t.Errorf("record: gross %s net %s", recs[0].Gross.String(), recs[0].Net.String())
	}
}

func TestSettlementIdempotentAcrossReads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 1000)
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake: %v", err)
	}
	f.clock.Advance(day)

	// Repeated reads at the same instant never double-accrue.
	for i := 0; i < 3; i++ {
		claim, err := f.ledger.GetClaimableRewards(ctx, "alice")
		if err != nil {
			t.Fatalf("GetClaimableRewards: %v", err)
		}
		if !claim.Static.Equal(types.FromUnits(9)) {
			t.Fatalf("read %d: static %s, want 9", i, claim.Static.String())
		}
	}
}

func TestDirectReferralReward(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "bob", 1000)
	f.token.Credit("alice", types.FromUnits(1000))
	if err := f.ledger.BindReferrer(ctx, "alice", "bob"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}

	if _, err := f.ledger.Stake(ctx, "bob", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake bob: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake alice: %v", err)
	}

	f.clock.Advance(day)

	// Settling alice's order credits bob's direct bucket: 10% of alice's 9.
	if _, err := f.ledger.GetClaimableRewards(ctx, "alice"); err != nil {
		t.Fatalf("settle alice: %v", err)
	}

	claim, err := f.ledger.GetClaimableRewards(ctx, "bob")
	if err != nil {
		t.Fatalf("GetClaimableRewards bob: %v", err)
	}
	if !claim.Static.Equal(types.FromUnits(9)) {
		t.Errorf("bob static: got %s, want 9", claim.Static.String())
	}
	if !claim.Dynamic.Equal(types.FromFraction(9, 10)) {
		t.Errorf("bob dynamic: got %s, want 0.9", claim.Dynamic.String())
	}

	// Bob's reward log carries the direct credit attributed to alice.
	recs, err := f.ledger.GetRewardRecords(ctx, "bob", reward.ListOpts{})
	if err != nil {
		t.Fatalf("GetRewardRecords: %v", err)
	}
	foundDirect := false
	for _, r := range recs {
		if r.Kind == reward.KindDirect {
			foundDirect = true
			if r.FromUser != "alice" {
				t.Errorf("direct record from %q, want alice", r.FromUser)
			}
		}
	}
	if !foundDirect {
		t.Error("no direct reward record for bob")
	}
}

func TestDirectRewardRequiresQualifyingStake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Bob never stakes, so he stays below the direct-qualify threshold.
	if err := f.ledger.BindReferrer(ctx, "bob", "root"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}
	f.token.Credit("alice", types.FromUnits(1000))
	if err := f.ledger.BindReferrer(ctx, "alice", "bob"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	f.clock.Advance(day)
	if _, err := f.ledger.GetClaimableRewards(ctx, "alice"); err != nil {
		t.Fatalf("settle alice: %v", err)
	}

	claim, err := f.ledger.GetClaimableRewards(ctx, "bob")
	if err != nil {
		t.Fatalf("GetClaimableRewards bob: %v", err)
	}
	if !claim.Dynamic.IsZero() {
		t.Errorf("unqualified referrer earned %s", claim.Dynamic.String())
	}
}

func TestShareAndTeamRewards(t *testing.T) {
	// Lower the first team threshold so bob reaches level 1 from a single
	// downstream stake.
	cfg := config.Default()
	cfg.TeamLevels[1].RequiredPerformance = types.FromUnits(500)
	cfg.TeamLevels[1].AccelerationBonus = types.FromFraction(5, 100)

	ctx := context.Background()
	f := newFixture(t, stakeledger.WithConfig(cfg))
	f.fund(t, "bob", 1000)
	f.token.Credit("alice", types.FromUnits(1000))
	if err := f.ledger.BindReferrer(ctx, "alice", "bob"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "bob", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake bob: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake alice: %v", err)
	}

	info, err := f.ledger.GetUserInfo(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if info.TeamLevel != 1 {
		t.Fatalf("bob team level: got %d, want 1", info.TeamLevel)
	}
	if !info.TeamPerformance.Equal(types.FromUnits(1000)) {
		t.Errorf("bob team performance: got %s", info.TeamPerformance.String())
	}

	f.clock.Advance(day)
	if _, err := f.ledger.GetClaimableRewards(ctx, "alice"); err != nil {
		t.Fatalf("settle alice: %v", err)
	}

	// Direct 10% + share 5% + team bonus 5% of alice's 9.
	claim, err := f.ledger.GetClaimableRewards(ctx, "bob")
	if err != nil {
		t.Fatalf("GetClaimableRewards bob: %v", err)
	}
	want := types.FromFraction(18, 10)
	if !claim.Dynamic.Equal(want) {
		t.Errorf("bob dynamic: got %s, want %s", claim.Dynamic.String(), want.String())
	}
}

func TestGenesisApplicationFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.token.Credit("alice", types.FromUnits(5000))

	if err := f.ledger.ApplyForGenesisNode(ctx, "alice"); err != nil {
		t.Fatalf("ApplyForGenesisNode: %v", err)
	}
	if !f.token.CurrencyBalance("alice").IsZero() {
		t.Errorf("admission cost not debited: %s", f.token.CurrencyBalance("alice").String())
	}
	if err := f.ledger.ApplyForGenesisNode(ctx, "alice"); !errors.Is(err, stakeledger.ErrApplicationPending) {
		t.Errorf("double apply: got %v", err)
	}

	if err := f.ledger.ApproveGenesisNode(ctx, "mallory", "alice"); !errors.Is(err, stakeledger.ErrUnauthorized) {
		t.Errorf("non-admin approval: got %v", err)
	}
	if err := f.ledger.ApproveGenesisNode(ctx, "admin", "ghost"); !errors.Is(err, stakeledger.ErrNoPendingApplication) {
		t.Errorf("approve unknown: got %v", err)
	}
	if err := f.ledger.ApproveGenesisNode(ctx, "admin", "alice"); err != nil {
		t.Fatalf("ApproveGenesisNode: %v", err)
	}
	if err := f.ledger.ApplyForGenesisNode(ctx, "alice"); !errors.Is(err, stakeledger.ErrAlreadyGenesisNode) {
		t.Errorf("re-apply as node: got %v", err)
	}

	info, err := f.ledger.GetUserInfo(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if !info.IsGenesisNode {
		t.Error("approval did not mark the node")
	}
}

func TestGenesisDividendClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.token.Credit("alice", types.FromUnits(5000))

	if err := f.ledger.ApplyForGenesisNode(ctx, "alice"); err != nil {
		t.Fatalf("ApplyForGenesisNode: %v", err)
	}
	if err := f.ledger.ApproveGenesisNode(ctx, "admin", "alice"); err != nil {
		t.Fatalf("ApproveGenesisNode: %v", err)
	}

	// The parked admission cost distributes with the next accrual: 5000
	// parked plus 100 new, all to the single node.
	if err := f.ledger.AccrueDividend(ctx, "admin", types.FromUnits(100)); err != nil {
		t.Fatalf("AccrueDividend: %v", err)
	}
	if err := f.ledger.AccrueDividend(ctx, "mallory", types.FromUnits(1)); !errors.Is(err, stakeledger.ErrUnauthorized) {
		t.Errorf("non-admin accrue: got %v", err)
	}

	claim, err := f.ledger.GetClaimableRewards(ctx, "alice")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Genesis.Equal(types.FromUnits(5100)) {
		t.Errorf("genesis claimable: got %s, want 5100", claim.Genesis.String())
	}

	net, err := f.ledger.Withdraw(ctx, "alice")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	// 5% fee on 5100.
	want := types.FromUnits(5100).Sub(types.FromUnits(5100).MulRate(types.FromFraction(5, 100)))
	if !net.Equal(want) {
		t.Errorf("net: got %s, want %s", net.String(), want.String())
	}

	// The claim snapshots the debt; nothing is claimable twice.
	claim, err = f.ledger.GetClaimableRewards(ctx, "alice")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Genesis.IsZero() {
		t.Errorf("re-claimable genesis: got %s", claim.Genesis.String())
	}

	info, err := f.ledger.GetUserInfo(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if !info.GenesisWithdrawn.Equal(types.FromUnits(5100)) {
		t.Errorf("GenesisWithdrawn: got %s", info.GenesisWithdrawn.String())
	}
}

func TestGetGenesisPool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pool, err := f.ledger.GetGenesisPool(ctx)
	if err != nil {
		t.Fatalf("GetGenesisPool: %v", err)
	}
	if pool.ActiveNodes != 0 || !pool.Balance.IsZero() || !pool.TotalInflow.IsZero() {
		t.Errorf("fresh pool: got %+v", pool)
	}

	// The admission cost parks with no active nodes.
	f.token.Credit("alice", types.FromUnits(5000))
	if err := f.ledger.ApplyForGenesisNode(ctx, "alice"); err != nil {
		t.Fatalf("ApplyForGenesisNode: %v", err)
	}
	pool, err = f.ledger.GetGenesisPool(ctx)
	if err != nil {
		t.Fatalf("GetGenesisPool: %v", err)
	}
	if pool.ActiveNodes != 0 {
		t.Errorf("nodes before approval: got %d", pool.ActiveNodes)
	}
	if !pool.Balance.Equal(types.FromUnits(5000)) || !pool.TotalInflow.Equal(types.FromUnits(5000)) {
		t.Errorf("parked cost: balance %s, inflow %s", pool.Balance.String(), pool.TotalInflow.String())
	}
	if !pool.Accumulator.IsZero() {
		t.Errorf("accumulator before any node: got %s", pool.Accumulator.String())
	}

	if err := f.ledger.ApproveGenesisNode(ctx, "admin", "alice"); err != nil {
		t.Fatalf("ApproveGenesisNode: %v", err)
	}
	if err := f.ledger.AccrueDividend(ctx, "admin", types.FromUnits(100)); err != nil {
		t.Fatalf("AccrueDividend: %v", err)
	}

	pool, err = f.ledger.GetGenesisPool(ctx)
	if err != nil {
		t.Fatalf("GetGenesisPool: %v", err)
	}
	if pool.ActiveNodes != 1 {
		t.Errorf("active nodes: got %d, want 1", pool.ActiveNodes)
	}
	if !pool.Accumulator.Equal(types.FromUnits(5100)) {
		t.Errorf("accumulator: got %s, want 5100", pool.Accumulator.String())
	}
	if !pool.Balance.IsZero() {
		t.Errorf("balance after sweep: got %s", pool.Balance.String())
	}
	if !pool.TotalInflow.Equal(types.FromUnits(5100)) {
		t.Errorf("total inflow: got %s, want 5100", pool.TotalInflow.String())
	}
}

func TestOrderCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 100)

	// Level 1: quota 150 at 0.6%/day exhausts in 250 days.
	orderID, err := f.ledger.Stake(ctx, "alice", types.FromUnits(100))
	if err != nil {
		t.Fatalf("Stake: %v", err)
	}

	f.clock.Advance(300 * day)

	net, err := f.ledger.Withdraw(ctx, "alice")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	// Full quota of 150 token, minus the 5% fee.
	want := types.FromFraction(285, 2)
	if !net.Equal(want) {
		t.Errorf("net: got %s, want %s", net.String(), want.String())
	}

	o, err := f.ledger.GetOrderInfo(ctx, orderID)
	if err != nil {
		t.Fatalf("GetOrderInfo: %v", err)
	}
	if !o.IsCompleted {
		t.Error("order not completed")
	}
	if !o.ReleasedQuota.Equal(o.TotalQuota) {
		t.Errorf("released %s != quota %s", o.ReleasedQuota.String(), o.TotalQuota.String())
	}

	g, err := f.ledger.GetGlobalStats(ctx)
	if err != nil {
		t.Fatalf("GetGlobalStats: %v", err)
	}
	if g.CompletedOrders != 1 {
		t.Errorf("CompletedOrders: got %d, want 1", g.CompletedOrders)
	}

	// A completed order accrues nothing further.
	f.clock.Advance(100 * day)
	if _, err := f.ledger.Withdraw(ctx, "alice"); !errors.Is(err, stakeledger.ErrNoRewards) {
		t.Errorf("withdraw after completion: got %v", err)
	}
}

func TestCompletedOrderInvalidatesTeamPerformance(t *testing.T) {
	// Lower the first team threshold so a single 100 stake promotes the
	// referrer, and its completion demotes again.
	cfg := config.Default()
	cfg.TeamLevels[1].RequiredPerformance = types.FromUnits(100)
	cfg.TeamLevels[1].AccelerationBonus = types.FromFraction(5, 100)

	ctx := context.Background()
	f := newFixture(t, stakeledger.WithConfig(cfg))
	if err := f.ledger.BindReferrer(ctx, "bob", "root"); err != nil {
		t.Fatalf("BindReferrer bob: %v", err)
	}
	f.token.Credit("alice", types.FromUnits(100))
	if err := f.ledger.BindReferrer(ctx, "alice", "bob"); err != nil {
		t.Fatalf("BindReferrer alice: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(100)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	info, err := f.ledger.GetUserInfo(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if !info.TeamPerformance.Equal(types.FromUnits(100)) {
		t.Fatalf("performance before completion: got %s, want 100", info.TeamPerformance.String())
	}
	if info.TeamLevel != 1 {
		t.Fatalf("team level before completion: got %d, want 1", info.TeamLevel)
	}

	// Level 1: quota 150 at 0.6%/day exhausts in 250 days.
	f.clock.Advance(300 * day)
	if _, err := f.ledger.GetClaimableRewards(ctx, "alice"); err != nil {
		t.Fatalf("settle alice: %v", err)
	}

	// The completed principal no longer counts upstream; bob demotes.
	info, err = f.ledger.GetUserInfo(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if !info.TeamPerformance.IsZero() {
		t.Errorf("performance after completion: got %s, want 0", info.TeamPerformance.String())
	}
	if info.TeamLevel != 0 {
		t.Errorf("team level after completion: got %d, want 0", info.TeamLevel)
	}
}

func TestPauseBlocksMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 1000)

	if err := f.ledger.Pause(ctx, "mallory"); !errors.Is(err, stakeledger.ErrUnauthorized) {
		t.Errorf("non-admin pause: got %v", err)
	}
	if err := f.ledger.Pause(ctx, "admin"); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !f.ledger.Paused() {
		t.Error("Paused() false after pause")
	}

	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); !errors.Is(err, stakeledger.ErrSystemPaused) {
		t.Errorf("stake while paused: got %v", err)
	}
	if _, err := f.ledger.Withdraw(ctx, "alice"); !errors.Is(err, stakeledger.ErrSystemPaused) {
		t.Errorf("withdraw while paused: got %v", err)
	}

	if err := f.ledger.Unpause(ctx, "admin"); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Errorf("stake after unpause: %v", err)
	}
}

func TestAdminConfigUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 1000)
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	if err := f.ledger.SetWithdrawalFee(ctx, "mallory", types.Zero()); !errors.Is(err, stakeledger.ErrUnauthorized) {
		t.Errorf("non-admin fee update: got %v", err)
	}
	if err := f.ledger.SetWithdrawalFee(ctx, "admin", types.One()); !errors.Is(err, stakeledger.ErrInvalidAmount) {
		t.Errorf("fee of 100%%: got %v", err)
	}
	if err := f.ledger.SetWithdrawalFee(ctx, "admin", types.FromUnits(-1)); !errors.Is(err, stakeledger.ErrInvalidAmount) {
		t.Errorf("negative fee: got %v", err)
	}
	if err := f.ledger.SetWithdrawalFee(ctx, "admin", types.Zero()); err != nil {
		t.Fatalf("SetWithdrawalFee: %v", err)
	}

	// With a zero fee the full static accrual pays out.
	f.clock.Advance(day)
	net, err := f.ledger.Withdraw(ctx, "alice")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if !net.Equal(types.FromUnits(9)) {
		t.Errorf("net with zero fee: got %s, want 9", net.String())
	}

	bad := config.Default()
	bad.RootUser = ""
	if err := f.ledger.UpdateConfig(ctx, "admin", bad); err == nil {
		t.Error("invalid config accepted")
	}
	if err := f.ledger.UpdateConfig(ctx, "admin", config.Default()); err != nil {
		t.Errorf("UpdateConfig: %v", err)
	}
}

func TestGlobalStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 1000)
	f.fund(t, "bob", 500)

	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "bob", types.FromUnits(500)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	g, err := f.ledger.GetGlobalStats(ctx)
	if err != nil {
		t.Fatalf("GetGlobalStats: %v", err)
	}
	if g.ActiveUsers != 2 {
		t.Errorf("ActiveUsers: got %d, want 2", g.ActiveUsers)
	}
	if !g.TotalDeposited.Equal(types.FromUnits(1500)) {
		t.Errorf("TotalDeposited: got %s, want 1500", g.TotalDeposited.String())
	}

	f.clock.Advance(day)
	net, err := f.ledger.Withdraw(ctx, "alice")
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	g, err = f.ledger.GetGlobalStats(ctx)
	if err != nil {
		t.Fatalf("GetGlobalStats: %v", err)
	}
	if !g.TotalPaidOut.Equal(net) || !g.TotalMinted.Equal(net) {
		t.Errorf("paid out %s / minted %s, want %s", g.TotalPaidOut.String(), g.TotalMinted.String(), net.String())
	}
	if !g.TotalFees.IsPositive() {
		t.Errorf("TotalFees: got %s", g.TotalFees.String())
	}
}

func TestGetUserInfoUnknownAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	info, err := f.ledger.GetUserInfo(ctx, "ghost")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if info.Addr != "ghost" || info.Referrer != "" || !info.TotalStaked.IsZero() {
		t.Errorf("unknown account projection: %+v", info)
	}

	claim, err := f.ledger.GetClaimableRewards(ctx, "ghost")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Static.IsZero() || !claim.Dynamic.IsZero() || !claim.Genesis.IsZero() {
		t.Errorf("unknown account claimable: %+v", claim)
	}
}

func TestGetTeamMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "bob", 1000)
	f.token.Credit("alice", types.FromUnits(500))
	if err := f.ledger.BindReferrer(ctx, "alice", "bob"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(500)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	members, err := f.ledger.GetTeamMembers(ctx, "bob")
	if err != nil {
		t.Fatalf("GetTeamMembers: %v", err)
	}
	if len(members) != 1 || members[0].Addr != "alice" {
		t.Fatalf("members: got %v", members)
	}
	if !members[0].TotalStaked.Equal(types.FromUnits(500)) {
		t.Errorf("member staked: got %s", members[0].TotalStaked.String())
	}
}

func TestLinearVestingDelaysDynamicRewards(t *testing.T) {
	cfg := config.Default()
	cfg.Vesting = config.VestingLinear
	cfg.VestingDuration = 100

	ctx := context.Background()
	f := newFixture(t, stakeledger.WithConfig(cfg))
	f.fund(t, "bob", 1000)
	f.token.Credit("alice", types.FromUnits(1000))
	if err := f.ledger.BindReferrer(ctx, "alice", "bob"); err != nil {
		t.Fatalf("BindReferrer: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "bob", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake bob: %v", err)
	}
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake alice: %v", err)
	}

	f.clock.Advance(day)
	if _, err := f.ledger.GetClaimableRewards(ctx, "alice"); err != nil {
		t.Fatalf("settle alice: %v", err)
	}

	// The direct credit of 0.9 starts its vesting schedule now; nothing is
	// claimable yet, while static yield still matures instantly.
	claim, err := f.ledger.GetClaimableRewards(ctx, "bob")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Dynamic.IsZero() {
		t.Errorf("dynamic before vesting: got %s", claim.Dynamic.String())
	}
	if !claim.Static.IsPositive() {
		t.Error("static yield must not vest")
	}

	// Halfway through the window half has matured.
	f.clock.Advance(50)
	claim, err = f.ledger.GetClaimableRewards(ctx, "bob")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Dynamic.Equal(types.FromFraction(45, 100)) {
		t.Errorf("dynamic at half window: got %s, want 0.45", claim.Dynamic.String())
	}

	// Past the window the full credit is claimable.
	f.clock.Advance(100)
	claim, err = f.ledger.GetClaimableRewards(ctx, "bob")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Dynamic.Equal(types.FromFraction(9, 10)) {
		t.Errorf("dynamic past window: got %s, want 0.9", claim.Dynamic.String())
	}
}

func TestPriceAffectsTokenConversion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fund(t, "alice", 1000)
	if _, err := f.ledger.Stake(ctx, "alice", types.FromUnits(1000)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	// At price 2, one day's 9 currency converts to 18 token.
	f.oracle.SetPrice(types.FromFraction(2, 1))
	f.clock.Advance(day)

	claim, err := f.ledger.GetClaimableRewards(ctx, "alice")
	if err != nil {
		t.Fatalf("GetClaimableRewards: %v", err)
	}
	if !claim.Static.Equal(types.FromUnits(18)) {
		t.Errorf("static at price 2: got %s, want 18", claim.Static.String())
	}
}
