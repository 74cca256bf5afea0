// Package stakeledger provides an embeddable staking and reward
// distribution ledger for Go applications.
//
// StakeLedger is designed as a library, not a service. Import it directly
// into your Go application and drive it from your own transport. It provides:
//
//   - Quota-capped staking orders with lazy, time-based yield accrual
//   - Multi-level referral rewards (direct, share, team acceleration)
//   - A genesis-node dividend pool using a debt accumulator
//   - Pluggable price oracles (fixed or liquidity-pair derived)
//   - Withdrawal processing with configurable fees and vesting
//   - Pluggable storage (memory, Postgres, SQLite, MongoDB)
//   - An event plugin system for audit trails and metrics
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/xraph/stakeledger"
//	    "github.com/xraph/stakeledger/store/memory"
//	    "github.com/xraph/stakeledger/token"
//	)
//
//	store := memory.New()
//	bank := token.NewMemory()
//
//	l := stakeledger.New(store,
//	    stakeledger.WithToken(bank),
//	    stakeledger.WithAdmin("admin"),
//	)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Bind a referrer, then stake
//	if err := l.BindReferrer(ctx, "alice", "root"); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := l.Stake(ctx, "alice", stakeledger.FromUnits(1000)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Arithmetic
//
// All value calculations use fixed-point integer arithmetic over big.Int
// with 18 decimal places. Division always rounds down, so rounding error
// accumulates in the ledger's favor and balances never overshoot their
// quotas. The Amount type is immutable; every operation returns a new value.
//
// # Settlement
//
// Yield is never pushed. Each order records its last settlement instant and
// accrues lazily whenever it is next touched by a stake, withdrawal or read
// query. Settlement is a pure function of the order and the elapsed time, so
// settling twice at the same instant is a no-op.
//
// # TypeID
//
// Reward and withdrawal records use TypeID for globally unique, type-safe
// identifiers:
//
//	rwd_01h2xcejqtf2nbrexx3vqjhp41  // Reward record
//	wdr_01h2xcejqtf2nbrexx3vqjhp41  // Withdrawal record
//	gna_01h455vb4pex5vsknk084sn02q  // Genesis node application
//
// TypeIDs are K-sortable, providing natural time-ordering of records.
// Staking orders instead use a monotonic uint64 sequence issued by the
// store, matching how order books are usually keyed.
package stakeledger
