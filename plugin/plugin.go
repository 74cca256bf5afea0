// Package plugin provides the extensibility surface of the staking ledger.
// Plugins hook into lifecycle events; the OnRewardDistributed hook is the
// canonical external feed: every credited bucket increment passes through
// it exactly once, in operation order.
package plugin

import (
	"context"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger interface{}) error
}

// OnShutdown is called when the ledger stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Account hooks
// ──────────────────────────────────────────────────

// OnUserRegistered is called the first time an account touches the ledger.
type OnUserRegistered interface {
	Plugin
	OnUserRegistered(ctx context.Context, addr string) error
}

// OnReferrerBound is called when an account binds its upline.
type OnReferrerBound interface {
	Plugin
	OnReferrerBound(ctx context.Context, user, referrer string) error
}

// ──────────────────────────────────────────────────
// Staking hooks
// ──────────────────────────────────────────────────

// OnStakeCreated is called when a new order is opened.
type OnStakeCreated interface {
	Plugin
	OnStakeCreated(ctx context.Context, o *order.Order) error
}

// OnOrderSettled is called after every settlement pass with positive accrual.
type OnOrderSettled interface {
	Plugin
	OnOrderSettled(ctx context.Context, o *order.Order, acc order.Accrual) error
}

// OnOrderCompleted is called when an order exhausts its quota.
type OnOrderCompleted interface {
	Plugin
	OnOrderCompleted(ctx context.Context, o *order.Order) error
}

// OnRewardDistributed is called for every credited bucket increment.
type OnRewardDistributed interface {
	Plugin
	OnRewardDistributed(ctx context.Context, r *reward.Record) error
}

// ──────────────────────────────────────────────────
// Genesis-node hooks
// ──────────────────────────────────────────────────

// OnGenesisApplied is called when an admission application is enqueued.
type OnGenesisApplied interface {
	Plugin
	OnGenesisApplied(ctx context.Context, a *genesis.Application) error
}

// OnGenesisApproved is called when an applicant becomes an active node.
type OnGenesisApproved interface {
	Plugin
	OnGenesisApproved(ctx context.Context, addr string) error
}

// OnDividendAccrued is called when currency flows into the dividend pool.
type OnDividendAccrued interface {
	Plugin
	OnDividendAccrued(ctx context.Context, amount types.Amount) error
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnWithdrawal is called after a successful withdrawal.
type OnWithdrawal interface {
	Plugin
	OnWithdrawal(ctx context.Context, w *reward.WithdrawRecord) error
}

// ──────────────────────────────────────────────────
// Administration hooks
// ──────────────────────────────────────────────────

// OnConfigUpdated is called when a new parameter snapshot is installed.
type OnConfigUpdated interface {
	Plugin
	OnConfigUpdated(ctx context.Context, cfg config.Config) error
}

// OnPaused is called when the system is paused.
type OnPaused interface {
	Plugin
	OnPaused(ctx context.Context) error
}

// OnUnpaused is called when the system is unpaused.
type OnUnpaused interface {
	Plugin
	OnUnpaused(ctx context.Context) error
}
