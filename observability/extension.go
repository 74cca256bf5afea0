// Package observability provides a metrics extension for StakeLedger that
// records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"math/big"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/plugin"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnUserRegistered    = (*MetricsExtension)(nil)
	_ plugin.OnReferrerBound     = (*MetricsExtension)(nil)
	_ plugin.OnStakeCreated      = (*MetricsExtension)(nil)
	_ plugin.OnOrderSettled      = (*MetricsExtension)(nil)
	_ plugin.OnOrderCompleted    = (*MetricsExtension)(nil)
	_ plugin.OnRewardDistributed = (*MetricsExtension)(nil)
	_ plugin.OnGenesisApplied    = (*MetricsExtension)(nil)
	_ plugin.OnGenesisApproved   = (*MetricsExtension)(nil)
	_ plugin.OnDividendAccrued   = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawal        = (*MetricsExtension)(nil)
	_ plugin.OnConfigUpdated     = (*MetricsExtension)(nil)
	_ plugin.OnPaused            = (*MetricsExtension)(nil)
	_ plugin.OnUnpaused          = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a ledger plugin to automatically track staking metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Account metrics
	UsersRegistered Counter
	ReferrersBound  Counter

	// Staking metrics
	StakesCreated   Counter
	StakeAmount     Histogram
	OrdersSettled   Counter
	OrdersCompleted Counter
	AccrualAmount   Histogram

	// Reward metrics, one counter per kind
	StaticRewards  Counter
	DirectRewards  Counter
	ShareRewards   Counter
	TeamRewards    Counter
	GenesisRewards Counter

	// Genesis metrics
	GenesisApplications Counter
	GenesisApprovals    Counter
	DividendAccruals    Counter
	DividendInflow      Histogram

	// Withdrawal metrics
	Withdrawals     Counter
	WithdrawalGross Histogram
	WithdrawalFees  Histogram

	// Administration metrics
	ConfigUpdates Counter
	Pauses        Counter
	Unpauses      Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Account metrics
		UsersRegistered: factory.Counter("stakeledger.user.registered"),
		ReferrersBound:  factory.Counter("stakeledger.referrer.bound"),

		// Staking metrics
		StakesCreated:   factory.Counter("stakeledger.stake.created"),
		StakeAmount:     factory.Histogram("stakeledger.stake.amount"),
		OrdersSettled:   factory.Counter("stakeledger.order.settled"),
		OrdersCompleted: factory.Counter("stakeledger.order.completed"),
		AccrualAmount:   factory.Histogram("stakeledger.order.accrual_amount"),

		// Reward metrics
		StaticRewards:  factory.Counter("stakeledger.reward.static"),
		DirectRewards:  factory.Counter("stakeledger.reward.direct"),
		ShareRewards:   factory.Counter("stakeledger.reward.share"),
		TeamRewards:    factory.Counter("stakeledger.reward.team"),
		GenesisRewards: factory.Counter("stakeledger.reward.genesis"),

		// Genesis metrics
		GenesisApplications: factory.Counter("stakeledger.genesis.applications"),
		GenesisApprovals:    factory.Counter("stakeledger.genesis.approvals"),
		DividendAccruals:    factory.Counter("stakeledger.genesis.dividend.accruals"),
		DividendInflow:      factory.Histogram("stakeledger.genesis.dividend.inflow"),

		// Withdrawal metrics
		Withdrawals:     factory.Counter("stakeledger.withdrawal.count"),
		WithdrawalGross: factory.Histogram("stakeledger.withdrawal.gross"),
		WithdrawalFees:  factory.Histogram("stakeledger.withdrawal.fee"),

		// Administration metrics
		ConfigUpdates: factory.Counter("stakeledger.config.updates"),
		Pauses:        factory.Counter("stakeledger.paused"),
		Unpauses:      factory.Counter("stakeledger.unpaused"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Account hooks
// ──────────────────────────────────────────────────

// OnUserRegistered implements plugin.OnUserRegistered.
func (m *MetricsExtension) OnUserRegistered(_ context.Context, _ string) error {
	m.UsersRegistered.Inc()
	return nil
}

// OnReferrerBound implements plugin.OnReferrerBound.
func (m *MetricsExtension) OnReferrerBound(_ context.Context, _, _ string) error {
	m.ReferrersBound.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Staking hooks
// ──────────────────────────────────────────────────

// OnStakeCreated implements plugin.OnStakeCreated.
func (m *MetricsExtension) OnStakeCreated(_ context.Context, o *order.Order) error {
	m.StakesCreated.Inc()
	m.StakeAmount.Observe(amountValue(o.Amount))
	return nil
}

// OnOrderSettled implements plugin.OnOrderSettled.
func (m *MetricsExtension) OnOrderSettled(_ context.Context, _ *order.Order, acc order.Accrual) error {
	m.OrdersSettled.Inc()
	m.AccrualAmount.Observe(amountValue(acc.Currency))
	return nil
}

// OnOrderCompleted implements plugin.OnOrderCompleted.
func (m *MetricsExtension) OnOrderCompleted(_ context.Context, _ *order.Order) error {
	m.OrdersCompleted.Inc()
	return nil
}

// OnRewardDistributed implements plugin.OnRewardDistributed.
func (m *MetricsExtension) OnRewardDistributed(_ context.Context, r *reward.Record) error {
	switch r.Kind {
	case reward.KindStatic:
		m.StaticRewards.Inc()
	case reward.KindDirect:
		m.DirectRewards.Inc()
	case reward.KindShare:
		m.ShareRewards.Inc()
	case reward.KindTeam:
		m.TeamRewards.Inc()
	case reward.KindGenesis:
		m.GenesisRewards.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Genesis-node hooks
// ──────────────────────────────────────────────────

// OnGenesisApplied implements plugin.OnGenesisApplied.
func (m *MetricsExtension) OnGenesisApplied(_ context.Context, _ *genesis.Application) error {
	m.GenesisApplications.Inc()
	return nil
}

// OnGenesisApproved implements plugin.OnGenesisApproved.
func (m *MetricsExtension) OnGenesisApproved(_ context.Context, _ string) error {
	m.GenesisApprovals.Inc()
	return nil
}

// OnDividendAccrued implements plugin.OnDividendAccrued.
func (m *MetricsExtension) OnDividendAccrued(_ context.Context, amount types.Amount) error {
	m.DividendAccruals.Inc()
	m.DividendInflow.Observe(amountValue(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnWithdrawal implements plugin.OnWithdrawal.
func (m *MetricsExtension) OnWithdrawal(_ context.Context, w *reward.WithdrawRecord) error {
	m.Withdrawals.Inc()
	m.WithdrawalGross.Observe(amountValue(w.Gross))
	m.WithdrawalFees.Observe(amountValue(w.Fee))
	return nil
}

// ──────────────────────────────────────────────────
// Administration hooks
// ──────────────────────────────────────────────────

// OnConfigUpdated implements plugin.OnConfigUpdated.
func (m *MetricsExtension) OnConfigUpdated(_ context.Context, _ config.Config) error {
	m.ConfigUpdates.Inc()
	return nil
}

// OnPaused implements plugin.OnPaused.
func (m *MetricsExtension) OnPaused(_ context.Context) error {
	m.Pauses.Inc()
	return nil
}

// OnUnpaused implements plugin.OnUnpaused.
func (m *MetricsExtension) OnUnpaused(_ context.Context) error {
	m.Unpauses.Inc()
	return nil
}

// amountValue converts an 18-decimal amount to a float for histogram
// observation. Precision loss is acceptable for metrics.
func amountValue(a types.Amount) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(a.Raw()), big.NewFloat(1e18)).Float64()
	return f
}
