// Package audithook bridges StakeLedger lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/plugin"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin            = (*Extension)(nil)
	_ plugin.OnUserRegistered  = (*Extension)(nil)
	_ plugin.OnReferrerBound   = (*Extension)(nil)
	_ plugin.OnStakeCreated    = (*Extension)(nil)
	_ plugin.OnOrderCompleted  = (*Extension)(nil)
	_ plugin.OnGenesisApplied  = (*Extension)(nil)
	_ plugin.OnGenesisApproved = (*Extension)(nil)
	_ plugin.OnDividendAccrued = (*Extension)(nil)
	_ plugin.OnWithdrawal      = (*Extension)(nil)
	_ plugin.OnConfigUpdated   = (*Extension)(nil)
	_ plugin.OnPaused          = (*Extension)(nil)
	_ plugin.OnUnpaused        = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly; callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges StakeLedger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnUserRegistered implements plugin.OnUserRegistered.
func (e *Extension) OnUserRegistered(ctx context.Context, addr string) error {
	return e.record(ctx, ActionUserRegistered, SeverityInfo, OutcomeSuccess,
		ResourceUser, addr, CategoryAccount, nil,
		"addr", addr,
	)
}

// OnReferrerBound implements plugin.OnReferrerBound.
func (e *Extension) OnReferrerBound(ctx context.Context, user, referrer string) error {
	return e.record(ctx, ActionReferrerBound, SeverityInfo, OutcomeSuccess,
		ResourceUser, user, CategoryAccount, nil,
		"addr", user,
		"referrer", referrer,
	)
}

// ──────────────────────────────────────────────────
// Staking lifecycle hooks
// ──────────────────────────────────────────────────

// OnStakeCreated implements plugin.OnStakeCreated.
func (e *Extension) OnStakeCreated(ctx context.Context, o *order.Order) error {
	return e.record(ctx, ActionStakeCreated, SeverityInfo, OutcomeSuccess,
		ResourceOrder, fmt.Sprintf("%d", o.ID), CategoryStaking, nil,
		"addr", o.User,
		"level", o.Level,
		"amount", o.Amount.String(),
		"total_quota", o.TotalQuota.String(),
	)
}

// OnOrderCompleted implements plugin.OnOrderCompleted.
func (e *Extension) OnOrderCompleted(ctx context.Context, o *order.Order) error {
	return e.record(ctx, ActionOrderCompleted, SeverityInfo, OutcomeSuccess,
		ResourceOrder, fmt.Sprintf("%d", o.ID), CategoryStaking, nil,
		"addr", o.User,
		"released_quota", o.ReleasedQuota.String(),
	)
}

// ──────────────────────────────────────────────────
// Genesis lifecycle hooks
// ──────────────────────────────────────────────────

// OnGenesisApplied implements plugin.OnGenesisApplied.
func (e *Extension) OnGenesisApplied(ctx context.Context, a *genesis.Application) error {
	return e.record(ctx, ActionGenesisApplied, SeverityInfo, OutcomeSuccess,
		ResourceGenesis, a.User, CategoryGenesis, nil,
		"addr", a.User,
		"cost", a.Cost.String(),
	)
}

// OnGenesisApproved implements plugin.OnGenesisApproved.
func (e *Extension) OnGenesisApproved(ctx context.Context, addr string) error {
	return e.record(ctx, ActionGenesisApproved, SeverityWarning, OutcomeSuccess,
		ResourceGenesis, addr, CategoryGenesis, nil,
		"addr", addr,
	)
}

// OnDividendAccrued implements plugin.OnDividendAccrued.
func (e *Extension) OnDividendAccrued(ctx context.Context, amount types.Amount) error {
	return e.record(ctx, ActionDividendAccrued, SeverityInfo, OutcomeSuccess,
		ResourceGenesis, "", CategoryGenesis, nil,
		"amount", amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Withdrawal lifecycle hooks
// ──────────────────────────────────────────────────

// OnWithdrawal implements plugin.OnWithdrawal.
func (e *Extension) OnWithdrawal(ctx context.Context, w *reward.WithdrawRecord) error {
	return e.record(ctx, ActionWithdrawal, SeverityInfo, OutcomeSuccess,
		ResourceWithdrawal, w.ID.String(), CategoryPayout, nil,
		"addr", w.User,
		"gross", w.Gross.String(),
		"fee", w.Fee.String(),
		"net", w.Net.String(),
	)
}

// ──────────────────────────────────────────────────
// Administration lifecycle hooks
// ──────────────────────────────────────────────────

// OnConfigUpdated implements plugin.OnConfigUpdated.
func (e *Extension) OnConfigUpdated(ctx context.Context, cfg config.Config) error {
	return e.record(ctx, ActionConfigUpdated, SeverityWarning, OutcomeSuccess,
		ResourceConfig, "", CategoryAdministration, nil,
		"withdrawal_fee_rate", cfg.WithdrawalFeeRate.String(),
		"direct_rate", cfg.DirectRate.String(),
		"share_rate", cfg.ShareRate.String(),
		"genesis_rate", cfg.GenesisRate.String(),
	)
}

// OnPaused implements plugin.OnPaused.
func (e *Extension) OnPaused(ctx context.Context) error {
	return e.record(ctx, ActionPaused, SeverityCritical, OutcomeSuccess,
		ResourceSystem, "", CategoryAdministration, nil,
	)
}

// OnUnpaused implements plugin.OnUnpaused.
func (e *Extension) OnUnpaused(ctx context.Context) error {
	return e.record(ctx, ActionUnpaused, SeverityWarning, OutcomeSuccess,
		ResourceSystem, "", CategoryAdministration, nil,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
