package stakeledger

import (
	"context"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/types"
)

// UpdateConfig replaces the active parameter set. Only the configured admin
// may call it, and the new configuration must validate. Orders already
// settled keep their historical accruals; the new rates apply from the next
// settlement onward.
func (l *Ledger) UpdateConfig(ctx context.Context, caller string, cfg config.Config) error {
	l.op.Lock()
	defer l.op.Unlock()

	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l.cfg = cfg
	l.logger.Info("configuration updated", "caller", caller)
	l.plugins.EmitConfigUpdated(ctx, cfg)
	return nil
}

// SetWithdrawalFee changes only the withdrawal fee rate. The rate is a
// fraction of gross payout and must stay below one.
func (l *Ledger) SetWithdrawalFee(ctx context.Context, caller string, rate types.Amount) error {
	l.op.Lock()
	defer l.op.Unlock()

	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if rate.IsNegative() || !rate.LessThan(types.One()) {
		return ErrInvalidAmount
	}

	l.cfg.WithdrawalFeeRate = rate
	l.logger.Info("withdrawal fee updated", "caller", caller, "rate", rate.String())
	l.plugins.EmitConfigUpdated(ctx, l.cfg)
	return nil
}

// Pause halts staking and withdrawals. Read operations and lazy settlement
// keep working so accrual is unaffected. Idempotent.
func (l *Ledger) Pause(ctx context.Context, caller string) error {
	l.op.Lock()
	defer l.op.Unlock()

	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if l.paused {
		return nil
	}
	l.paused = true
	l.logger.Info("ledger paused", "caller", caller)
	l.plugins.EmitPaused(ctx)
	return nil
}

// Unpause resumes staking and withdrawals. Idempotent.
func (l *Ledger) Unpause(ctx context.Context, caller string) error {
	l.op.Lock()
	defer l.op.Unlock()

	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if !l.paused {
		return nil
	}
	l.paused = false
	l.logger.Info("ledger unpaused", "caller", caller)
	l.plugins.EmitUnpaused(ctx)
	return nil
}
