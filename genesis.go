package stakeledger

import (
	"context"
	"errors"

	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/id"
	"github.com/xraph/stakeledger/token"
	"github.com/xraph/stakeledger/types"
)

// ApplyForGenesisNode enqueues addr for genesis-node admission, charging
// the configured admission cost up front. Depending on configuration the
// cost flows into the dividend pool (immediately distributed across the
// current active nodes) or stays with the treasury.
func (l *Ledger) ApplyForGenesisNode(ctx context.Context, addr string) error {
	if addr == "" {
		return ErrInvalidAddress
	}

	l.op.Lock()
	defer l.op.Unlock()

	u, err := l.loadOrCreateUser(ctx, addr)
	if err != nil {
		return err
	}
	if u.IsGenesisNode {
		return ErrAlreadyGenesisNode
	}
	if _, err := l.store.GetApplication(ctx, addr); err == nil {
		return ErrApplicationPending
	} else if !IsNotFound(err) {
		return err
	}

	cost := l.cfg.GenesisNodeCost
	if err := l.token.PullPayment(ctx, addr, cost); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return err
	}

	now := l.now()
	if l.cfg.GenesisCostToPool && cost.IsPositive() {
		pool, err := l.store.GetGenesisPool(ctx)
		if err != nil {
			return err
		}
		pool.Accrue(cost)
		if err := l.store.SaveGenesisPool(ctx, pool); err != nil {
			return err
		}
		l.plugins.EmitDividendAccrued(ctx, cost)
	}

	app := &genesis.Application{
		ID:        id.NewApplicationID(),
		User:      addr,
		Cost:      cost,
		AppliedAt: now,
	}
	if err := l.store.CreateApplication(ctx, app); err != nil {
		return err
	}

	l.logger.Info("genesis application enqueued", "user", addr, "cost", cost.String())
	l.plugins.EmitGenesisApplied(ctx, app)
	return nil
}

// ApproveGenesisNode moves a pending applicant into the active node set.
// The node's reward debt is initialized to the current accumulator so it
// cannot retroactively claim dividends accrued before joining.
func (l *Ledger) ApproveGenesisNode(ctx context.Context, caller, applicant string) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if applicant == "" {
		return ErrInvalidAddress
	}

	l.op.Lock()
	defer l.op.Unlock()

	app, err := l.store.GetApplication(ctx, applicant)
	if err != nil {
		if IsNotFound(err) {
			return ErrNoPendingApplication
		}
		return err
	}

	u, err := l.store.GetUser(ctx, applicant)
	if err != nil {
		return err
	}

	pool, err := l.store.GetGenesisPool(ctx)
	if err != nil {
		return err
	}

	u.IsGenesisNode = true
	u.GenesisRewardDebt = pool.Accumulator
	u.Touch()
	pool.Admit(applicant)

	if err := l.store.UpdateUser(ctx, u); err != nil {
		return err
	}
	if err := l.store.SaveGenesisPool(ctx, pool); err != nil {
		return err
	}
	if err := l.store.DeleteApplication(ctx, applicant); err != nil {
		return err
	}

	l.logger.Info("genesis node approved", "user", applicant, "applied_at", app.AppliedAt)
	l.plugins.EmitGenesisApproved(ctx, applicant)
	return nil
}

// AccrueDividend pays external currency inflow into the genesis dividend
// pool, advancing the shared accumulator by the equal per-node share.
// Admin-gated: this is the entry point the collaborator token subsystem's
// operator uses to forward dividend revenue.
func (l *Ledger) AccrueDividend(ctx context.Context, caller string, amount types.Amount) error {
	if err := l.requireAdmin(caller); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.op.Lock()
	defer l.op.Unlock()

	pool, err := l.store.GetGenesisPool(ctx)
	if err != nil {
		return err
	}
	pool.Accrue(amount)
	if err := l.store.SaveGenesisPool(ctx, pool); err != nil {
		return err
	}

	l.plugins.EmitDividendAccrued(ctx, amount)
	return nil
}
