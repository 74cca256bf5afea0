package stakeledger

import (
	"context"
	"errors"

	"github.com/xraph/stakeledger/referral"
	"github.com/xraph/stakeledger/user"
)

// BindReferrer binds addr to exactly one upline referrer, at most once.
// The configured root sentinel is always a valid referrer; any other
// referrer must already be known to the ledger. The edge is immutable once
// set, which keeps the referral structure a forest: edges are only added
// once and only toward existing accounts, so no account can ever become its
// own ancestor.
func (l *Ledger) BindReferrer(ctx context.Context, addr, referrer string) error {
	if addr == "" || referrer == "" {
		return ErrInvalidAddress
	}

	l.op.Lock()
	defer l.op.Unlock()

	// Validate against current state before creating anything, so a
	// rejected bind leaves no record behind.
	current := ""
	u, err := l.store.GetUser(ctx, addr)
	switch {
	case err == nil:
		current = u.Referrer
	case IsNotFound(err):
		u = nil
	default:
		return err
	}

	referrerExists := false
	if referrer != l.cfg.RootUser {
		referrerExists, err = l.store.UserExists(ctx, referrer)
		if err != nil {
			return err
		}
	}

	if err := referral.ValidateBind(addr, referrer, l.cfg.RootUser, current, referrerExists); err != nil {
		switch {
		case errors.Is(err, referral.ErrAlreadyBound):
			return ErrAlreadyBound
		case errors.Is(err, referral.ErrSelfReferral):
			return ErrSelfReferral
		case errors.Is(err, referral.ErrNotRegistered):
			return ErrReferrerNotRegistered
		default:
			return err
		}
	}

	if u == nil {
		u = user.New(addr)
		if err := l.store.CreateUser(ctx, u); err != nil {
			return err
		}
		if err := l.bumpActiveUsers(ctx); err != nil {
			return err
		}
		l.plugins.EmitUserRegistered(ctx, addr)
	}

	u.Referrer = referrer
	u.Touch()
	if err := l.store.UpdateUser(ctx, u); err != nil {
		return err
	}

	if referrer != l.cfg.RootUser {
		r, err := l.store.GetUser(ctx, referrer)
		if err != nil {
			return err
		}
		r.DirectReferrals = append(r.DirectReferrals, addr)
		r.Touch()
		if err := l.store.UpdateUser(ctx, r); err != nil {
			return err
		}
	}

	l.logger.Debug("referrer bound", "user", addr, "referrer", referrer)
	l.plugins.EmitReferrerBound(ctx, addr, referrer)
	return nil
}
