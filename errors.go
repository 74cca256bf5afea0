package stakeledger

import "errors"

// Sentinel errors forming the closed failure taxonomy. Every mutating
// operation either fully applies its state transition or fails with exactly
// one of these and no partial effect.
var (
	// Input errors
	ErrInvalidAddress = errors.New("stakeledger: invalid address")
	ErrInvalidAmount  = errors.New("stakeledger: invalid amount")

	// Referral errors
	ErrAlreadyBound          = errors.New("stakeledger: referrer already bound")
	ErrSelfReferral          = errors.New("stakeledger: cannot refer yourself")
	ErrReferrerNotRegistered = errors.New("stakeledger: referrer not registered")
	ErrMustBindReferrer      = errors.New("stakeledger: must bind a referrer first")

	// Staking errors
	ErrBelowMinimum  = errors.New("stakeledger: amount below minimum staking level")
	ErrAboveMaximum  = errors.New("stakeledger: amount above maximum staking level")
	ErrBetweenLevels = errors.New("stakeledger: amount falls between staking levels")

	// Genesis-node errors
	ErrAlreadyGenesisNode   = errors.New("stakeledger: already a genesis node")
	ErrApplicationPending   = errors.New("stakeledger: application already pending")
	ErrNoPendingApplication = errors.New("stakeledger: no pending application")
	ErrInsufficientBalance  = errors.New("stakeledger: insufficient balance")
	// ErrNotGenesisNode is not returned by any engine operation: dividend
	// claims fold into Withdraw, which pays zero genesis for non-nodes.
	// Kept for callers gating genesis-only surfaces.
	ErrNotGenesisNode = errors.New("stakeledger: not a genesis node")

	// Withdrawal errors
	ErrNoRewards = errors.New("stakeledger: nothing to withdraw")

	// Control errors
	ErrUnauthorized = errors.New("stakeledger: unauthorized")
	ErrSystemPaused = errors.New("stakeledger: system paused")
	// ErrOverflow is not returned by the engine: amount arithmetic runs on
	// big.Int. Reserved for store backends with bounded numeric columns.
	ErrOverflow = errors.New("stakeledger: arithmetic overflow")

	// Store errors
	ErrUserNotFound    = errors.New("stakeledger: user not found")
	ErrOrderNotFound   = errors.New("stakeledger: order not found")
	ErrAlreadyExists   = errors.New("stakeledger: already exists")
	ErrStoreClosed     = errors.New("stakeledger: store is closed")
	ErrMigrationFailed = errors.New("stakeledger: migration failed")

	// Collaborator errors
	ErrOracleUnavailable = errors.New("stakeledger: price oracle unavailable")
)

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrNoPendingApplication)
}

// IsUserFault reports whether err was caused by the caller's request rather
// than ledger or collaborator state. Resubmitting an identical request will
// fail again.
func IsUserFault(err error) bool {
	return errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAlreadyBound) ||
		errors.Is(err, ErrSelfReferral) ||
		errors.Is(err, ErrReferrerNotRegistered) ||
		errors.Is(err, ErrMustBindReferrer) ||
		errors.Is(err, ErrBelowMinimum) ||
		errors.Is(err, ErrAboveMaximum) ||
		errors.Is(err, ErrBetweenLevels) ||
		errors.Is(err, ErrAlreadyGenesisNode) ||
		errors.Is(err, ErrApplicationPending) ||
		errors.Is(err, ErrNotGenesisNode) ||
		errors.Is(err, ErrNoRewards) ||
		errors.Is(err, ErrUnauthorized)
}

// IsRetryable reports whether err is temporary and the same request may
// succeed later without changes.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSystemPaused) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrStoreClosed) ||
		errors.Is(err, ErrOracleUnavailable)
}
