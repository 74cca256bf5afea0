package audithook

// Action constants for audit events.
const (
	// Account actions
	ActionUserRegistered = "user.registered"
	ActionReferrerBound  = "referrer.bound"

	// Staking actions
	ActionStakeCreated   = "stake.created"
	ActionOrderCompleted = "order.completed"

	// Genesis actions
	ActionGenesisApplied  = "genesis.applied"
	ActionGenesisApproved = "genesis.approved"
	ActionDividendAccrued = "genesis.dividend.accrued"

	// Withdrawal actions
	ActionWithdrawal = "withdrawal.processed"

	// Administration actions
	ActionConfigUpdated = "config.updated"
	ActionPaused        = "system.paused"
	ActionUnpaused      = "system.unpaused"
)

// Resource constants for audit events.
const (
	ResourceUser       = "user"
	ResourceOrder      = "order"
	ResourceGenesis    = "genesis"
	ResourceWithdrawal = "withdrawal"
	ResourceConfig     = "config"
	ResourceSystem     = "system"
)

// Category constants for audit events.
const (
	CategoryAccount        = "account"
	CategoryStaking        = "staking"
	CategoryGenesis        = "genesis"
	CategoryPayout         = "payout"
	CategoryAdministration = "administration"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
