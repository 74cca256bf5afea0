package reward

import (
	"github.com/xraph/stakeledger/id"
	"github.com/xraph/stakeledger/types"
)

// Kind classifies a reward credit.
type Kind string

const (
	// KindStatic is yield accrued from the user's own staked order.
	KindStatic Kind = "static"

	// KindDirect is the direct-referral cut of a downstream accrual.
	KindDirect Kind = "direct"

	// KindShare is the team-share cut credited to qualifying ancestors.
	KindShare Kind = "share"

	// KindTeam is the team-acceleration cut credited per team level.
	KindTeam Kind = "team"

	// KindGenesis is a genesis-node dividend claim.
	KindGenesis Kind = "genesis"
)

// Valid reports whether k is a member of the closed taxonomy.
func (k Kind) Valid() bool {
	switch k {
	case KindStatic, KindDirect, KindShare, KindTeam, KindGenesis:
		return true
	}
	return false
}

// Record is one immutable reward credit. FromUser is the downstream user
// whose activity generated the reward; for static and genesis credits it
// equals User.
type Record struct {
	ID             id.RewardID  `json:"id"`
	User           string       `json:"user"`
	FromUser       string       `json:"from_user"`
	Kind           Kind         `json:"kind"`
	Timestamp      int64        `json:"timestamp"`
	CurrencyAmount types.Amount `json:"currency_amount"`
	TokenAmount    types.Amount `json:"token_amount"`
}

// WithdrawRecord is one immutable withdrawal. Gross and Fee are denominated
// in reward token; Net is what was actually minted/transferred out.
type WithdrawRecord struct {
	ID        id.WithdrawalID `json:"id"`
	User      string          `json:"user"`
	Timestamp int64           `json:"timestamp"`
	Gross     types.Amount    `json:"gross"`
	Fee       types.Amount    `json:"fee"`
	Net       types.Amount    `json:"net"`

	// Per-bucket token breakdown of the gross amount.
	Static  types.Amount `json:"static"`
	Dynamic types.Amount `json:"dynamic"`
	Genesis types.Amount `json:"genesis"`
}

// ListOpts pages through append-only record logs, newest first.
type ListOpts struct {
	Limit  int
	Offset int
}
