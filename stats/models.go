// Package stats holds the global aggregate counters every mutating
// operation maintains incrementally. There is exactly one record per ledger;
// figures are derived state and never consulted by settlement math.
package stats

import "github.com/xraph/stakeledger/types"

// Global is the ledger-wide counter set.
type Global struct {
	// TotalDeposited is lifetime staked principal, in stake currency.
	TotalDeposited types.Amount `json:"total_deposited"`

	// TotalPaidOut is lifetime reward token delivered to users net of fees.
	TotalPaidOut types.Amount `json:"total_paid_out"`

	// TotalFees is lifetime withdrawal fees retained, in reward token.
	TotalFees types.Amount `json:"total_fees"`

	// TotalMinted is lifetime reward token requested from the collaborator
	// module for payouts (net amounts actually minted/transferred).
	TotalMinted types.Amount `json:"total_minted"`

	// ActiveUsers counts accounts that have interacted at least once.
	ActiveUsers int64 `json:"active_users"`

	// CompletedOrders counts orders whose quota is exhausted.
	CompletedOrders int64 `json:"completed_orders"`
}
