// Package genesis models the admission-gated dividend pool shared by all
// active genesis nodes. Claims use the classic debt-accumulator pattern:
// the pool keeps a monotonically increasing per-node accumulator, each node
// snapshots it as debt on admission and on every claim, and claimable is
// simply accumulator minus debt, O(1) regardless of node count.
package genesis

import (
	"github.com/xraph/stakeledger/id"
	"github.com/xraph/stakeledger/types"
)

// Pool is the global dividend state. One record per ledger.
type Pool struct {
	// Balance is the undistributed currency sitting in the pool,
	// including flooring dust that accrual could not split evenly.
	Balance types.Amount `json:"balance"`

	// Accumulator is the cumulative dividend per active node, in stake
	// currency. Monotonically non-decreasing.
	Accumulator types.Amount `json:"accumulator"`

	// TotalInflow is the lifetime currency paid into the pool.
	TotalInflow types.Amount `json:"total_inflow"`

	// ActiveNodes preserves approval order.
	ActiveNodes []string `json:"active_nodes"`
}

// Accrue adds inflow to the pool and advances the accumulator by the
// equal per-node share. With no active nodes the inflow parks in the
// balance and distributes with the next accrual after admission. The
// per-node division floors; the remainder stays in Balance, so the sum
// of all node entitlements never exceeds cumulative inflow.
func (p *Pool) Accrue(amount types.Amount) {
	if !amount.IsPositive() {
		return
	}
	p.TotalInflow = p.TotalInflow.Add(amount)
	p.Balance = p.Balance.Add(amount)
	n := int64(len(p.ActiveNodes))
	if n == 0 {
		return
	}
	perNode := p.Balance.DivInt(n)
	if !perNode.IsPositive() {
		return
	}
	p.Accumulator = p.Accumulator.Add(perNode)
	p.Balance = p.Balance.Sub(perNode.MulInt(n))
}

// Admit adds a node to the active set. The caller snapshots the current
// Accumulator as the node's reward debt so admission is never retroactive.
func (p *Pool) Admit(addr string) {
	p.ActiveNodes = append(p.ActiveNodes, addr)
}

// IsActive reports whether addr is an active node.
func (p *Pool) IsActive(addr string) bool {
	for _, n := range p.ActiveNodes {
		if n == addr {
			return true
		}
	}
	return false
}

// ClaimableFor returns accumulator minus debt, floored at zero.
func (p *Pool) ClaimableFor(debt types.Amount) types.Amount {
	c := p.Accumulator.Sub(debt)
	if c.IsNegative() {
		return types.Zero()
	}
	return c
}

// Application is one pending admission request.
type Application struct {
	ID        id.ApplicationID `json:"id"`
	User      string           `json:"user"`
	Cost      types.Amount     `json:"cost"`
	AppliedAt int64            `json:"applied_at"`
}
