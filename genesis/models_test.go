package genesis

import (
	"math/big"
	"testing"

	"github.com/xraph/stakeledger/types"
)

func TestAccrueNoNodesParksInBalance(t *testing.T) {
	var p Pool
	p.Accrue(types.FromUnits(100))

	if !p.Balance.Equal(types.FromUnits(100)) {
		t.Errorf("Balance: got %s, want 100", p.Balance.String())
	}
	if !p.Accumulator.IsZero() {
		t.Errorf("Accumulator advanced with no nodes: %s", p.Accumulator.String())
	}
	if !p.TotalInflow.Equal(types.FromUnits(100)) {
		t.Errorf("TotalInflow: got %s", p.TotalInflow.String())
	}
}

func TestAccrueDistributesEvenly(t *testing.T) {
	var p Pool
	p.Admit("a")
	p.Admit("b")

	p.Accrue(types.FromUnits(100))

	if !p.Accumulator.Equal(types.FromUnits(50)) {
		t.Errorf("Accumulator: got %s, want 50", p.Accumulator.String())
	}
	if !p.Balance.IsZero() {
		t.Errorf("Balance: got %s, want 0", p.Balance.String())
	}
}

func TestAccrueFloorsDustIntoBalance(t *testing.T) {
	var p Pool
	p.Admit("a")
	p.Admit("b")
	p.Admit("c")

	p.Accrue(types.FromUnits(10))

	// 10/3 floors; one wei of dust stays behind.
	perNode := types.FromUnits(10).DivInt(3)
	if !p.Accumulator.Equal(perNode) {
		t.Errorf("Accumulator: got %s, want %s", p.Accumulator.RawString(), perNode.RawString())
	}
	dust := types.FromUnits(10).Sub(perNode.MulInt(3))
	if !p.Balance.Equal(dust) {
		t.Errorf("Balance dust: got %s, want %s", p.Balance.RawString(), dust.RawString())
	}

	// Conservation: per-node entitlements plus balance equal total inflow.
	total := p.Accumulator.MulInt(3).Add(p.Balance)
	if !total.Equal(p.TotalInflow) {
		t.Errorf("conservation violated: %s != %s", total.RawString(), p.TotalInflow.RawString())
	}
}

func TestAccrueSweepsParkedBalance(t *testing.T) {
	var p Pool
	p.Accrue(types.FromUnits(30)) // parks, no nodes yet
	p.Admit("a")
	p.Accrue(types.FromUnits(10))

	// The parked 30 distributes together with the new 10.
	if !p.Accumulator.Equal(types.FromUnits(40)) {
		t.Errorf("Accumulator: got %s, want 40", p.Accumulator.String())
	}
	if !p.Balance.IsZero() {
		t.Errorf("Balance: got %s", p.Balance.String())
	}
}

func TestAccrueIgnoresNonPositive(t *testing.T) {
	var p Pool
	p.Admit("a")
	p.Accrue(types.Zero())
	p.Accrue(types.FromUnits(-5))

	if !p.TotalInflow.IsZero() || !p.Accumulator.IsZero() {
		t.Error("non-positive inflow mutated the pool")
	}
}

func TestClaimableFor(t *testing.T) {
	var p Pool
	p.Admit("a")
	p.Accrue(types.FromUnits(100))

	// A node admitted at accumulator zero claims everything.
	if got := p.ClaimableFor(types.Zero()); !got.Equal(types.FromUnits(100)) {
		t.Errorf("claimable from zero debt: got %s", got.String())
	}

	// A node whose debt snapshots the current accumulator claims nothing.
	if got := p.ClaimableFor(p.Accumulator); !got.IsZero() {
		t.Errorf("claimable at current debt: got %s", got.String())
	}

	// Debt above the accumulator floors at zero rather than going negative.
	if got := p.ClaimableFor(types.FromUnits(999)); !got.IsZero() {
		t.Errorf("claimable with excess debt: got %s", got.String())
	}
}

func TestAdmissionIsNotRetroactive(t *testing.T) {
	var p Pool
	p.Admit("a")
	p.Accrue(types.FromUnits(100))

	// "b" joins after the first accrual, snapshotting the accumulator.
	p.Admit("b")
	debtB := p.Accumulator

	p.Accrue(types.FromUnits(50))

	if got := p.ClaimableFor(debtB); !got.Equal(types.FromUnits(25)) {
		t.Errorf("late joiner claimable: got %s, want 25", got.String())
	}
	if got := p.ClaimableFor(types.Zero()); !got.Equal(types.FromUnits(125)) {
		t.Errorf("founder claimable: got %s, want 125", got.String())
	}
}

func TestIsActive(t *testing.T) {
	var p Pool
	if p.IsActive("a") {
		t.Error("empty pool reported an active node")
	}
	p.Admit("a")
	if !p.IsActive("a") || p.IsActive("b") {
		t.Error("IsActive mismatch after admit")
	}
}

// Dust never leaks: across many uneven accruals the accumulator times node
// count plus the remaining balance always equals cumulative inflow.
func TestConservationAcrossAccruals(t *testing.T) {
	var p Pool
	p.Admit("a")
	p.Admit("b")
	p.Admit("c")

	inflows := []int64{1, 7, 13, 100, 999, 2}
	for _, n := range inflows {
		p.Accrue(types.FromRaw(big.NewInt(n)))
	}

	var want int64
	for _, n := range inflows {
		want += n
	}
	total := p.Accumulator.MulInt(3).Add(p.Balance)
	if !total.Equal(types.FromRaw(big.NewInt(want))) {
		t.Errorf("conservation violated: %s != %d", total.RawString(), want)
	}
}
