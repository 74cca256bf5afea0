package user

import (
	"testing"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/types"
)

func TestBucketInstantVesting(t *testing.T) {
	var b Bucket
	b.Credit(types.FromUnits(100), 10, config.VestingInstant, 0)

	if !b.Total.Equal(types.FromUnits(100)) {
		t.Errorf("Total: got %s", b.Total.String())
	}
	if !b.Released.Equal(types.FromUnits(100)) {
		t.Errorf("instant credit not fully released: %s", b.Released.String())
	}
	if !b.Claimable().Equal(types.FromUnits(100)) {
		t.Errorf("Claimable: got %s", b.Claimable().String())
	}
}

func TestBucketLinearVesting(t *testing.T) {
	const duration = 100

	var b Bucket
	b.Credit(types.FromUnits(100), 0, config.VestingLinear, duration)

	if !b.Released.IsZero() {
		t.Errorf("linear credit released immediately: %s", b.Released.String())
	}

	// Halfway through the window half has matured.
	b.ReleaseAt(50, config.VestingLinear, duration)
	if !b.Released.Equal(types.FromUnits(50)) {
		t.Errorf("at t=50: got %s, want 50", b.Released.String())
	}

	// Far past the window everything has matured.
	b.ReleaseAt(500, config.VestingLinear, duration)
	if !b.Released.Equal(types.FromUnits(100)) {
		t.Errorf("past window: got %s, want 100", b.Released.String())
	}
}

func TestBucketReleaseNeverExceedsTotal(t *testing.T) {
	var b Bucket
	b.Credit(types.FromUnits(10), 0, config.VestingLinear, 100)

	// Repeated small releases floor each step; the sum must never pass Total.
	for now := int64(1); now <= 300; now += 7 {
		b.ReleaseAt(now, config.VestingLinear, 100)
		if b.Released.GreaterThan(b.Total) {
			t.Fatalf("at t=%d released %s > total %s", now, b.Released.String(), b.Total.String())
		}
	}

	// A jump of a full window from the last update drains the remainder.
	b.ReleaseAt(b.LastUpdate+100, config.VestingLinear, 100)
	if !b.Released.Equal(b.Total) {
		t.Errorf("final release: got %s, want %s", b.Released.String(), b.Total.String())
	}
}

func TestBucketCreditReleasesPendingFirst(t *testing.T) {
	var b Bucket
	b.Credit(types.FromUnits(100), 0, config.VestingLinear, 100)

	// At t=50 the second credit first matures 50 of the pending 100, then
	// starts its own schedule over the combined remainder.
	b.Credit(types.FromUnits(100), 50, config.VestingLinear, 100)

	if !b.Total.Equal(types.FromUnits(200)) {
		t.Errorf("Total: got %s", b.Total.String())
	}
	if !b.Released.Equal(types.FromUnits(50)) {
		t.Errorf("Released after second credit: got %s, want 50", b.Released.String())
	}
	if b.LastUpdate != 50 {
		t.Errorf("LastUpdate: got %d, want 50", b.LastUpdate)
	}
}

func TestBucketMarkClaimed(t *testing.T) {
	var b Bucket
	b.Credit(types.FromUnits(80), 0, config.VestingInstant, 0)

	claimed := b.MarkClaimed()
	if !claimed.Equal(types.FromUnits(80)) {
		t.Errorf("MarkClaimed: got %s, want 80", claimed.String())
	}
	if !b.Claimable().IsZero() {
		t.Errorf("claimable after claim: %s", b.Claimable().String())
	}

	// A second claim with nothing new yields zero.
	if again := b.MarkClaimed(); !again.IsZero() {
		t.Errorf("second claim: got %s", again.String())
	}

	// New credits become claimable again.
	b.Credit(types.FromUnits(20), 5, config.VestingInstant, 0)
	if !b.Claimable().Equal(types.FromUnits(20)) {
		t.Errorf("claimable after new credit: %s", b.Claimable().String())
	}
}

func TestDynamicClaimable(t *testing.T) {
	u := New("alice")
	u.Direct.Credit(types.FromUnits(10), 0, config.VestingInstant, 0)
	u.Share.Credit(types.FromUnits(5), 0, config.VestingInstant, 0)
	u.Team.Credit(types.FromUnits(3), 0, config.VestingInstant, 0)
	u.Static.Credit(types.FromUnits(100), 0, config.VestingInstant, 0)

	// Static is excluded from the dynamic aggregate.
	if !u.DynamicClaimable().Equal(types.FromUnits(18)) {
		t.Errorf("DynamicClaimable: got %s, want 18", u.DynamicClaimable().String())
	}
}

func TestReleaseBucketsStaticAlwaysInstant(t *testing.T) {
	u := New("alice")
	u.Static.Total = types.FromUnits(40)
	u.Direct.Credit(types.FromUnits(100), 0, config.VestingLinear, 100)

	u.ReleaseBuckets(50, config.VestingLinear, 100)

	if !u.Static.Released.Equal(types.FromUnits(40)) {
		t.Errorf("static must release instantly: %s", u.Static.Released.String())
	}
	if !u.Direct.Released.Equal(types.FromUnits(50)) {
		t.Errorf("direct at t=50: got %s, want 50", u.Direct.Released.String())
	}
}

func TestNewUser(t *testing.T) {
	u := New("alice")
	if u.Addr != "alice" {
		t.Errorf("Addr: got %q", u.Addr)
	}
	if u.HasReferrer() {
		t.Error("fresh user has a referrer")
	}
	u.Referrer = "root"
	if !u.HasReferrer() {
		t.Error("bound user reports no referrer")
	}
}
