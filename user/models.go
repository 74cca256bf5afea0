package user

import (
	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/types"
)

// Bucket is one independently metered reward account, denominated in reward
// token. Total is everything ever credited, Released what has matured, and
// Claimed what has been paid out. LastUpdate is the logical time of the last
// lazy release pass.
type Bucket struct {
	Total      types.Amount `json:"total"`
	Released   types.Amount `json:"released"`
	Claimed    types.Amount `json:"claimed"`
	LastUpdate int64        `json:"last_update"`
}

// Credit adds amount to the bucket at logical time now, releasing any
// pending vested portion first so the new credit starts its own schedule.
func (b *Bucket) Credit(amount types.Amount, now int64, mode config.VestingMode, duration int64) {
	b.ReleaseAt(now, mode, duration)
	b.Total = b.Total.Add(amount)
	if mode == config.VestingInstant {
		b.Released = b.Total
	}
	b.LastUpdate = now
}

// ReleaseAt lazily matures the vested portion of the bucket as of now.
// With instant vesting everything credited is immediately released. With
// linear vesting the unreleased remainder matures proportionally to elapsed
// time over the configured duration; flooring keeps release from ever
// outrunning the schedule.
func (b *Bucket) ReleaseAt(now int64, mode config.VestingMode, duration int64) {
	if mode == config.VestingInstant {
		b.Released = b.Total
		b.LastUpdate = now
		return
	}
	if now <= b.LastUpdate || duration <= 0 {
		return
	}
	pending := b.Total.Sub(b.Released)
	if !pending.IsPositive() {
		b.LastUpdate = now
		return
	}
	elapsed := now - b.LastUpdate
	if elapsed >= duration {
		b.Released = b.Total
	} else {
		matured := pending.MulInt(elapsed).DivInt(duration)
		b.Released = b.Released.Add(matured)
	}
	b.LastUpdate = now
}

// Claimable returns released minus claimed.
func (b Bucket) Claimable() types.Amount {
	c := b.Released.Sub(b.Claimed)
	if c.IsNegative() {
		return types.Zero()
	}
	return c
}

// MarkClaimed moves the full claimable amount to claimed and returns it.
func (b *Bucket) MarkClaimed() types.Amount {
	c := b.Claimable()
	b.Claimed = b.Claimed.Add(c)
	return c
}

// User is the ledger's per-account record. Created on first interaction,
// never deleted, owned exclusively by the ledger.
type User struct {
	types.Entity

	// Addr is the caller-supplied account key.
	Addr string `json:"addr"`

	// Referrer is the upline account, immutable once set. Empty means not
	// yet bound; the configured root sentinel means "no upline".
	Referrer string `json:"referrer"`

	TeamLevel       int          `json:"team_level"`
	TotalStaked     types.Amount `json:"total_staked"`
	TeamPerformance types.Amount `json:"team_performance"`

	// DirectReferrals preserves bind order.
	DirectReferrals []string `json:"direct_referrals"`

	// OrderIDs is the ordered sequence of the user's orders.
	OrderIDs []uint64 `json:"order_ids"`

	IsGenesisNode     bool         `json:"is_genesis_node"`
	GenesisWithdrawn  types.Amount `json:"genesis_withdrawn"`
	GenesisRewardDebt types.Amount `json:"genesis_reward_debt"`

	// Reward buckets, token-denominated.
	Static Bucket `json:"static"`
	Direct Bucket `json:"direct"`
	Share  Bucket `json:"share"`
	Team   Bucket `json:"team"`

	// TotalStaticOutput is the lifetime currency-denominated static yield.
	TotalStaticOutput types.Amount `json:"total_static_output"`
}

// New creates a fresh user record for an account key.
func New(addr string) *User {
	return &User{Entity: types.NewEntity(), Addr: addr}
}

// HasReferrer reports whether the user has been bound to an upline.
func (u *User) HasReferrer() bool { return u.Referrer != "" }

// DynamicClaimable sums the claimable direct, share and team buckets,
// the single "dynamic" figure the public read API reports.
func (u *User) DynamicClaimable() types.Amount {
	return types.Sum(u.Direct.Claimable(), u.Share.Claimable(), u.Team.Claimable())
}

// ReleaseBuckets runs the lazy vesting pass over every dynamic bucket.
// The static bucket always releases instantly: static yield matures the
// moment settlement converts it.
func (u *User) ReleaseBuckets(now int64, mode config.VestingMode, duration int64) {
	u.Static.ReleaseAt(now, config.VestingInstant, 0)
	u.Direct.ReleaseAt(now, mode, duration)
	u.Share.ReleaseAt(now, mode, duration)
	u.Team.ReleaseAt(now, mode, duration)
}
