// Package config defines the admin-set parameter tables for the staking
// ledger: staking-level thresholds, team-level thresholds, reward rates, fee
// rates and the genesis-node admission cost.
//
// A Config is an immutable-per-epoch snapshot. The engine holds exactly one
// snapshot at a time and admin setters install a whole replacement under the
// operation lock, so parameters never change while a settlement is mid-flight.
package config

import (
	"fmt"
	"time"

	"github.com/xraph/stakeledger/types"
)

// StakingLevel bounds how many staking levels exist (levels 1..4).
const StakingLevels = 4

// TeamLevels bounds how many team levels exist (levels 0..5).
const TeamLevels = 6

// StakingLevelConfig describes one principal bucket. Levels are selected by
// amount range at stake time, never chosen by the caller.
type StakingLevelConfig struct {
	// MinAmount is the inclusive lower bound of the principal range.
	MinAmount types.Amount `json:"min_amount" mapstructure:"min_amount" yaml:"min_amount"`

	// MaxAmount is the inclusive upper bound of the principal range.
	MaxAmount types.Amount `json:"max_amount" mapstructure:"max_amount" yaml:"max_amount"`

	// Multiplier is the quota/principal ratio (fixed-point, 2.5x = 2.5e18).
	Multiplier types.Amount `json:"multiplier" mapstructure:"multiplier" yaml:"multiplier"`

	// DailyRate is the yield fraction released per day (0.9% = 9e15).
	DailyRate types.Amount `json:"daily_rate" mapstructure:"daily_rate" yaml:"daily_rate"`
}

// Contains reports whether amount falls in this level's principal range.
func (c StakingLevelConfig) Contains(amount types.Amount) bool {
	return !amount.LessThan(c.MinAmount) && !amount.GreaterThan(c.MaxAmount)
}

// TeamLevelConfig describes one team level (0..5).
type TeamLevelConfig struct {
	// RequiredPerformance is the minimum aggregate team performance
	// needed to hold the level.
	RequiredPerformance types.Amount `json:"required_performance" mapstructure:"required_performance" yaml:"required_performance"`

	// AccelerationBonus is the extra rate applied to team-bucket rewards
	// credited to holders of this level.
	AccelerationBonus types.Amount `json:"acceleration_bonus" mapstructure:"acceleration_bonus" yaml:"acceleration_bonus"`
}

// VestingMode selects how dynamic-bucket rewards mature.
type VestingMode string

const (
	// VestingInstant releases dynamic rewards the moment they are credited.
	VestingInstant VestingMode = "instant"

	// VestingLinear releases dynamic rewards linearly over VestingDuration.
	VestingLinear VestingMode = "linear"
)

// Config is one immutable parameter snapshot.
type Config struct {
	// StakingLevels are the four principal buckets, index 0 = level 1.
	StakingLevels [StakingLevels]StakingLevelConfig `json:"staking_levels" mapstructure:"staking_levels" yaml:"staking_levels"`

	// TeamLevels are the six team thresholds, index = level.
	TeamLevels [TeamLevels]TeamLevelConfig `json:"team_levels" mapstructure:"team_levels" yaml:"team_levels"`

	// DirectRate is the share of each static accrual credited to the
	// direct referrer's direct bucket.
	DirectRate types.Amount `json:"direct_rate" mapstructure:"direct_rate" yaml:"direct_rate"`

	// ShareRate is the share of each static accrual credited to the share
	// bucket of every qualifying ancestor (team level >= 1).
	ShareRate types.Amount `json:"share_rate" mapstructure:"share_rate" yaml:"share_rate"`

	// GenesisRate is the slice of every static accrual contributed to the
	// genesis dividend pool.
	GenesisRate types.Amount `json:"genesis_rate" mapstructure:"genesis_rate" yaml:"genesis_rate"`

	// WithdrawalFeeRate is retained by the platform on every withdrawal.
	WithdrawalFeeRate types.Amount `json:"withdrawal_fee_rate" mapstructure:"withdrawal_fee_rate" yaml:"withdrawal_fee_rate"`

	// GenesisNodeCost is the stake-currency price of a genesis-node
	// application, pulled from the applicant up front.
	GenesisNodeCost types.Amount `json:"genesis_node_cost" mapstructure:"genesis_node_cost" yaml:"genesis_node_cost"`

	// GenesisCostToPool routes the application cost into the dividend pool
	// instead of the treasury.
	GenesisCostToPool bool `json:"genesis_cost_to_pool" mapstructure:"genesis_cost_to_pool" yaml:"genesis_cost_to_pool"`

	// DirectQualifyStake is the minimum own stake a referrer needs to
	// earn direct-bucket rewards.
	DirectQualifyStake types.Amount `json:"direct_qualify_stake" mapstructure:"direct_qualify_stake" yaml:"direct_qualify_stake"`

	// MaxRewardDepth bounds the upward walk when distributing share/team
	// rewards and propagating performance.
	MaxRewardDepth int `json:"max_reward_depth" mapstructure:"max_reward_depth" yaml:"max_reward_depth"`

	// DayLength is the accrual day in logical-clock seconds.
	DayLength int64 `json:"day_length" mapstructure:"day_length" yaml:"day_length"`

	// RootUser is the sentinel referrer id representing "no upline".
	// It is always a valid bind target.
	RootUser string `json:"root_user" mapstructure:"root_user" yaml:"root_user"`

	// Vesting selects the dynamic-bucket release curve.
	Vesting VestingMode `json:"vesting" mapstructure:"vesting" yaml:"vesting"`

	// VestingDuration is the linear release window in logical-clock
	// seconds; ignored when Vesting is instant.
	VestingDuration int64 `json:"vesting_duration" mapstructure:"vesting_duration" yaml:"vesting_duration"`
}

// Default returns the snapshot the engine starts with when no configuration
// is supplied. The level tables mirror the production parameter set.
func Default() Config {
	return Config{
		StakingLevels: [StakingLevels]StakingLevelConfig{
			{ // level 1
				MinAmount:  types.FromUnits(100),
				MaxAmount:  types.FromUnits(499),
				Multiplier: types.FromFraction(15, 10), // 1.5x
				DailyRate:  types.FromFraction(6, 1000),
			},
			{ // level 2
				MinAmount:  types.FromUnits(500),
				MaxAmount:  types.FromUnits(999),
				Multiplier: types.FromFraction(2, 1), // 2.0x
				DailyRate:  types.FromFraction(75, 10000),
			},
			{ // level 3 ("Gold")
				MinAmount:  types.FromUnits(1000),
				MaxAmount:  types.FromUnits(4999),
				Multiplier: types.FromFraction(25, 10), // 2.5x
				DailyRate:  types.FromFraction(9, 1000),
			},
			{ // level 4
				MinAmount:  types.FromUnits(5000),
				MaxAmount:  types.FromUnits(50000),
				Multiplier: types.FromFraction(3, 1), // 3.0x
				DailyRate:  types.FromFraction(105, 10000),
			},
		},
		TeamLevels: [TeamLevels]TeamLevelConfig{
			{}, // level 0: no requirement, no bonus
			{RequiredPerformance: types.FromUnits(10000), AccelerationBonus: types.FromFraction(5, 100)},
			{RequiredPerformance: types.FromUnits(50000), AccelerationBonus: types.FromFraction(10, 100)},
			{RequiredPerformance: types.FromUnits(200000), AccelerationBonus: types.FromFraction(15, 100)},
			{RequiredPerformance: types.FromUnits(500000), AccelerationBonus: types.FromFraction(20, 100)},
			{RequiredPerformance: types.FromUnits(1000000), AccelerationBonus: types.FromFraction(25, 100)},
		},
		DirectRate:         types.FromFraction(10, 100),
		ShareRate:          types.FromFraction(5, 100),
		GenesisRate:        types.FromFraction(3, 100),
		WithdrawalFeeRate:  types.FromFraction(5, 100),
		GenesisNodeCost:    types.FromUnits(5000),
		GenesisCostToPool:  true,
		DirectQualifyStake: types.FromUnits(100),
		MaxRewardDepth:     50,
		DayLength:          int64(24 * time.Hour / time.Second),
		RootUser:           "root",
		Vesting:            VestingInstant,
	}
}

// Validate checks internal consistency of a snapshot.
func (c Config) Validate() error {
	for i, lvl := range c.StakingLevels {
		if lvl.MinAmount.IsNegative() || lvl.MaxAmount.LessThan(lvl.MinAmount) {
			return fmt.Errorf("config: staking level %d: invalid amount range", i+1)
		}
		if !lvl.Multiplier.IsPositive() {
			return fmt.Errorf("config: staking level %d: multiplier must be positive", i+1)
		}
		if lvl.DailyRate.IsNegative() {
			return fmt.Errorf("config: staking level %d: negative daily rate", i+1)
		}
	}
	prev := types.Zero()
	for i, lvl := range c.TeamLevels {
		if lvl.RequiredPerformance.LessThan(prev) {
			return fmt.Errorf("config: team level %d: required performance must be non-decreasing", i)
		}
		if lvl.AccelerationBonus.IsNegative() {
			return fmt.Errorf("config: team level %d: negative acceleration bonus", i)
		}
		prev = lvl.RequiredPerformance
	}
	for _, r := range []struct {
		name string
		rate types.Amount
	}{
		{"direct_rate", c.DirectRate},
		{"share_rate", c.ShareRate},
		{"genesis_rate", c.GenesisRate},
		{"withdrawal_fee_rate", c.WithdrawalFeeRate},
	} {
		if r.rate.IsNegative() || r.rate.GreaterThan(types.One()) {
			return fmt.Errorf("config: %s out of [0,1]", r.name)
		}
	}
	if c.GenesisNodeCost.IsNegative() {
		return fmt.Errorf("config: negative genesis node cost")
	}
	if c.MaxRewardDepth <= 0 {
		return fmt.Errorf("config: max_reward_depth must be positive")
	}
	if c.DayLength <= 0 {
		return fmt.Errorf("config: day_length must be positive")
	}
	if c.RootUser == "" {
		return fmt.Errorf("config: root_user must be set")
	}
	switch c.Vesting {
	case VestingInstant:
	case VestingLinear:
		if c.VestingDuration <= 0 {
			return fmt.Errorf("config: linear vesting requires positive vesting_duration")
		}
	default:
		return fmt.Errorf("config: unknown vesting mode %q", c.Vesting)
	}
	return nil
}

// LevelFor returns the 1-based staking level matching amount, or 0 with a
// range verdict: -1 below every bucket, +1 above every bucket, 0 for an
// amount falling in a gap between two bucket ranges.
func (c Config) LevelFor(amount types.Amount) (level int, verdict int) {
	if amount.LessThan(c.StakingLevels[0].MinAmount) {
		return 0, -1
	}
	for i, lvl := range c.StakingLevels {
		if lvl.Contains(amount) {
			return i + 1, 0
		}
	}
	if amount.GreaterThan(c.StakingLevels[StakingLevels-1].MaxAmount) {
		return 0, 1
	}
	return 0, 0
}

// TeamLevelFor computes the highest team level whose required performance is
// met. Levels are recomputed fresh from current performance on every
// propagation; there is no sticky high-water mark.
func (c Config) TeamLevelFor(performance types.Amount) int {
	level := 0
	for i := 1; i < TeamLevels; i++ {
		if !performance.LessThan(c.TeamLevels[i].RequiredPerformance) {
			level = i
		}
	}
	return level
}
