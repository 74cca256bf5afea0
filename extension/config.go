package extension

import "github.com/xraph/stakeledger/config"

// Config holds the staking-ledger extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.stakeledger" or "stakeledger"
// keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Admin is the address allowed to call administrative operations.
	Admin string `json:"admin" mapstructure:"admin" yaml:"admin"`

	// Treasury is the address receiving withdrawal fees and genesis
	// application costs not routed to the dividend pool.
	Treasury string `json:"treasury" mapstructure:"treasury" yaml:"treasury"`

	// Staking overrides the engine's parameter snapshot (staking levels,
	// team levels, reward rates, fees). When nil the engine defaults apply.
	Staking *config.Config `json:"staking" mapstructure:"staking" yaml:"staking"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}
