// Package extension provides the Forge extension adapter for the staking
// ledger.
//
// It implements the forge.Extension interface to integrate the ledger
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.stakeledger" or
// "stakeledger" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	stakeledger "github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/store"
	"github.com/xraph/stakeledger/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "stakeledger"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Staking and reward distribution ledger"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the staking ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *stakeledger.Ledger
	store      store.Store
	ledgerOpts []stakeledger.Option
}

// New creates a new staking-ledger Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *stakeledger.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the ledger engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build ledger options from resolved config.
	opts := e.buildLedgerOpts()

	e.engine = stakeledger.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*stakeledger.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("stakeledger: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("stakeledger: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts constructs stakeledger.Option values from the resolved config.
func (e *Extension) buildLedgerOpts() []stakeledger.Option {
	opts := make([]stakeledger.Option, 0, len(e.ledgerOpts)+3)

	if e.config.Admin != "" {
		opts = append(opts, stakeledger.WithAdmin(e.config.Admin))
	}
	if e.config.Treasury != "" {
		opts = append(opts, stakeledger.WithTreasury(e.config.Treasury))
	}
	if e.config.Staking != nil {
		opts = append(opts, stakeledger.WithConfig(*e.config.Staking))
	}

	// Append any pass-through ledger options.
	opts = append(opts, e.ledgerOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("stakeledger: configuration is required but not found in config files; " +
				"ensure 'extensions.stakeledger' or 'stakeledger' key exists in your config")
		}

		e.config = programmaticConfig
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("stakeledger: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("admin", e.config.Admin),
		forge.F("treasury", e.config.Treasury),
		forge.F("has_staking_params", e.config.Staking != nil),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.stakeledger" first (namespaced pattern).
	if cm.IsSet("extensions.stakeledger") {
		if err := cm.Bind("extensions.stakeledger", &cfg); err == nil {
			e.Logger().Debug("stakeledger: loaded config from file",
				forge.F("key", "extensions.stakeledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("stakeledger: failed to bind extensions.stakeledger config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "stakeledger" key.
	if cm.IsSet("stakeledger") {
		if err := cm.Bind("stakeledger", &cfg); err == nil {
			e.Logger().Debug("stakeledger: loaded config from file",
				forge.F("key", "stakeledger"),
			)
			return cfg, true
		}
		e.Logger().Warn("stakeledger: failed to bind stakeledger config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.Admin == "" && programmaticConfig.Admin != "" {
		yamlConfig.Admin = programmaticConfig.Admin
	}
	if yamlConfig.Treasury == "" && programmaticConfig.Treasury != "" {
		yamlConfig.Treasury = programmaticConfig.Treasury
	}

	// Staking parameters: YAML takes precedence, programmatic fills the gap.
	if yamlConfig.Staking == nil && programmaticConfig.Staking != nil {
		yamlConfig.Staking = programmaticConfig.Staking
	}

	return yamlConfig
}
