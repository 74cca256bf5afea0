package extension

import (
	"github.com/xraph/grove"

	stakeledger "github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/plugin"
	"github.com/xraph/stakeledger/store"
	"github.com/xraph/stakeledger/store/mongo"
	"github.com/xraph/stakeledger/store/postgres"
	"github.com/xraph/stakeledger/store/sqlite"
)

// Option configures the staking-ledger Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithPostgres constructs a PostgreSQL-backed store over the given grove
// database. The database must use the grove pg driver.
func WithPostgres(db *grove.DB) Option {
	return func(e *Extension) {
		e.store = postgres.New(db)
	}
}

// WithSQLite constructs a SQLite-backed store over the given grove database.
// The database must use the grove sqlite driver.
func WithSQLite(db *grove.DB) Option {
	return func(e *Extension) {
		e.store = sqlite.New(db)
	}
}

// WithMongo constructs a MongoDB-backed store over the given grove database.
// The database must use the grove mongo driver.
func WithMongo(db *grove.DB) Option {
	return func(e *Extension) {
		e.store = mongo.New(db)
	}
}

// WithLedgerOption passes a stakeledger.Option through to the underlying engine.
func WithLedgerOption(opt stakeledger.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a ledger plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, stakeledger.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithAdmin sets the administrative address.
func WithAdmin(addr string) Option {
	return func(e *Extension) { e.config.Admin = addr }
}

// WithTreasury sets the treasury address.
func WithTreasury(addr string) Option {
	return func(e *Extension) { e.config.Treasury = addr }
}

// WithStakingConfig sets the engine parameter snapshot.
func WithStakingConfig(cfg config.Config) Option {
	return func(e *Extension) { e.config.Staking = &cfg }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
