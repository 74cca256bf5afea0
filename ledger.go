package stakeledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/oracle"
	"github.com/xraph/stakeledger/plugin"
	"github.com/xraph/stakeledger/store"
	"github.com/xraph/stakeledger/token"
	"github.com/xraph/stakeledger/user"
)

// Clock supplies the ledger's logical time in seconds. Readings must be
// monotonically non-decreasing; settlement math never touches the wall
// clock directly.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() int64

// Now implements Clock.
func (f ClockFunc) Now() int64 { return f() }

// realClock reads wall time. The default outside of tests.
type realClock struct{}

func (realClock) Now() int64 { return time.Now().Unix() }

// ManualClock is a hand-advanced Clock for tests and replay. It never goes
// backwards: Set to an earlier instant is ignored.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a ManualClock at the given instant.
func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

// Now implements Clock.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d int64) {
	c.mu.Lock()
	if d > 0 {
		c.now += d
	}
	c.mu.Unlock()
}

// Set moves the clock to now if that is not earlier than the current reading.
func (c *ManualClock) Set(now int64) {
	c.mu.Lock()
	if now > c.now {
		c.now = now
	}
	c.mu.Unlock()
}

// Ledger is the staking and reward-distribution engine.
//
// Execution is strictly sequential: every mutating operation takes the
// operation lock, runs to completion (state changes, reward propagation
// and event emission) and only then admits the next. Read queries that
// would report stale lazy-accrual figures settle under the same lock.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	oracle oracle.PriceOracle
	token  token.Module
	clock  Clock

	// admin is the account key allowed to call admin-gated operations.
	admin string

	// treasury receives genesis admission fees when the pool does not.
	treasury string

	// op serializes all mutating operations and settling reads.
	op sync.Mutex

	// cfg is the current parameter snapshot, replaced wholesale by
	// UpdateConfig under the operation lock.
	cfg config.Config

	paused bool
}

// New creates a Ledger over a store and its collaborators.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		clock:    realClock{},
		cfg:      config.Default(),
		treasury: "treasury",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithConfig installs the initial parameter snapshot. Invalid snapshots are
// rejected at Start.
func WithConfig(cfg config.Config) Option {
	return func(l *Ledger) { l.cfg = cfg }
}

// WithOracle sets the price oracle.
func WithOracle(o oracle.PriceOracle) Option {
	return func(l *Ledger) { l.oracle = o }
}

// WithToken sets the collaborator token module.
func WithToken(t token.Module) Option {
	return func(l *Ledger) { l.token = t }
}

// WithClock sets the logical clock.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithAdmin sets the account key allowed to call admin-gated operations.
func WithAdmin(addr string) Option {
	return func(l *Ledger) { l.admin = addr }
}

// WithTreasury sets the account receiving platform fees and, when so
// configured, genesis admission costs.
func WithTreasury(addr string) Option {
	return func(l *Ledger) { l.treasury = addr }
}

// Start validates configuration, migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.cfg.Validate(); err != nil {
		return err
	}
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("staking ledger started",
		"root_user", l.cfg.RootUser,
		"vesting", string(l.cfg.Vesting),
		"day_length", l.cfg.DayLength,
	)
	return nil
}

// Stop shuts the ledger down.
func (l *Ledger) Stop() error {
	l.plugins.EmitShutdown(context.Background())
	return l.store.Close()
}

// Config returns the current parameter snapshot.
func (l *Ledger) Config() config.Config {
	l.op.Lock()
	defer l.op.Unlock()
	return l.cfg
}

// Paused reports whether the system is paused.
func (l *Ledger) Paused() bool {
	l.op.Lock()
	defer l.op.Unlock()
	return l.paused
}

// now reads the logical clock.
func (l *Ledger) now() int64 { return l.clock.Now() }

// loadOrCreateUser fetches the record for addr, creating it on first
// interaction. Creation counts toward the active-user stat and emits
// OnUserRegistered. Callers hold the operation lock.
func (l *Ledger) loadOrCreateUser(ctx context.Context, addr string) (*user.User, error) {
	u, err := l.store.GetUser(ctx, addr)
	if err == nil {
		return u, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	u = user.New(addr)
	if err := l.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	if err := l.bumpActiveUsers(ctx); err != nil {
		return nil, err
	}
	l.plugins.EmitUserRegistered(ctx, addr)
	return u, nil
}

func (l *Ledger) bumpActiveUsers(ctx context.Context) error {
	g, err := l.store.GetStats(ctx)
	if err != nil {
		return err
	}
	g.ActiveUsers++
	return l.store.SaveStats(ctx, g)
}

// requireAdmin checks the caller key against the configured admin.
func (l *Ledger) requireAdmin(caller string) error {
	if l.admin == "" || caller != l.admin {
		return ErrUnauthorized
	}
	return nil
}
