package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/xraph/stakeledger/config"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
//
// Hooks are invoked synchronously, in registration order, inside the
// operation that triggered them; a hook must never call back into a
// mutating ledger operation. Hook errors are logged and swallowed so a
// misbehaving observer cannot fail or reorder ledger state transitions.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onUserRegistered    []OnUserRegistered
	onReferrerBound     []OnReferrerBound
	onStakeCreated      []OnStakeCreated
	onOrderSettled      []OnOrderSettled
	onOrderCompleted    []OnOrderCompleted
	onRewardDistributed []OnRewardDistributed
	onGenesisApplied    []OnGenesisApplied
	onGenesisApproved   []OnGenesisApproved
	onDividendAccrued   []OnDividendAccrued
	onWithdrawal        []OnWithdrawal
	onConfigUpdated     []OnConfigUpdated
	onPaused            []OnPaused
	onUnpaused          []OnUnpaused
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnUserRegistered); ok {
		r.onUserRegistered = append(r.onUserRegistered, v)
	}
	if v, ok := p.(OnReferrerBound); ok {
		r.onReferrerBound = append(r.onReferrerBound, v)
	}
	if v, ok := p.(OnStakeCreated); ok {
		r.onStakeCreated = append(r.onStakeCreated, v)
	}
	if v, ok := p.(OnOrderSettled); ok {
		r.onOrderSettled = append(r.onOrderSettled, v)
	}
	if v, ok := p.(OnOrderCompleted); ok {
		r.onOrderCompleted = append(r.onOrderCompleted, v)
	}
	if v, ok := p.(OnRewardDistributed); ok {
		r.onRewardDistributed = append(r.onRewardDistributed, v)
	}
	if v, ok := p.(OnGenesisApplied); ok {
		r.onGenesisApplied = append(r.onGenesisApplied, v)
	}
	if v, ok := p.(OnGenesisApproved); ok {
		r.onGenesisApproved = append(r.onGenesisApproved, v)
	}
	if v, ok := p.(OnDividendAccrued); ok {
		r.onDividendAccrued = append(r.onDividendAccrued, v)
	}
	if v, ok := p.(OnWithdrawal); ok {
		r.onWithdrawal = append(r.onWithdrawal, v)
	}
	if v, ok := p.(OnConfigUpdated); ok {
		r.onConfigUpdated = append(r.onConfigUpdated, v)
	}
	if v, ok := p.(OnPaused); ok {
		r.onPaused = append(r.onPaused, v)
	}
	if v, ok := p.(OnUnpaused); ok {
		r.onUnpaused = append(r.onUnpaused, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.implementedInterfaces(p),
	)

	return nil
}

// implementedInterfaces returns the hook interfaces implemented by a plugin.
func (r *Registry) implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnUserRegistered)(nil)).Elem(), "OnUserRegistered")
	checkInterface(reflect.TypeOf((*OnReferrerBound)(nil)).Elem(), "OnReferrerBound")
	checkInterface(reflect.TypeOf((*OnStakeCreated)(nil)).Elem(), "OnStakeCreated")
	checkInterface(reflect.TypeOf((*OnOrderSettled)(nil)).Elem(), "OnOrderSettled")
	checkInterface(reflect.TypeOf((*OnOrderCompleted)(nil)).Elem(), "OnOrderCompleted")
	checkInterface(reflect.TypeOf((*OnRewardDistributed)(nil)).Elem(), "OnRewardDistributed")
	checkInterface(reflect.TypeOf((*OnGenesisApplied)(nil)).Elem(), "OnGenesisApplied")
	checkInterface(reflect.TypeOf((*OnGenesisApproved)(nil)).Elem(), "OnGenesisApproved")
	checkInterface(reflect.TypeOf((*OnDividendAccrued)(nil)).Elem(), "OnDividendAccrued")
	checkInterface(reflect.TypeOf((*OnWithdrawal)(nil)).Elem(), "OnWithdrawal")
	checkInterface(reflect.TypeOf((*OnConfigUpdated)(nil)).Elem(), "OnConfigUpdated")
	checkInterface(reflect.TypeOf((*OnPaused)(nil)).Elem(), "OnPaused")
	checkInterface(reflect.TypeOf((*OnUnpaused)(nil)).Elem(), "OnUnpaused")

	return interfaces
}

// Get returns a plugin by name, or nil.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns the registered plugins in registration order.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

func (r *Registry) call(pluginName, hook string, fn func() error) {
	if err := fn(); err != nil {
		r.logger.Warn("plugin hook failed",
			"plugin", pluginName,
			"hook", hook,
			"error", err,
		)
	}
}

// EmitInit dispatches OnInit.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnInit", func() error { return p.OnInit(ctx, ledger) })
	}
}

// EmitShutdown dispatches OnShutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnShutdown", func() error { return p.OnShutdown(ctx) })
	}
}

// EmitUserRegistered dispatches OnUserRegistered.
func (r *Registry) EmitUserRegistered(ctx context.Context, addr string) {
	r.mu.RLock()
	plugins := r.onUserRegistered
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnUserRegistered", func() error { return p.OnUserRegistered(ctx, addr) })
	}
}

// EmitReferrerBound dispatches OnReferrerBound.
func (r *Registry) EmitReferrerBound(ctx context.Context, user, referrer string) {
	r.mu.RLock()
	plugins := r.onReferrerBound
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnReferrerBound", func() error { return p.OnReferrerBound(ctx, user, referrer) })
	}
}

// EmitStakeCreated dispatches OnStakeCreated.
func (r *Registry) EmitStakeCreated(ctx context.Context, o *order.Order) {
	r.mu.RLock()
	plugins := r.onStakeCreated
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnStakeCreated", func() error { return p.OnStakeCreated(ctx, o) })
	}
}

// EmitOrderSettled dispatches OnOrderSettled.
func (r *Registry) EmitOrderSettled(ctx context.Context, o *order.Order, acc order.Accrual) {
	r.mu.RLock()
	plugins := r.onOrderSettled
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnOrderSettled", func() error { return p.OnOrderSettled(ctx, o, acc) })
	}
}

// EmitOrderCompleted dispatches OnOrderCompleted.
func (r *Registry) EmitOrderCompleted(ctx context.Context, o *order.Order) {
	r.mu.RLock()
	plugins := r.onOrderCompleted
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnOrderCompleted", func() error { return p.OnOrderCompleted(ctx, o) })
	}
}

// EmitRewardDistributed dispatches OnRewardDistributed.
func (r *Registry) EmitRewardDistributed(ctx context.Context, rec *reward.Record) {
	r.mu.RLock()
	plugins := r.onRewardDistributed
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnRewardDistributed", func() error { return p.OnRewardDistributed(ctx, rec) })
	}
}

// EmitGenesisApplied dispatches OnGenesisApplied.
func (r *Registry) EmitGenesisApplied(ctx context.Context, a *genesis.Application) {
	r.mu.RLock()
	plugins := r.onGenesisApplied
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnGenesisApplied", func() error { return p.OnGenesisApplied(ctx, a) })
	}
}

// EmitGenesisApproved dispatches OnGenesisApproved.
func (r *Registry) EmitGenesisApproved(ctx context.Context, addr string) {
	r.mu.RLock()
	plugins := r.onGenesisApproved
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnGenesisApproved", func() error { return p.OnGenesisApproved(ctx, addr) })
	}
}

// EmitDividendAccrued dispatches OnDividendAccrued.
func (r *Registry) EmitDividendAccrued(ctx context.Context, amount types.Amount) {
	r.mu.RLock()
	plugins := r.onDividendAccrued
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnDividendAccrued", func() error { return p.OnDividendAccrued(ctx, amount) })
	}
}

// EmitWithdrawal dispatches OnWithdrawal.
func (r *Registry) EmitWithdrawal(ctx context.Context, w *reward.WithdrawRecord) {
	r.mu.RLock()
	plugins := r.onWithdrawal
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnWithdrawal", func() error { return p.OnWithdrawal(ctx, w) })
	}
}

// EmitConfigUpdated dispatches OnConfigUpdated.
func (r *Registry) EmitConfigUpdated(ctx context.Context, cfg config.Config) {
	r.mu.RLock()
	plugins := r.onConfigUpdated
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnConfigUpdated", func() error { return p.OnConfigUpdated(ctx, cfg) })
	}
}

// EmitPaused dispatches OnPaused.
func (r *Registry) EmitPaused(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onPaused
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnPaused", func() error { return p.OnPaused(ctx) })
	}
}

// EmitUnpaused dispatches OnUnpaused.
func (r *Registry) EmitUnpaused(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onUnpaused
	r.mu.RUnlock()
	for _, p := range plugins {
		r.call(p.Name(), "OnUnpaused", func() error { return p.OnUnpaused(ctx) })
	}
}
