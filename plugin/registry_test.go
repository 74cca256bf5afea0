package plugin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/types"
)

// recorder implements a subset of hooks and records dispatch order.
type recorder struct {
	name   string
	events []string
	err    error
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnUserRegistered(_ context.Context, addr string) error {
	r.events = append(r.events, "user:"+addr)
	return r.err
}

func (r *recorder) OnRewardDistributed(_ context.Context, rec *reward.Record) error {
	r.events = append(r.events, "reward:"+string(rec.Kind))
	return r.err
}

// named implements only the base Plugin interface.
type named struct{ name string }

func (n *named) Name() string { return n.name }

func newTestRegistry() *Registry {
	return NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&named{name: "a"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&named{name: "a"}); err == nil {
		t.Fatal("Register() accepted duplicate name")
	}
}

func TestRegistryGetAndList(t *testing.T) {
	r := newTestRegistry()
	first := &named{name: "first"}
	second := &recorder{name: "second"}
	if err := r.Register(first); err != nil {
		t.Fatalf("Register(first) error = %v", err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("Register(second) error = %v", err)
	}

	if got := r.Get("second"); got != Plugin(second) {
		t.Errorf("Get(second) = %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	list := r.List()
	if len(list) != 2 || list[0].Name() != "first" || list[1].Name() != "second" {
		t.Errorf("List() = %v", list)
	}
}

func TestRegistryDispatchesOnlyImplementedHooks(t *testing.T) {
	r := newTestRegistry()
	rec := &recorder{name: "rec"}
	if err := r.Register(rec); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&named{name: "silent"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	r.EmitUserRegistered(ctx, "alice")
	r.EmitRewardDistributed(ctx, &reward.Record{Kind: reward.KindDirect})
	r.EmitPaused(ctx) // recorder does not implement OnPaused

	want := []string{"user:alice", "reward:direct"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, rec.events[i], want[i])
		}
	}
}

func TestRegistryDispatchesInRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	var seen []string
	a := &recorder{name: "a"}
	b := &recorder{name: "b"}
	for _, p := range []*recorder{a, b} {
		if err := r.Register(p); err != nil {
			t.Fatalf("Register(%s) error = %v", p.name, err)
		}
	}

	r.EmitUserRegistered(context.Background(), "x")
	for _, p := range []*recorder{a, b} {
		if len(p.events) == 1 {
			seen = append(seen, p.name)
		}
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("dispatch order = %v, want [a b]", seen)
	}
}

func TestRegistrySwallowsHookErrors(t *testing.T) {
	r := newTestRegistry()
	failing := &recorder{name: "failing", err: errors.New("hook exploded")}
	after := &recorder{name: "after"}
	if err := r.Register(failing); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(after); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	r.EmitUserRegistered(context.Background(), "alice")
	if len(after.events) != 1 {
		t.Errorf("later plugin not dispatched after hook error: events = %v", after.events)
	}
}

func TestRegistryEmitWithNoPlugins(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	r.EmitInit(ctx, nil)
	r.EmitStakeCreated(ctx, &order.Order{})
	r.EmitOrderSettled(ctx, &order.Order{}, order.Accrual{Currency: types.Zero()})
	r.EmitShutdown(ctx)
}
