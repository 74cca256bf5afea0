// Package memory provides an in-memory Store implementation. It is the
// default backend for tests and embedded single-process deployments; all
// state is lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/stats"
	"github.com/xraph/stakeledger/user"
)

type Store struct {
	mu sync.RWMutex

	// User storage, keyed by address
	users map[string]*user.User

	// Order storage, keyed by sequential ID
	orders   map[uint64]*order.Order
	orderSeq uint64

	// Append-only record logs
	rewardLog   []*reward.Record
	withdrawLog []*reward.WithdrawRecord

	// Genesis pool and pending applications
	pool         genesis.Pool
	applications map[string]*genesis.Application

	// Global counters
	stats stats.Global

	closed bool
}

func New() *Store {
	return &Store{
		users:        make(map[string]*user.User),
		orders:       make(map[uint64]*order.Order),
		rewardLog:    make([]*reward.Record, 0),
		withdrawLog:  make([]*reward.WithdrawRecord, 0),
		applications: make(map[string]*genesis.Application),
	}
}

// User Store implementation

func (s *Store) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return stakeledger.ErrStoreClosed
	}
	if _, exists := s.users[u.Addr]; exists {
		return stakeledger.ErrAlreadyExists
	}
	s.users[u.Addr] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, addr string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[addr]; ok {
		return u, nil
	}
	return nil, stakeledger.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Addr]; !exists {
		return stakeledger.ErrUserNotFound
	}
	s.users[u.Addr] = u
	return nil
}

func (s *Store) UserExists(_ context.Context, addr string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[addr]
	return ok, nil
}

// Order Store implementation

func (s *Store) NextOrderID(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, stakeledger.ErrStoreClosed
	}
	s.orderSeq++
	return s.orderSeq, nil
}

func (s *Store) CreateOrder(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return stakeledger.ErrAlreadyExists
	}
	s.orders[o.ID] = o
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID uint64) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.orders[orderID]; ok {
		return o, nil
	}
	return nil, stakeledger.ErrOrderNotFound
}

func (s *Store) UpdateOrder(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; !exists {
		return stakeledger.ErrOrderNotFound
	}
	s.orders[o.ID] = o
	return nil
}

func (s *Store) ListOrdersByUser(_ context.Context, addr string, opts order.ListOpts) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Order IDs are sequential, so walking the user's recorded IDs in order
	// preserves creation order without a sort.
	u, ok := s.users[addr]
	if !ok {
		return []*order.Order{}, nil
	}

	result := make([]*order.Order, 0, len(u.OrderIDs))
	for _, oid := range u.OrderIDs {
		o, ok := s.orders[oid]
		if !ok {
			continue
		}
		if opts.OnlyActive && o.IsCompleted {
			continue
		}
		result = append(result, o)
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// Record logs

func (s *Store) AppendRewardRecord(_ context.Context, r *reward.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return stakeledger.ErrStoreClosed
	}
	s.rewardLog = append(s.rewardLog, r)
	return nil
}

func (s *Store) ListRewardRecords(_ context.Context, addr string, opts reward.ListOpts) ([]*reward.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first
	result := make([]*reward.Record, 0)
	for i := len(s.rewardLog) - 1; i >= 0; i-- {
		if s.rewardLog[i].User == addr {
			result = append(result, s.rewardLog[i])
		}
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) AppendWithdrawRecord(_ context.Context, w *reward.WithdrawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return stakeledger.ErrStoreClosed
	}
	s.withdrawLog = append(s.withdrawLog, w)
	return nil
}

func (s *Store) ListWithdrawRecords(_ context.Context, addr string, opts reward.ListOpts) ([]*reward.WithdrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*reward.WithdrawRecord, 0)
	for i := len(s.withdrawLog) - 1; i >= 0; i-- {
		if s.withdrawLog[i].User == addr {
			result = append(result, s.withdrawLog[i])
		}
	}
	return paginate(result, opts.Offset, opts.Limit), nil
}

// Genesis pool

func (s *Store) GetGenesisPool(_ context.Context) (*genesis.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.pool
	p.ActiveNodes = append([]string(nil), s.pool.ActiveNodes...)
	return &p, nil
}

func (s *Store) SaveGenesisPool(_ context.Context, p *genesis.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool = *p
	s.pool.ActiveNodes = append([]string(nil), p.ActiveNodes...)
	return nil
}

func (s *Store) CreateApplication(_ context.Context, a *genesis.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.applications[a.User]; exists {
		return stakeledger.ErrAlreadyExists
	}
	s.applications[a.User] = a
	return nil
}

func (s *Store) GetApplication(_ context.Context, addr string) (*genesis.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.applications[addr]; ok {
		return a, nil
	}
	return nil, stakeledger.ErrNoPendingApplication
}

func (s *Store) DeleteApplication(_ context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[addr]; !ok {
		return stakeledger.ErrNoPendingApplication
	}
	delete(s.applications, addr)
	return nil
}

func (s *Store) ListApplications(_ context.Context) ([]*genesis.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*genesis.Application, 0, len(s.applications))
	for _, a := range s.applications {
		result = append(result, a)
	}
	return result, nil
}

// Stats

func (s *Store) GetStats(_ context.Context) (*stats.Global, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := s.stats
	return &g, nil
}

func (s *Store) SaveStats(_ context.Context, g *stats.Global) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = *g
	return nil
}

// Core

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return stakeledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
