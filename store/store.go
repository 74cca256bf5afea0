package store

import (
	"context"

	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/stats"
	"github.com/xraph/stakeledger/user"
)

// Store is the unified storage interface for all ledger state. Instead of
// embedding sub-interfaces, all methods are declared explicitly to avoid
// naming conflicts.
//
// The engine serializes every mutating operation, so implementations never
// see concurrent writes to the same record; they only need to be safe for
// concurrent reads alongside one writer.
type Store interface {
	// User methods
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, addr string) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
	UserExists(ctx context.Context, addr string) (bool, error)

	// Order methods
	NextOrderID(ctx context.Context) (uint64, error)
	CreateOrder(ctx context.Context, o *order.Order) error
	GetOrder(ctx context.Context, orderID uint64) (*order.Order, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
	ListOrdersByUser(ctx context.Context, addr string, opts order.ListOpts) ([]*order.Order, error)

	// Record logs (append-only)
	AppendRewardRecord(ctx context.Context, r *reward.Record) error
	ListRewardRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.Record, error)
	AppendWithdrawRecord(ctx context.Context, w *reward.WithdrawRecord) error
	ListWithdrawRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.WithdrawRecord, error)

	// Genesis pool methods
	GetGenesisPool(ctx context.Context) (*genesis.Pool, error)
	SaveGenesisPool(ctx context.Context, p *genesis.Pool) error
	CreateApplication(ctx context.Context, a *genesis.Application) error
	GetApplication(ctx context.Context, addr string) (*genesis.Application, error)
	DeleteApplication(ctx context.Context, addr string) error
	ListApplications(ctx context.Context) ([]*genesis.Application, error)

	// Stats methods
	GetStats(ctx context.Context) (*stats.Global, error)
	SaveStats(ctx context.Context, g *stats.Global) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
