// Package postgres provides a PostgreSQL-backed Store implementation using
// the Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/stats"
	ledgerstore "github.com/xraph/stakeledger/store"
	"github.com/xraph/stakeledger/user"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("stakeledger/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("stakeledger/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== User Store ====================

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	m := toUserModel(u)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetUser(ctx context.Context, addr string) (*user.User, error) {
	m := new(userModel)
	err := s.pg.NewSelect(m).
		Where("addr = $1", addr).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stakeledger.ErrUserNotFound
		}
		return nil, err
	}
	return fromUserModel(m)
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	m := toUserModel(u)
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stakeledger.ErrUserNotFound
	}
	return nil
}

func (s *Store) UserExists(ctx context.Context, addr string) (bool, error) {
	var n int64
	err := s.pg.NewRaw(`SELECT COUNT(1) FROM stake_users WHERE addr = $1`, addr).Scan(ctx, &n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ==================== Order Store ====================

func (s *Store) NextOrderID(ctx context.Context) (uint64, error) {
	var next int64
	err := s.pg.NewRaw(`SELECT nextval('stake_order_seq')`).Scan(ctx, &next)
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	m := toOrderModel(o)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetOrder(ctx context.Context, orderID uint64) (*order.Order, error) {
	m := new(orderModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", int64(orderID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stakeledger.ErrOrderNotFound
		}
		return nil, err
	}
	return fromOrderModel(m)
}

func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	m := toOrderModel(o)
	m.UpdatedAt = o.UpdatedAt
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stakeledger.ErrOrderNotFound
	}
	return nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, addr string, opts order.ListOpts) ([]*order.Order, error) {
	var models []orderModel
	q := s.pg.NewSelect(&models).Where("user_addr = $1", addr)

	if opts.OnlyActive {
		q = q.Where("is_completed = FALSE")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*order.Order, len(models))
	for i := range models {
		o, err := fromOrderModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = o
	}
	return result, nil
}

// ==================== Record logs ====================

func (s *Store) AppendRewardRecord(ctx context.Context, r *reward.Record) error {
	m := toRewardRecordModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListRewardRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.Record, error) {
	var models []rewardRecordModel
	q := s.pg.NewSelect(&models).Where("user_addr = $1", addr)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	// TypeIDs are K-sortable, so descending ID order is newest first.
	q = q.OrderExpr("id DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*reward.Record, len(models))
	for i := range models {
		r, err := fromRewardRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) AppendWithdrawRecord(ctx context.Context, w *reward.WithdrawRecord) error {
	m := toWithdrawRecordModel(w)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListWithdrawRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.WithdrawRecord, error) {
	var models []withdrawRecordModel
	q := s.pg.NewSelect(&models).Where("user_addr = $1", addr)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*reward.WithdrawRecord, len(models))
	for i := range models {
		w, err := fromWithdrawRecordModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	return result, nil
}

// ==================== Genesis Store ====================

func (s *Store) GetGenesisPool(ctx context.Context) (*genesis.Pool, error) {
	m := new(genesisPoolModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", poolRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return &genesis.Pool{}, nil
		}
		return nil, err
	}
	return fromGenesisPoolModel(m)
}

func (s *Store) SaveGenesisPool(ctx context.Context, p *genesis.Pool) error {
	m := toGenesisPoolModel(p)
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE SET balance = EXCLUDED.balance, accumulator = EXCLUDED.accumulator, total_inflow = EXCLUDED.total_inflow, active_nodes = EXCLUDED.active_nodes").
		Exec(ctx)
	return err
}

func (s *Store) CreateApplication(ctx context.Context, a *genesis.Application) error {
	m := toApplicationModel(a)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetApplication(ctx context.Context, addr string) (*genesis.Application, error) {
	m := new(applicationModel)
	err := s.pg.NewSelect(m).
		Where("user_addr = $1", addr).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stakeledger.ErrNoPendingApplication
		}
		return nil, err
	}
	return fromApplicationModel(m)
}

func (s *Store) DeleteApplication(ctx context.Context, addr string) error {
	res, err := s.pg.NewDelete((*applicationModel)(nil)).
		Where("user_addr = $1", addr).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return stakeledger.ErrNoPendingApplication
	}
	return nil
}

func (s *Store) ListApplications(ctx context.Context) ([]*genesis.Application, error) {
	var models []applicationModel
	q := s.pg.NewSelect(&models).OrderExpr("applied_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*genesis.Application, len(models))
	for i := range models {
		a, err := fromApplicationModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// ==================== Stats Store ====================

func (s *Store) GetStats(ctx context.Context) (*stats.Global, error) {
	m := new(statsModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", statsRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return &stats.Global{}, nil
		}
		return nil, err
	}
	return fromStatsModel(m)
}

func (s *Store) SaveStats(ctx context.Context, g *stats.Global) error {
	m := toStatsModel(g)
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE SET total_deposited = EXCLUDED.total_deposited, total_paid_out = EXCLUDED.total_paid_out, total_fees = EXCLUDED.total_fees, total_minted = EXCLUDED.total_minted, active_users = EXCLUDED.active_users, completed_orders = EXCLUDED.completed_orders").
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
