// Package mongo provides a MongoDB-backed Store implementation using the
// Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/stats"
	ledgerstore "github.com/xraph/stakeledger/store"
	"github.com/xraph/stakeledger/user"
)

// Collection name constants.
const (
	colUsers        = "stake_users"
	colOrders       = "stake_orders"
	colRewards      = "stake_reward_records"
	colWithdrawals  = "stake_withdraw_records"
	colGenesisPool  = "stake_genesis_pool"
	colApplications = "stake_genesis_applications"
	colStats        = "stake_stats"
	colCounters     = "stake_counters"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all ledger collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("stakeledger/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, addr string) (*user.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": addr}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, stakeledger.ErrUserNotFound
		}
		return nil, fmt.Errorf("stakeledger/mongo: get user: %w", err)
	}
	return fromUserModel(&m)
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	m := toUserModel(u)

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Addr}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: update user: %w", err)
	}
	if res.MatchedCount() == 0 {
		return stakeledger.ErrUserNotFound
	}
	return nil
}

func (s *Store) UserExists(ctx context.Context, addr string) (bool, error) {
	n, err := s.mdb.Collection(colUsers).CountDocuments(ctx, bson.M{"_id": addr})
	if err != nil {
		return false, fmt.Errorf("stakeledger/mongo: user exists: %w", err)
	}
	return n > 0, nil
}

// ==================== Order Store ====================

// counterDoc backs the monotonic order sequence.
type counterDoc struct {
	ID    string `bson:"_id"`
	Value int64  `bson:"value"`
}

func (s *Store) NextOrderID(ctx context.Context) (uint64, error) {
	var doc counterDoc
	err := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": "order_id"},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("stakeledger/mongo: next order id: %w", err)
	}
	return uint64(doc.Value), nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	m := toOrderModel(o)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID uint64) (*order.Order, error) {
	var m orderModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(orderID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, stakeledger.ErrOrderNotFound
		}
		return nil, fmt.Errorf("stakeledger/mongo: get order: %w", err)
	}
	return fromOrderModel(&m)
}

func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	m := toOrderModel(o)

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: update order: %w", err)
	}
	if res.MatchedCount() == 0 {
		return stakeledger.ErrOrderNotFound
	}
	return nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, addr string, opts order.ListOpts) ([]*order.Order, error) {
	var models []orderModel

	filter := bson.M{"user_addr": addr}
	if opts.OnlyActive {
		filter["is_completed"] = false
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stakeledger/mongo: list orders: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: append reward record: %w", err)
	}
	return nil
}

func (s *Store) ListRewardRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.Record, error) {
	var models []rewardRecordModel

	// TypeIDs are K-sortable, so descending _id order is newest first.
	q := s.mdb.NewFind(&models).
		Filter(bson.M{"user_addr": addr}).
		Sort(bson.D{{Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stakeledger/mongo: list reward records: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: append withdraw record: %w", err)
	}
	return nil
}

func (s *Store) ListWithdrawRecords(ctx context.Context, addr string, opts reward.ListOpts) ([]*reward.WithdrawRecord, error) {
	var models []withdrawRecordModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"user_addr": addr}).
		Sort(bson.D{{Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stakeledger/mongo: list withdraw records: %w", err)
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
	var m genesisPoolModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": poolRowID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return &genesis.Pool{}, nil
		}
		return nil, fmt.Errorf("stakeledger/mongo: get genesis pool: %w", err)
	}
	return fromGenesisPoolModel(&m)
}

func (s *Store) SaveGenesisPool(ctx context.Context, p *genesis.Pool) error {
	m := toGenesisPoolModel(p)
	_, err := s.mdb.Collection(colGenesisPool).ReplaceOne(ctx,
		bson.M{"_id": poolRowID},
		m,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: save genesis pool: %w", err)
	}
	return nil
}

func (s *Store) CreateApplication(ctx context.Context, a *genesis.Application) error {
	m := toApplicationModel(a)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: create application: %w", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, addr string) (*genesis.Application, error) {
	var m applicationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": addr}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, stakeledger.ErrNoPendingApplication
		}
		return nil, fmt.Errorf("stakeledger/mongo: get application: %w", err)
	}
	return fromApplicationModel(&m)
}

func (s *Store) DeleteApplication(ctx context.Context, addr string) error {
	res, err := s.mdb.NewDelete((*applicationModel)(nil)).
		Filter(bson.M{"_id": addr}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: delete application: %w", err)
	}
	if res.DeletedCount() == 0 {
		return stakeledger.ErrNoPendingApplication
	}
	return nil
}

func (s *Store) ListApplications(ctx context.Context) ([]*genesis.Application, error) {
	var models []applicationModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "applied_at", Value: 1}})

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stakeledger/mongo: list applications: %w", err)
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
	var m statsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": statsRowID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return &stats.Global{}, nil
		}
		return nil, fmt.Errorf("stakeledger/mongo: get stats: %w", err)
	}
	return fromStatsModel(&m)
}

func (s *Store) SaveStats(ctx context.Context, g *stats.Global) error {
	m := toStatsModel(g)
	_, err := s.mdb.Collection(colStats).ReplaceOne(ctx,
		bson.M{"_id": statsRowID},
		m,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("stakeledger/mongo: save stats: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all ledger collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "referrer", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "user_addr", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_addr", Value: 1}, {Key: "is_completed", Value: 1}}},
		},
		colRewards: {
			{Keys: bson.D{{Key: "user_addr", Value: 1}, {Key: "_id", Value: -1}}},
		},
		colWithdrawals: {
			{Keys: bson.D{{Key: "user_addr", Value: 1}, {Key: "_id", Value: -1}}},
		},
		colApplications: {
			{Keys: bson.D{{Key: "applied_at", Value: 1}}},
		},
	}
}
