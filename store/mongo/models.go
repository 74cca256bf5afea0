package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/stakeledger/genesis"
	"github.com/xraph/stakeledger/id"
	"github.com/xraph/stakeledger/order"
	"github.com/xraph/stakeledger/reward"
	"github.com/xraph/stakeledger/stats"
	"github.com/xraph/stakeledger/types"
	"github.com/xraph/stakeledger/user"
)

// Amounts are persisted as their canonical scaled-integer string form
// (types.Amount.RawString), keeping full 18-decimal precision; BSON has no
// integer type wide enough.

// ==================== User models ====================

type bucketModel struct {
	Total      string `bson:"total"`
	Released   string `bson:"released"`
	Claimed    string `bson:"claimed"`
	LastUpdate int64  `bson:"last_update"`
}

func toBucketModel(b user.Bucket) bucketModel {
	return bucketModel{
		Total:      b.Total.RawString(),
		Released:   b.Released.RawString(),
		Claimed:    b.Claimed.RawString(),
		LastUpdate: b.LastUpdate,
	}
}

func fromBucketModel(m bucketModel) (user.Bucket, error) {
	total, err := types.Parse(m.Total)
	if err != nil {
		return user.Bucket{}, err
	}
	released, err := types.Parse(m.Released)
	if err != nil {
		return user.Bucket{}, err
	}
	claimed, err := types.Parse(m.Claimed)
	if err != nil {
		return user.Bucket{}, err
	}
	return user.Bucket{
		Total:      total,
		Released:   released,
		Claimed:    claimed,
		LastUpdate: m.LastUpdate,
	}, nil
}

type userModel struct {
	grove.BaseModel `grove:"table:stake_users"`

	Addr              string      `grove:"addr,pk"             bson:"_id"`
	Referrer          string      `grove:"referrer"            bson:"referrer"`
	TeamLevel         int         `grove:"team_level"          bson:"team_level"`
	TotalStaked       string      `grove:"total_staked"        bson:"total_staked"`
	TeamPerformance   string      `grove:"team_performance"    bson:"team_performance"`
	DirectReferrals   []string    `grove:"direct_referrals"    bson:"direct_referrals,omitempty"`
	OrderIDs          []int64     `grove:"order_ids"           bson:"order_ids,omitempty"`
	IsGenesisNode     bool        `grove:"is_genesis_node"     bson:"is_genesis_node"`
	GenesisWithdrawn  string      `grove:"genesis_withdrawn"   bson:"genesis_withdrawn"`
	GenesisRewardDebt string      `grove:"genesis_reward_debt" bson:"genesis_reward_debt"`
	Static            bucketModel `grove:"static_bucket"       bson:"static_bucket"`
	Direct            bucketModel `grove:"direct_bucket"       bson:"direct_bucket"`
	Share             bucketModel `grove:"share_bucket"        bson:"share_bucket"`
	Team              bucketModel `grove:"team_bucket"         bson:"team_bucket"`
	TotalStaticOutput string      `grove:"total_static_output" bson:"total_static_output"`
	CreatedAt         time.Time   `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time   `grove:"updated_at"          bson:"updated_at"`
}

func toUserModel(u *user.User) *userModel {
	orderIDs := make([]int64, len(u.OrderIDs))
	for i, oid := range u.OrderIDs {
		orderIDs[i] = int64(oid)
	}

	return &userModel{
		Addr:              u.Addr,
		Referrer:          u.Referrer,
		TeamLevel:         u.TeamLevel,
		TotalStaked:       u.TotalStaked.RawString(),
		TeamPerformance:   u.TeamPerformance.RawString(),
		DirectReferrals:   u.DirectReferrals,
		OrderIDs:          orderIDs,
		IsGenesisNode:     u.IsGenesisNode,
		GenesisWithdrawn:  u.GenesisWithdrawn.RawString(),
		GenesisRewardDebt: u.GenesisRewardDebt.RawString(),
		Static:            toBucketModel(u.Static),
		Direct:            toBucketModel(u.Direct),
		Share:             toBucketModel(u.Share),
		Team:              toBucketModel(u.Team),
		TotalStaticOutput: u.TotalStaticOutput.RawString(),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func fromUserModel(m *userModel) (*user.User, error) {
	totalStaked, err := types.Parse(m.TotalStaked)
	if err != nil {
		return nil, err
	}
	teamPerformance, err := types.Parse(m.TeamPerformance)
	if err != nil {
		return nil, err
	}
	genesisWithdrawn, err := types.Parse(m.GenesisWithdrawn)
	if err != nil {
		return nil, err
	}
	genesisDebt, err := types.Parse(m.GenesisRewardDebt)
	if err != nil {
		return nil, err
	}
	totalStaticOutput, err := types.Parse(m.TotalStaticOutput)
	if err != nil {
		return nil, err
	}
	static, err := fromBucketModel(m.Static)
	if err != nil {
		return nil, err
	}
	direct, err := fromBucketModel(m.Direct)
	if err != nil {
		return nil, err
	}
	share, err := fromBucketModel(m.Share)
	if err != nil {
		return nil, err
	}
	team, err := fromBucketModel(m.Team)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uint64, len(m.OrderIDs))
	for i, oid := range m.OrderIDs {
		orderIDs[i] = uint64(oid)
	}

	return &user.User{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Addr:              m.Addr,
		Referrer:          m.Referrer,
		TeamLevel:         m.TeamLevel,
		TotalStaked:       totalStaked,
		TeamPerformance:   teamPerformance,
		DirectReferrals:   m.DirectReferrals,
		OrderIDs:          orderIDs,
		IsGenesisNode:     m.IsGenesisNode,
		GenesisWithdrawn:  genesisWithdrawn,
		GenesisRewardDebt: genesisDebt,
		Static:            static,
		Direct:            direct,
		Share:             share,
		Team:              team,
		TotalStaticOutput: totalStaticOutput,
	}, nil
}

// ==================== Order models ====================

type orderModel struct {
	grove.BaseModel `grove:"table:stake_orders"`

	ID             int64     `grove:"id,pk"            bson:"_id"`
	UserAddr       string    `grove:"user_addr"        bson:"user_addr"`
	Level          int       `grove:"level"            bson:"level"`
	Amount         string    `grove:"amount"           bson:"amount"`
	TotalQuota     string    `grove:"total_quota"      bson:"total_quota"`
	ReleasedQuota  string    `grove:"released_quota"   bson:"released_quota"`
	TotalQuotaHaf  string    `grove:"total_quota_haf"  bson:"total_quota_haf"`
	ReleasedHaf    string    `grove:"released_haf"     bson:"released_haf"`
	StartTime      int64     `grove:"start_time"       bson:"start_time"`
	LastSettleTime int64     `grove:"last_settle_time" bson:"last_settle_time"`
	IsCompleted    bool      `grove:"is_completed"     bson:"is_completed"`
	CreatedAt      time.Time `grove:"created_at"       bson:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"       bson:"updated_at"`
}

func toOrderModel(o *order.Order) *orderModel {
	return &orderModel{
		ID:             int64(o.ID),
		UserAddr:       o.User,
		Level:          o.Level,
		Amount:         o.Amount.RawString(),
		TotalQuota:     o.TotalQuota.RawString(),
		ReleasedQuota:  o.ReleasedQuota.RawString(),
		TotalQuotaHaf:  o.TotalQuotaHaf.RawString(),
		ReleasedHaf:    o.ReleasedHaf.RawString(),
		StartTime:      o.StartTime,
		LastSettleTime: o.LastSettleTime,
		IsCompleted:    o.IsCompleted,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func fromOrderModel(m *orderModel) (*order.Order, error) {
	amount, err := types.Parse(m.Amount)
	if err != nil {
		return nil, err
	}
	totalQuota, err := types.Parse(m.TotalQuota)
	if err != nil {
		return nil, err
	}
	releasedQuota, err := types.Parse(m.ReleasedQuota)
	if err != nil {
		return nil, err
	}
	totalQuotaHaf, err := types.Parse(m.TotalQuotaHaf)
	if err != nil {
		return nil, err
	}
	releasedHaf, err := types.Parse(m.ReleasedHaf)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             uint64(m.ID),
		User:           m.UserAddr,
		Level:          m.Level,
		Amount:         amount,
		TotalQuota:     totalQuota,
		ReleasedQuota:  releasedQuota,
		TotalQuotaHaf:  totalQuotaHaf,
		ReleasedHaf:    releasedHaf,
		StartTime:      m.StartTime,
		LastSettleTime: m.LastSettleTime,
		IsCompleted:    m.IsCompleted,
	}, nil
}

// ==================== Record models ====================

type rewardRecordModel struct {
	grove.BaseModel `grove:"table:stake_reward_records"`

	ID             string `grove:"id,pk"           bson:"_id"`
	UserAddr       string `grove:"user_addr"       bson:"user_addr"`
	FromUser       string `grove:"from_user"       bson:"from_user"`
	Kind           string `grove:"kind"            bson:"kind"`
	Timestamp      int64  `grove:"timestamp"       bson:"timestamp"`
	CurrencyAmount string `grove:"currency_amount" bson:"currency_amount"`
	TokenAmount    string `grove:"token_amount"    bson:"token_amount"`
}

func toRewardRecordModel(r *reward.Record) *rewardRecordModel {
	return &rewardRecordModel{
		ID:             r.ID.String(),
		UserAddr:       r.User,
		FromUser:       r.FromUser,
		Kind:           string(r.Kind),
		Timestamp:      r.Timestamp,
		CurrencyAmount: r.CurrencyAmount.RawString(),
		TokenAmount:    r.TokenAmount.RawString(),
	}
}

func fromRewardRecordModel(m *rewardRecordModel) (*reward.Record, error) {
	recordID, err := id.ParseRewardID(m.ID)
	if err != nil {
		return nil, err
	}
	currency, err := types.Parse(m.CurrencyAmount)
	if err != nil {
		return nil, err
	}
	token, err := types.Parse(m.TokenAmount)
	if err != nil {
		return nil, err
	}

	return &reward.Record{
		ID:             recordID,
		User:           m.UserAddr,
		FromUser:       m.FromUser,
		Kind:           reward.Kind(m.Kind),
		Timestamp:      m.Timestamp,
		CurrencyAmount: currency,
		TokenAmount:    token,
	}, nil
}

type withdrawRecordModel struct {
	grove.BaseModel `grove:"table:stake_withdraw_records"`

	ID        string `grove:"id,pk"        bson:"_id"`
	UserAddr  string `grove:"user_addr"    bson:"user_addr"`
	Timestamp int64  `grove:"timestamp"    bson:"timestamp"`
	Gross     string `grove:"gross"        bson:"gross"`
	Fee       string `grove:"fee"          bson:"fee"`
	Net       string `grove:"net"          bson:"net"`
	Static    string `grove:"static_part"  bson:"static_part"`
	Dynamic   string `grove:"dynamic_part" bson:"dynamic_part"`
	Genesis   string `grove:"genesis_part" bson:"genesis_part"`
}

func toWithdrawRecordModel(w *reward.WithdrawRecord) *withdrawRecordModel {
	return &withdrawRecordModel{
		ID:        w.ID.String(),
		UserAddr:  w.User,
		Timestamp: w.Timestamp,
		Gross:     w.Gross.RawString(),
		Fee:       w.Fee.RawString(),
		Net:       w.Net.RawString(),
		Static:    w.Static.RawString(),
		Dynamic:   w.Dynamic.RawString(),
		Genesis:   w.Genesis.RawString(),
	}
}

func fromWithdrawRecordModel(m *withdrawRecordModel) (*reward.WithdrawRecord, error) {
	recordID, err := id.ParseWithdrawalID(m.ID)
	if err != nil {
		return nil, err
	}
	gross, err := types.Parse(m.Gross)
	if err != nil {
		return nil, err
	}
	fee, err := types.Parse(m.Fee)
	if err != nil {
		return nil, err
	}
	net, err := types.Parse(m.Net)
	if err != nil {
		return nil, err
	}
	static, err := types.Parse(m.Static)
	if err != nil {
		return nil, err
	}
	dynamic, err := types.Parse(m.Dynamic)
	if err != nil {
		return nil, err
	}
	gen, err := types.Parse(m.Genesis)
	if err != nil {
		return nil, err
	}

	return &reward.WithdrawRecord{
		ID:        recordID,
		User:      m.UserAddr,
		Timestamp: m.Timestamp,
		Gross:     gross,
		Fee:       fee,
		Net:       net,
		Static:    static,
		Dynamic:   dynamic,
		Genesis:   gen,
	}, nil
}

// ==================== Genesis models ====================

type genesisPoolModel struct {
	grove.BaseModel `grove:"table:stake_genesis_pool"`

	ID          int      `grove:"id,pk"        bson:"_id"`
	Balance     string   `grove:"balance"      bson:"balance"`
	Accumulator string   `grove:"accumulator"  bson:"accumulator"`
	TotalInflow string   `grove:"total_inflow" bson:"total_inflow"`
	ActiveNodes []string `grove:"active_nodes" bson:"active_nodes,omitempty"`
}

const poolRowID = 1

func toGenesisPoolModel(p *genesis.Pool) *genesisPoolModel {
	return &genesisPoolModel{
		ID:          poolRowID,
		Balance:     p.Balance.RawString(),
		Accumulator: p.Accumulator.RawString(),
		TotalInflow: p.TotalInflow.RawString(),
		ActiveNodes: p.ActiveNodes,
	}
}

func fromGenesisPoolModel(m *genesisPoolModel) (*genesis.Pool, error) {
	balance, err := types.Parse(m.Balance)
	if err != nil {
		return nil, err
	}
	accumulator, err := types.Parse(m.Accumulator)
	if err != nil {
		return nil, err
	}
	inflow, err := types.Parse(m.TotalInflow)
	if err != nil {
		return nil, err
	}

	return &genesis.Pool{
		Balance:     balance,
		Accumulator: accumulator,
		TotalInflow: inflow,
		ActiveNodes: m.ActiveNodes,
	}, nil
}

type applicationModel struct {
	grove.BaseModel `grove:"table:stake_genesis_applications"`

	UserAddr  string `grove:"user_addr,pk" bson:"_id"`
	ID        string `grove:"id"           bson:"id"`
	Cost      string `grove:"cost"         bson:"cost"`
	AppliedAt int64  `grove:"applied_at"   bson:"applied_at"`
}

func toApplicationModel(a *genesis.Application) *applicationModel {
	return &applicationModel{
		UserAddr:  a.User,
		ID:        a.ID.String(),
		Cost:      a.Cost.RawString(),
		AppliedAt: a.AppliedAt,
	}
}

func fromApplicationModel(m *applicationModel) (*genesis.Application, error) {
	appID, err := id.ParseApplicationID(m.ID)
	if err != nil {
		return nil, err
	}
	cost, err := types.Parse(m.Cost)
	if err != nil {
		return nil, err
	}

	return &genesis.Application{
		ID:        appID,
		User:      m.UserAddr,
		Cost:      cost,
		AppliedAt: m.AppliedAt,
	}, nil
}

// ==================== Stats models ====================

type statsModel struct {
	grove.BaseModel `grove:"table:stake_stats"`

	ID              int    `grove:"id,pk"            bson:"_id"`
	TotalDeposited  string `grove:"total_deposited"  bson:"total_deposited"`
	TotalPaidOut    string `grove:"total_paid_out"   bson:"total_paid_out"`
	TotalFees       string `grove:"total_fees"       bson:"total_fees"`
	TotalMinted     string `grove:"total_minted"     bson:"total_minted"`
	ActiveUsers     int64  `grove:"active_users"     bson:"active_users"`
	CompletedOrders int64  `grove:"completed_orders" bson:"completed_orders"`
}

const statsRowID = 1

func toStatsModel(g *stats.Global) *statsModel {
	return &statsModel{
		ID:              statsRowID,
		TotalDeposited:  g.TotalDeposited.RawString(),
		TotalPaidOut:    g.TotalPaidOut.RawString(),
		TotalFees:       g.TotalFees.RawString(),
		TotalMinted:     g.TotalMinted.RawString(),
		ActiveUsers:     g.ActiveUsers,
		CompletedOrders: g.CompletedOrders,
	}
}

func fromStatsModel(m *statsModel) (*stats.Global, error) {
	deposited, err := types.Parse(m.TotalDeposited)
	if err != nil {
		return nil, err
	}
	paidOut, err := types.Parse(m.TotalPaidOut)
	if err != nil {
		return nil, err
	}
	fees, err := types.Parse(m.TotalFees)
	if err != nil {
		return nil, err
	}
	minted, err := types.Parse(m.TotalMinted)
	if err != nil {
		return nil, err
	}

	return &stats.Global{
		TotalDeposited:  deposited,
		TotalPaidOut:    paidOut,
		TotalFees:       fees,
		TotalMinted:     minted,
		ActiveUsers:     m.ActiveUsers,
		CompletedOrders: m.CompletedOrders,
	}, nil
}
