package postgres

import (
	"encoding/json"
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
// (types.Amount.RawString) in TEXT columns. TEXT keeps the full 18-decimal
// precision that NUMERIC would round and BIGINT would overflow.

// ==================== User models ====================

type userModel struct {
	grove.BaseModel `grove:"table:stake_users"`

	Addr              string          `grove:"addr,pk"`
	Referrer          string          `grove:"referrer"`
	TeamLevel         int             `grove:"team_level"`
	TotalStaked       string          `grove:"total_staked"`
	TeamPerformance   string          `grove:"team_performance"`
	DirectReferrals   json.RawMessage `grove:"direct_referrals,type:jsonb"`
	OrderIDs          json.RawMessage `grove:"order_ids,type:jsonb"`
	IsGenesisNode     bool            `grove:"is_genesis_node"`
	GenesisWithdrawn  string          `grove:"genesis_withdrawn"`
	GenesisRewardDebt string          `grove:"genesis_reward_debt"`
	Static            json.RawMessage `grove:"static_bucket,type:jsonb"`
	Direct            json.RawMessage `grove:"direct_bucket,type:jsonb"`
	Share             json.RawMessage `grove:"share_bucket,type:jsonb"`
	Team              json.RawMessage `grove:"team_bucket,type:jsonb"`
	TotalStaticOutput string          `grove:"total_static_output"`
	CreatedAt         time.Time       `grove:"created_at"`
	UpdatedAt         time.Time       `grove:"updated_at"`
}

func toUserModel(u *user.User) *userModel {
	referrals, _ := json.Marshal(u.DirectReferrals) //nolint:errcheck // best-effort
	orderIDs, _ := json.Marshal(u.OrderIDs)         //nolint:errcheck // best-effort
	static, _ := json.Marshal(u.Static)             //nolint:errcheck // best-effort
	direct, _ := json.Marshal(u.Direct)             //nolint:errcheck // best-effort
	share, _ := json.Marshal(u.Share)               //nolint:errcheck // best-effort
	team, _ := json.Marshal(u.Team)                 //nolint:errcheck // best-effort

	return &userModel{
		Addr:              u.Addr,
		Referrer:          u.Referrer,
		TeamLevel:         u.TeamLevel,
		TotalStaked:       u.TotalStaked.RawString(),
		TeamPerformance:   u.TeamPerformance.RawString(),
		DirectReferrals:   referrals,
		OrderIDs:          orderIDs,
		IsGenesisNode:     u.IsGenesisNode,
		GenesisWithdrawn:  u.GenesisWithdrawn.RawString(),
		GenesisRewardDebt: u.GenesisRewardDebt.RawString(),
		Static:            static,
		Direct:            direct,
		Share:             share,
		Team:              team,
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

	var referrals []string
	if len(m.DirectReferrals) > 0 {
		_ = json.Unmarshal(m.DirectReferrals, &referrals) //nolint:errcheck // best-effort
	}
	var orderIDs []uint64
	if len(m.OrderIDs) > 0 {
		_ = json.Unmarshal(m.OrderIDs, &orderIDs) //nolint:errcheck // best-effort
	}

	u := &user.User{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Addr:              m.Addr,
		Referrer:          m.Referrer,
		TeamLevel:         m.TeamLevel,
		TotalStaked:       totalStaked,
		TeamPerformance:   teamPerformance,
		DirectReferrals:   referrals,
		OrderIDs:          orderIDs,
		IsGenesisNode:     m.IsGenesisNode,
		GenesisWithdrawn:  genesisWithdrawn,
		GenesisRewardDebt: genesisDebt,
		TotalStaticOutput: totalStaticOutput,
	}
	if err := unmarshalBucket(m.Static, &u.Static); err != nil {
		return nil, err
	}
	if err := unmarshalBucket(m.Direct, &u.Direct); err != nil {
		return nil, err
	}
	if err := unmarshalBucket(m.Share, &u.Share); err != nil {
		return nil, err
	}
	if err := unmarshalBucket(m.Team, &u.Team); err != nil {
		return nil, err
	}
	return u, nil
}

func unmarshalBucket(raw json.RawMessage, b *user.Bucket) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, b)
}

// ==================== Order models ====================

type orderModel struct {
	grove.BaseModel `grove:"table:stake_orders"`

	ID             int64     `grove:"id,pk"`
	UserAddr       string    `grove:"user_addr"`
	Level          int       `grove:"level"`
	Amount         string    `grove:"amount"`
	TotalQuota     string    `grove:"total_quota"`
	ReleasedQuota  string    `grove:"released_quota"`
	TotalQuotaHaf  string    `grove:"total_quota_haf"`
	ReleasedHaf    string    `grove:"released_haf"`
	StartTime      int64     `grove:"start_time"`
	LastSettleTime int64     `grove:"last_settle_time"`
	IsCompleted    bool      `grove:"is_completed"`
	CreatedAt      time.Time `grove:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"`
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

	ID             string `grove:"id,pk"`
	UserAddr       string `grove:"user_addr"`
	FromUser       string `grove:"from_user"`
	Kind           string `grove:"kind"`
	Timestamp      int64  `grove:"timestamp"`
	CurrencyAmount string `grove:"currency_amount"`
	TokenAmount    string `grove:"token_amount"`
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

	ID        string `grove:"id,pk"`
	UserAddr  string `grove:"user_addr"`
	Timestamp int64  `grove:"timestamp"`
	Gross     string `grove:"gross"`
	Fee       string `grove:"fee"`
	Net       string `grove:"net"`
	Static    string `grove:"static_part"`
	Dynamic   string `grove:"dynamic_part"`
	Genesis   string `grove:"genesis_part"`
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

// genesisPoolModel is a singleton row keyed by a fixed ID.
type genesisPoolModel struct {
	grove.BaseModel `grove:"table:stake_genesis_pool"`

	ID          int             `grove:"id,pk"`
	Balance     string          `grove:"balance"`
	Accumulator string          `grove:"accumulator"`
	TotalInflow string          `grove:"total_inflow"`
	ActiveNodes json.RawMessage `grove:"active_nodes,type:jsonb"`
}

const poolRowID = 1

func toGenesisPoolModel(p *genesis.Pool) *genesisPoolModel {
	nodes, _ := json.Marshal(p.ActiveNodes) //nolint:errcheck // best-effort
	return &genesisPoolModel{
		ID:          poolRowID,
		Balance:     p.Balance.RawString(),
		Accumulator: p.Accumulator.RawString(),
		TotalInflow: p.TotalInflow.RawString(),
		ActiveNodes: nodes,
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

	var nodes []string
	if len(m.ActiveNodes) > 0 {
		_ = json.Unmarshal(m.ActiveNodes, &nodes) //nolint:errcheck // best-effort
	}

	return &genesis.Pool{
		Balance:     balance,
		Accumulator: accumulator,
		TotalInflow: inflow,
		ActiveNodes: nodes,
	}, nil
}

type applicationModel struct {
	grove.BaseModel `grove:"table:stake_genesis_applications"`

	UserAddr  string `grove:"user_addr,pk"`
	ID        string `grove:"id"`
	Cost      string `grove:"cost"`
	AppliedAt int64  `grove:"applied_at"`
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

// statsModel is a singleton row keyed by a fixed ID.
type statsModel struct {
	grove.BaseModel `grove:"table:stake_stats"`

	ID              int    `grove:"id,pk"`
	TotalDeposited  string `grove:"total_deposited"`
	TotalPaidOut    string `grove:"total_paid_out"`
	TotalFees       string `grove:"total_fees"`
	TotalMinted     string `grove:"total_minted"`
	ActiveUsers     int64  `grove:"active_users"`
	CompletedOrders int64  `grove:"completed_orders"`
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
