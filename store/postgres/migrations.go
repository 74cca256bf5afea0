package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the StakeLedger store.
var Migrations = migrate.NewGroup("stakeledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_stake_users",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stake_users (
    addr                TEXT PRIMARY KEY,
    referrer            TEXT NOT NULL DEFAULT '',
    team_level          INT NOT NULL DEFAULT 0,
    total_staked        TEXT NOT NULL DEFAULT '0',
    team_performance    TEXT NOT NULL DEFAULT '0',
    direct_referrals    JSONB NOT NULL DEFAULT '[]',
    order_ids           JSONB NOT NULL DEFAULT '[]',
    is_genesis_node     BOOLEAN NOT NULL DEFAULT FALSE,
    genesis_withdrawn   TEXT NOT NULL DEFAULT '0',
    genesis_reward_debt TEXT NOT NULL DEFAULT '0',
    static_bucket       JSONB,
    direct_bucket       JSONB,
    share_bucket        JSONB,
    team_bucket         JSONB,
    total_static_output TEXT NOT NULL DEFAULT '0',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_stake_users_referrer ON stake_users (referrer);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stake_users`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stake_orders",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stake_orders (
    id               BIGINT PRIMARY KEY,
    user_addr        TEXT NOT NULL DEFAULT '',
    level            INT NOT NULL DEFAULT 0,
    amount           TEXT NOT NULL DEFAULT '0',
    total_quota      TEXT NOT NULL DEFAULT '0',
    released_quota   TEXT NOT NULL DEFAULT '0',
    total_quota_haf  TEXT NOT NULL DEFAULT '0',
    released_haf     TEXT NOT NULL DEFAULT '0',
    start_time       BIGINT NOT NULL DEFAULT 0,
    last_settle_time BIGINT NOT NULL DEFAULT 0,
    is_completed     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE SEQUENCE IF NOT EXISTS stake_order_seq;
CREATE INDEX IF NOT EXISTS idx_stake_orders_user ON stake_orders (user_addr, id);
CREATE INDEX IF NOT EXISTS idx_stake_orders_active ON stake_orders (user_addr, id) WHERE NOT is_completed;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS stake_orders;
DROP SEQUENCE IF EXISTS stake_order_seq;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stake_reward_records",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stake_reward_records (
    id              TEXT PRIMARY KEY,
    user_addr       TEXT NOT NULL DEFAULT '',
    from_user       TEXT NOT NULL DEFAULT '',
    kind            TEXT NOT NULL DEFAULT '',
    timestamp       BIGINT NOT NULL DEFAULT 0,
    currency_amount TEXT NOT NULL DEFAULT '0',
    token_amount    TEXT NOT NULL DEFAULT '0'
);

CREATE INDEX IF NOT EXISTS idx_stake_rewards_user ON stake_reward_records (user_addr, id DESC);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stake_reward_records`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stake_withdraw_records",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stake_withdraw_records (
    id           TEXT PRIMARY KEY,
    user_addr    TEXT NOT NULL DEFAULT '',
    timestamp    BIGINT NOT NULL DEFAULT 0,
    gross        TEXT NOT NULL DEFAULT '0',
    fee          TEXT NOT NULL DEFAULT '0',
    net          TEXT NOT NULL DEFAULT '0',
    static_part  TEXT NOT NULL DEFAULT '0',
    dynamic_part TEXT NOT NULL DEFAULT '0',
    genesis_part TEXT NOT NULL DEFAULT '0'
);

CREATE INDEX IF NOT EXISTS idx_stake_withdrawals_user ON stake_withdraw_records (user_addr, id DESC);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stake_withdraw_records`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stake_genesis",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stake_genesis_pool (
    id           INT PRIMARY KEY,
    balance      TEXT NOT NULL DEFAULT '0',
    accumulator  TEXT NOT NULL DEFAULT '0',
    total_inflow TEXT NOT NULL DEFAULT '0',
    active_nodes JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS stake_genesis_applications (
    user_addr  TEXT PRIMARY KEY,
    id         TEXT NOT NULL DEFAULT '',
    cost       TEXT NOT NULL DEFAULT '0',
    applied_at BIGINT NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS stake_genesis_pool;
DROP TABLE IF EXISTS stake_genesis_applications;
`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stake_stats",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stake_stats (
    id               INT PRIMARY KEY,
    total_deposited  TEXT NOT NULL DEFAULT '0',
    total_paid_out   TEXT NOT NULL DEFAULT '0',
    total_fees       TEXT NOT NULL DEFAULT '0',
    total_minted     TEXT NOT NULL DEFAULT '0',
    active_users     BIGINT NOT NULL DEFAULT 0,
    completed_orders BIGINT NOT NULL DEFAULT 0
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stake_stats`)
				return err
			},
		},
	)
}
