package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trade_decisions (
		id            BIGSERIAL PRIMARY KEY,
		decision      TEXT NOT NULL,
		token_address TEXT NOT NULL DEFAULT '',
		token_symbol  TEXT NOT NULL DEFAULT '',
		reason        TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'pending',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS trade_executions (
		id            BIGSERIAL PRIMARY KEY,
		decision_id   BIGINT NOT NULL REFERENCES trade_decisions(id),
		raw_tx_to     TEXT NOT NULL DEFAULT '',
		raw_tx_data   TEXT NOT NULL DEFAULT '0x',
		raw_tx_value  TEXT NOT NULL DEFAULT '0',
		raw_tx_gas    TEXT NOT NULL DEFAULT '',
		signed_tx     TEXT,
		tx_hash       TEXT,
		status        TEXT NOT NULL DEFAULT 'unsigned',
		error_msg     TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS trader_config (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS portfolio (
		token_address TEXT PRIMARY KEY,
		token_symbol  TEXT NOT NULL DEFAULT '',
		amount_raw    TEXT NOT NULL DEFAULT '0',
		avg_buy_price DOUBLE PRECISION,
		last_tx_hash  TEXT,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_decisions_status ON trade_decisions (status)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_decisions_created ON trade_decisions (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_trade_executions_decision ON trade_executions (decision_id)`,
}

// Migrate creates the schema and returns nothing destructive: every
// statement is IF NOT EXISTS, so re-running at every boot is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	fmt.Println("[DB] Schema ready")
	return nil
}
