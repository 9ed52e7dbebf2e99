package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id                 UUID PRIMARY KEY,
		user_id            UUID NOT NULL,
		category           TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		desired_categories TEXT[] NOT NULL DEFAULT '{}',
		condition_score    INT NOT NULL DEFAULT 0,
		estimated_value    NUMERIC(14, 2) NOT NULL DEFAULT 0,
		status             TEXT NOT NULL DEFAULT 'available',
		keywords           TEXT[] NOT NULL DEFAULT '{}',
		attributes         JSONB NOT NULL DEFAULT '{}',
		pending_trade_id   UUID,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at         TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_status ON items (status, created_at) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_items_user_id ON items (user_id)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id                   UUID PRIMARY KEY,
		type                 TEXT NOT NULL,
		status               TEXT NOT NULL,
		proposer_id          UUID NOT NULL,
		users_involved       UUID[] NOT NULL,
		accepted_by          UUID[] NOT NULL DEFAULT '{}',
		item1_id             UUID,
		item2_id             UUID,
		chain_items          JSONB NOT NULL DEFAULT '[]',
		chain_fairness_score INT NOT NULL DEFAULT 0,
		declined_by          UUID,
		message              TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_users_involved ON trades USING GIN (users_involved)`,
}

// EnsureSchema создает таблицы и индексы, если их еще нет
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка при создании схемы: %w", err)
		}
	}
	return nil
}
