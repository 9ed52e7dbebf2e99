package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

const tradeNotFound = "Обмен не найден"

const tradeColumns = `id, type, status, proposer_id, users_involved, accepted_by, item1_id, item2_id,
	chain_items, chain_fairness_score, declined_by, message, created_at, updated_at`

// GetTrade возвращает обмен по ID
func (s *Store) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return getTrade(ctx, s.pool, id, false)
}

// CreateTrade резервирует вещи и сохраняет обмен одной транзакцией
func (s *Store) CreateTrade(ctx context.Context, trade *models.Trade) error {
	chainItems, err := json.Marshal(nonNilChain(trade.ChainItems))
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "Ошибка сериализации цепочки")
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := transitionItems(ctx, tx, trade.ItemIDs(), models.ItemAvailable, models.ItemPending, nil, &trade.ID, s.now()); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO trades (id, type, status, proposer_id, users_involved, accepted_by, item1_id, item2_id,
				chain_items, chain_fairness_score, message, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, trade.ID, string(trade.Type), string(trade.Status), trade.ProposerID, trade.UsersInvolved,
			nonNilIDs(trade.AcceptedBy), trade.Item1ID, trade.Item2ID, chainItems, trade.ChainFairnessScore,
			trade.Message, trade.CreatedAt, trade.UpdatedAt)
		return mapError(err, tradeNotFound)
	})
}

// AcceptTrade добавляет пользователя в accepted_by под блокировкой строки обмена.
// Параллельные вызовы выстраиваются на блокировке, поэтому завершение видит ровно один.
func (s *Store) AcceptTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, bool, error) {
	var (
		result    *models.Trade
		completed bool
	)

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		trade, err := getTrade(ctx, tx, id, true)
		if err != nil {
			return err
		}

		now := s.now()
		changed, done, err := trade.Accept(userID, now)
		if err != nil {
			return err
		}
		result = trade
		if !changed {
			return nil
		}

		if done {
			if err := transitionItems(ctx, tx, trade.ItemIDs(), models.ItemPending, models.ItemTraded, &trade.ID, nil, now); err != nil {
				return err
			}
		}

		completed = done
		return updateTrade(ctx, tx, trade)
	})
	if err != nil {
		return nil, false, err
	}

	return result, completed, nil
}

// DeclineTrade отклоняет обмен и освобождает вещи одной транзакцией
func (s *Store) DeclineTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, error) {
	var result *models.Trade

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		trade, err := getTrade(ctx, tx, id, true)
		if err != nil {
			return err
		}

		now := s.now()
		if err := trade.Decline(userID, now); err != nil {
			return err
		}

		if err := transitionItems(ctx, tx, trade.ItemIDs(), models.ItemPending, models.ItemAvailable, &trade.ID, nil, now); err != nil {
			return err
		}

		result = trade
		return updateTrade(ctx, tx, trade)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListTradesByUser возвращает обмены пользователя, новые сначала
func (s *Store) ListTradesByUser(ctx context.Context, userID uuid.UUID, status models.TradeStatus) ([]*models.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE $1 = ANY(users_involved) AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`, userID, string(status))
	if err != nil {
		return nil, mapError(err, tradeNotFound)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, mapError(err, tradeNotFound)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err, tradeNotFound)
	}
	return trades, nil
}

func getTrade(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.Trade, error) {
	sql := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	trade, err := scanTrade(q.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, mapError(err, tradeNotFound)
	}
	return trade, nil
}

func updateTrade(ctx context.Context, q querier, trade *models.Trade) error {
	_, err := q.Exec(ctx, `
		UPDATE trades SET status = $2, accepted_by = $3, declined_by = $4, updated_at = $5
		WHERE id = $1
	`, trade.ID, string(trade.Status), nonNilIDs(trade.AcceptedBy), trade.DeclinedBy, trade.UpdatedAt)
	return mapError(err, tradeNotFound)
}

// transitionItems переводит все вещи из статуса from в to или не меняет ни одной.
// Строки блокируются в порядке id, чтобы параллельные транзакции не попадали в deadlock.
func transitionItems(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, from, to models.ItemStatus,
	expectTrade, setTrade *uuid.UUID, now time.Time) error {
	if _, err := tx.Exec(ctx, `SELECT id FROM items WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids); err != nil {
		return mapError(err, itemNotFound)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE items SET status = $1, pending_trade_id = $2, updated_at = $3
		WHERE id = ANY($4) AND status = $5 AND deleted_at IS NULL
			AND ($6::uuid IS NULL OR pending_trade_id = $6)
	`, string(to), setTrade, now, ids, string(from), expectTrade)
	if err != nil {
		return mapError(err, itemNotFound)
	}

	if tag.RowsAffected() != int64(len(ids)) {
		return apperr.New(apperr.Conflict, fmt.Sprintf("Не все вещи обмена в статусе %s", from))
	}
	return nil
}

func scanTrade(row rowScanner) (*models.Trade, error) {
	var (
		trade      models.Trade
		tradeType  string
		status     string
		chainItems []byte
	)

	err := row.Scan(&trade.ID, &tradeType, &status, &trade.ProposerID, &trade.UsersInvolved, &trade.AcceptedBy,
		&trade.Item1ID, &trade.Item2ID, &chainItems, &trade.ChainFairnessScore, &trade.DeclinedBy,
		&trade.Message, &trade.CreatedAt, &trade.UpdatedAt)
	if err != nil {
		return nil, err
	}

	trade.Type = models.TradeType(tradeType)
	trade.Status = models.TradeStatus(status)

	if len(chainItems) > 0 {
		if err := json.Unmarshal(chainItems, &trade.ChainItems); err != nil {
			return nil, fmt.Errorf("ошибка разбора цепочки: %w", err)
		}
	}
	if len(trade.ChainItems) == 0 {
		trade.ChainItems = nil
	}
	if trade.AcceptedBy == nil {
		trade.AcceptedBy = []uuid.UUID{}
	}

	return &trade, nil
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func nonNilChain(items []models.ChainItem) []models.ChainItem {
	if items == nil {
		return []models.ChainItem{}
	}
	return items
}
