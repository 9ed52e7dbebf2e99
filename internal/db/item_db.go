package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

const itemNotFound = "Вещь не найдена"

// estimated_value читается текстом, чтобы не терять точность decimal
const itemColumns = `id, user_id, category, description, desired_categories, condition_score,
	estimated_value::text, status, keywords, attributes, pending_trade_id, created_at, updated_at, deleted_at`

// GetItem возвращает вещь по ID, включая логически удаленные
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)

	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, itemNotFound)
	}
	return item, nil
}

// ListItemsByStatus возвращает неудаленные вещи с указанным статусом в порядке создания
func (s *Store) ListItemsByStatus(ctx context.Context, status models.ItemStatus) ([]*models.Item, error) {
	return s.queryItems(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY created_at, id
	`, string(status))
}

// ListItemsByOwner возвращает неудаленные вещи пользователя, новые сначала
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Item, error) {
	return s.queryItems(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id
	`, ownerID)
}

// CreateItem сохраняет новую вещь
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	attributes, err := json.Marshal(nonNilMap(item.Attributes))
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "Неверный формат атрибутов")
	}

	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO items (id, user_id, category, description, desired_categories, condition_score,
			estimated_value, status, keywords, attributes, pending_trade_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9, $10, $11, $12, $12)
	`, item.ID, item.UserID, string(item.Category), item.Description, categoryStrings(item.DesiredCategories),
		item.ConditionScore, item.EstimatedValue.String(), string(item.Status), nonNilStrings(item.Keywords),
		attributes, item.PendingTradeID, createdAt)

	return mapError(err, itemNotFound)
}

// SoftDeleteItem помечает вещь удаленной, если она не участвует в обмене
func (s *Store) SoftDeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var (
			status    string
			deletedAt *time.Time
		)
		err := tx.QueryRow(ctx, `SELECT status, deleted_at FROM items WHERE id = $1 FOR UPDATE`, id).
			Scan(&status, &deletedAt)
		if err != nil {
			return mapError(err, itemNotFound)
		}
		if deletedAt != nil {
			return apperr.New(apperr.NotFound, itemNotFound)
		}
		if models.ItemStatus(status) == models.ItemPending {
			return apperr.New(apperr.InvalidState, "Вещь участвует в обмене")
		}

		now := s.now()
		_, err = tx.Exec(ctx, `UPDATE items SET deleted_at = $2, updated_at = $2 WHERE id = $1`, id, now)
		return mapError(err, itemNotFound)
	})
}

func (s *Store) queryItems(ctx context.Context, sql string, args ...any) ([]*models.Item, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, itemNotFound)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, mapError(err, itemNotFound)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err, itemNotFound)
	}
	return items, nil
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item       models.Item
		category   string
		status     string
		value      string
		desired    []string
		attributes []byte
	)

	err := row.Scan(&item.ID, &item.UserID, &category, &item.Description, &desired, &item.ConditionScore,
		&value, &status, &item.Keywords, &attributes, &item.PendingTradeID,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err != nil {
		return nil, err
	}

	item.Category = models.Category(category)
	item.Status = models.ItemStatus(status)
	item.DesiredCategories = make([]models.Category, len(desired))
	for i, c := range desired {
		item.DesiredCategories[i] = models.Category(c)
	}

	item.EstimatedValue, err = decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора стоимости %q: %w", value, err)
	}

	if len(attributes) > 0 {
		if err := json.Unmarshal(attributes, &item.Attributes); err != nil {
			return nil, fmt.Errorf("ошибка разбора атрибутов: %w", err)
		}
	}

	return &item, nil
}

func categoryStrings(categories []models.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
