package db

import (
	"context"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// GetCategoryStats считает спрос и предложение по доступным вещам.
// Предложение: вещи категории. Спрос: вещи, владельцы которых хотят категорию.
func (s *Store) GetCategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category, 0::bigint AS demand, COUNT(*) AS supply
		FROM items
		WHERE status = 'available' AND deleted_at IS NULL
		GROUP BY category
		UNION ALL
		SELECT d.category, COUNT(*), 0
		FROM items, unnest(items.desired_categories) AS d(category)
		WHERE items.status = 'available' AND items.deleted_at IS NULL
		GROUP BY d.category
	`)
	if err != nil {
		return nil, mapError(err, "")
	}
	defer rows.Close()

	stats := make(map[models.Category]models.CategoryStats)
	for rows.Next() {
		var (
			category       string
			demand, supply int64
		)
		if err := rows.Scan(&category, &demand, &supply); err != nil {
			return nil, mapError(err, "")
		}

		c := models.Category(category)
		if !c.Valid() {
			continue
		}
		entry := stats[c]
		entry.Category = c
		entry.Demand += int(demand)
		entry.Supply += int(supply)
		stats[c] = entry
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(err, "")
	}
	return stats, nil
}
