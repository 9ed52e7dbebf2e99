package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// ItemRepository абстрагирует хранение вещей.
// Статус вещи меняется только внутри транзакций TradeRepository.
type ItemRepository interface {
	// GetItem возвращает вещь по ID, включая логически удаленные
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// ListItemsByStatus возвращает неудаленные вещи с указанным статусом в порядке создания
	ListItemsByStatus(ctx context.Context, status models.ItemStatus) ([]*models.Item, error)

	// ListItemsByOwner возвращает неудаленные вещи пользователя
	ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Item, error)

	// CreateItem сохраняет новую вещь
	CreateItem(ctx context.Context, item *models.Item) error

	// SoftDeleteItem помечает вещь удаленной, если она не участвует в обмене
	SoftDeleteItem(ctx context.Context, id uuid.UUID) error
}

// TradeRepository абстрагирует хранение обменов.
// Каждый изменяющий метод выполняется одной транзакцией вместе с изменением вещей.
type TradeRepository interface {
	// GetTrade возвращает обмен по ID
	GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error)

	// CreateTrade переводит все вещи обмена available -> pending и сохраняет обмен.
	// Если хотя бы одна вещь недоступна, возвращает conflict и ничего не меняет.
	CreateTrade(ctx context.Context, trade *models.Trade) error

	// AcceptTrade атомарно добавляет пользователя в acceptedBy и, если приняли все,
	// завершает обмен и переводит вещи в traded. completed=true только у вызова,
	// который выполнил переход.
	AcceptTrade(ctx context.Context, id, userID uuid.UUID) (trade *models.Trade, completed bool, err error)

	// DeclineTrade атомарно отклоняет обмен и возвращает вещи в available
	DeclineTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, error)

	// ListTradesByUser возвращает обмены пользователя, новые сначала.
	// Пустой статус означает любой статус.
	ListTradesByUser(ctx context.Context, userID uuid.UUID, status models.TradeStatus) ([]*models.Trade, error)
}

// StatsSource отдает счетчики спроса и предложения по категориям
type StatsSource interface {
	GetCategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error)
}

// Store объединяет все хранилища одного бэкенда
type Store interface {
	ItemRepository
	TradeRepository
	StatsSource
	Close(ctx context.Context) error
}
