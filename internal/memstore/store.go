// Package memstore хранит вещи и обмены в памяти процесса.
// Используется в тестах и при STORE_DRIVER=memory для локального запуска.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// Store реализует repository.Store. Один мьютекс охватывает всю операцию
// чтение-изменение-запись, поэтому каждая операция атомарна.
type Store struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*models.Item
	itemOrder []uuid.UUID
	trades    map[uuid.UUID]*models.Trade
	now       func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		items:  make(map[uuid.UUID]*models.Item),
		trades: make(map[uuid.UUID]*models.Trade),
		now:    time.Now,
	}
}

// GetItem возвращает копию вещи
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Вещь не найдена")
	}
	return item.Clone(), nil
}

// ListItemsByStatus возвращает вещи с указанным статусом в порядке добавления
func (s *Store) ListItemsByStatus(ctx context.Context, status models.ItemStatus) ([]*models.Item, error) {
	return s.listItems(ctx, func(i *models.Item) bool { return i.Status == status })
}

// ListItemsByOwner возвращает вещи пользователя в порядке добавления
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Item, error) {
	return s.listItems(ctx, func(i *models.Item) bool { return i.UserID == ownerID })
}

func (s *Store) listItems(ctx context.Context, keep func(*models.Item) bool) ([]*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Item
	for _, id := range s.itemOrder {
		item := s.items[id]
		if item.Deleted() || !keep(item) {
			continue
		}
		result = append(result, item.Clone())
	}
	return result, nil
}

// CreateItem сохраняет копию вещи
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return apperr.New(apperr.Conflict, "Вещь с таким ID уже существует")
	}
	s.items[item.ID] = item.Clone()
	s.itemOrder = append(s.itemOrder, item.ID)
	return nil
}

// SoftDeleteItem помечает вещь удаленной
func (s *Store) SoftDeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok || item.Deleted() {
		return apperr.New(apperr.NotFound, "Вещь не найдена")
	}
	if item.Status == models.ItemPending {
		return apperr.New(apperr.InvalidState, "Вещь участвует в обмене")
	}

	now := s.now()
	item.DeletedAt = &now
	item.UpdatedAt = now
	return nil
}

// GetTrade возвращает копию обмена
func (s *Store) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trade, ok := s.trades[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Обмен не найден")
	}
	return trade.Clone(), nil
}

// CreateTrade резервирует вещи и сохраняет обмен
func (s *Store) CreateTrade(ctx context.Context, trade *models.Trade) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trades[trade.ID]; exists {
		return apperr.New(apperr.Conflict, "Обмен с таким ID уже существует")
	}

	for _, id := range trade.ItemIDs() {
		item, ok := s.items[id]
		if !ok {
			return apperr.New(apperr.NotFound, "Вещь не найдена")
		}
		if !item.Tradable() {
			return apperr.New(apperr.Conflict, "Вещь уже недоступна для обмена")
		}
	}

	tradeID := trade.ID
	if err := s.transitionItems(trade.ItemIDs(), models.ItemAvailable, models.ItemPending, nil, &tradeID); err != nil {
		return err
	}
	s.trades[trade.ID] = trade.Clone()
	return nil
}

// AcceptTrade добавляет пользователя в acceptedBy и при необходимости завершает обмен
func (s *Store) AcceptTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.trades[id]
	if !ok {
		return nil, false, apperr.New(apperr.NotFound, "Обмен не найден")
	}

	trade := stored.Clone()
	changed, completed, err := trade.Accept(userID, s.now())
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return trade, false, nil
	}

	if completed {
		if err := s.transitionItems(trade.ItemIDs(), models.ItemPending, models.ItemTraded, &trade.ID, nil); err != nil {
			return nil, false, err
		}
	}

	s.trades[id] = trade.Clone()
	return trade, completed, nil
}

// DeclineTrade отклоняет обмен и освобождает вещи
func (s *Store) DeclineTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.trades[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Обмен не найден")
	}

	trade := stored.Clone()
	if err := trade.Decline(userID, s.now()); err != nil {
		return nil, err
	}

	if err := s.transitionItems(trade.ItemIDs(), models.ItemPending, models.ItemAvailable, &trade.ID, nil); err != nil {
		return nil, err
	}

	s.trades[id] = trade.Clone()
	return trade, nil
}

// ListTradesByUser возвращает обмены пользователя, новые сначала
func (s *Store) ListTradesByUser(ctx context.Context, userID uuid.UUID, status models.TradeStatus) ([]*models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Trade
	for _, trade := range s.trades {
		if !trade.IsParticipant(userID) {
			continue
		}
		if status != "" && trade.Status != status {
			continue
		}
		result = append(result, trade.Clone())
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// GetCategoryStats считает спрос и предложение по доступным вещам
func (s *Store) GetCategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[models.Category]models.CategoryStats)
	bump := func(c models.Category, demand, supply int) {
		if !c.Valid() {
			return
		}
		entry := stats[c]
		entry.Category = c
		entry.Demand += demand
		entry.Supply += supply
		stats[c] = entry
	}

	for _, item := range s.items {
		if !item.Tradable() {
			continue
		}
		bump(item.Category, 0, 1)
		for _, wanted := range item.DesiredCategories {
			bump(wanted, 1, 0)
		}
	}
	return stats, nil
}

// Close ничего не делает
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// transitionItems переводит все вещи из статуса from в статус to или не меняет ни одну.
// expectTrade проверяет обратную ссылку на обмен, setTrade задает новую (nil очищает).
// Вызывать под s.mu.
func (s *Store) transitionItems(ids []uuid.UUID, from, to models.ItemStatus, expectTrade, setTrade *uuid.UUID) error {
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok {
			return apperr.New(apperr.NotFound, "Вещь не найдена")
		}
		if item.Status != from {
			return apperr.New(apperr.Conflict, "Статус вещи изменился")
		}
		if expectTrade != nil && (item.PendingTradeID == nil || *item.PendingTradeID != *expectTrade) {
			return apperr.New(apperr.Conflict, "Вещь зарезервирована другим обменом")
		}
	}

	now := s.now()
	for _, id := range ids {
		item := s.items[id]
		item.Status = to
		item.UpdatedAt = now
		if setTrade != nil {
			tradeID := *setTrade
			item.PendingTradeID = &tradeID
		} else {
			item.PendingTradeID = nil
		}
	}
	return nil
}
