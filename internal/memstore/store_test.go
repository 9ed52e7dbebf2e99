package memstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

func addItem(t *testing.T, s *Store, owner uuid.UUID, status models.ItemStatus) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:             uuid.New(),
		UserID:         owner,
		Category:       models.CategoryBooks,
		EstimatedValue: decimal.NewFromInt(100),
		Status:         status,
	}
	if err := s.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func oneToOne(a, b *models.Item) *models.Trade {
	return &models.Trade{
		ID:            uuid.New(),
		Type:          models.TradeOneToOne,
		Status:        models.TradePending,
		UsersInvolved: []uuid.UUID{a.UserID, b.UserID},
		Item1ID:       &a.ID,
		Item2ID:       &b.ID,
	}
}

func TestStore_CreateTrade_isAllOrNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	free := addItem(t, s, uuid.New(), models.ItemAvailable)
	busy := addItem(t, s, uuid.New(), models.ItemPending)

	err := s.CreateTrade(ctx, oneToOne(free, busy))
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("got %v, want conflict", err)
	}

	got, err := s.GetItem(ctx, free.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Status != models.ItemAvailable || got.PendingTradeID != nil {
		t.Fatalf("free item was modified: status=%q pending=%v", got.Status, got.PendingTradeID)
	}
}

func TestStore_AcceptAndDecline_moveItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	a := addItem(t, s, uuid.New(), models.ItemAvailable)
	b := addItem(t, s, uuid.New(), models.ItemAvailable)
	c := addItem(t, s, uuid.New(), models.ItemAvailable)
	d := addItem(t, s, uuid.New(), models.ItemAvailable)

	done := oneToOne(a, b)
	if err := s.CreateTrade(ctx, done); err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}
	if _, completed, err := s.AcceptTrade(ctx, done.ID, a.UserID); err != nil || completed {
		t.Fatalf("first accept completed=%v err=%v", completed, err)
	}
	if _, completed, err := s.AcceptTrade(ctx, done.ID, b.UserID); err != nil || !completed {
		t.Fatalf("second accept completed=%v err=%v", completed, err)
	}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		item, _ := s.GetItem(ctx, id)
		if item.Status != models.ItemTraded || item.PendingTradeID != nil {
			t.Fatalf("item %s status=%q pending=%v, want traded", id, item.Status, item.PendingTradeID)
		}
	}

	dropped := oneToOne(c, d)
	if err := s.CreateTrade(ctx, dropped); err != nil {
		t.Fatalf("CreateTrade: %v", err)
	}
	trade, err := s.DeclineTrade(ctx, dropped.ID, d.UserID)
	if err != nil {
		t.Fatalf("DeclineTrade: %v", err)
	}
	if trade.Status != models.TradeDeclined {
		t.Fatalf("status got %q, want declined", trade.Status)
	}
	for _, id := range []uuid.UUID{c.ID, d.ID} {
		item, _ := s.GetItem(ctx, id)
		if item.Status != models.ItemAvailable || item.PendingTradeID != nil {
			t.Fatalf("item %s status=%q pending=%v, want available", id, item.Status, item.PendingTradeID)
		}
	}
}

func TestStore_SoftDeleteItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	owner := uuid.New()
	free := addItem(t, s, owner, models.ItemAvailable)
	busy := addItem(t, s, owner, models.ItemPending)

	if err := s.SoftDeleteItem(ctx, busy.ID); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("pending delete got %v, want invalid_state", err)
	}
	if err := s.SoftDeleteItem(ctx, free.ID); err != nil {
		t.Fatalf("SoftDeleteItem: %v", err)
	}

	items, err := s.ListItemsByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListItemsByOwner: %v", err)
	}
	if len(items) != 1 || items[0].ID != busy.ID {
		t.Fatalf("deleted item still listed: %v", items)
	}

	got, err := s.GetItem(ctx, free.ID)
	if err != nil || !got.Deleted() {
		t.Fatalf("deleted item must stay readable and flagged, got %v %v", got, err)
	}
}

func TestStore_honoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().GetTrade(ctx, uuid.New()); !apperr.Is(err, apperr.Unavailable) {
		t.Fatalf("got %v, want unavailable", err)
	}
}

func TestStore_GetCategoryStats_countsAvailableItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	addItem(t, s, uuid.New(), models.ItemAvailable)
	addItem(t, s, uuid.New(), models.ItemAvailable)
	addItem(t, s, uuid.New(), models.ItemTraded)

	seeker := &models.Item{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		Category:          models.CategoryMusic,
		DesiredCategories: []models.Category{models.CategoryBooks, models.CategoryGames},
		Status:            models.ItemAvailable,
	}
	if err := s.CreateItem(ctx, seeker); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	stats, err := s.GetCategoryStats(ctx)
	if err != nil {
		t.Fatalf("GetCategoryStats: %v", err)
	}

	if got := stats[models.CategoryBooks]; got.Supply != 2 || got.Demand != 1 {
		t.Fatalf("books got %+v, want supply 2 demand 1", got)
	}
	if got := stats[models.CategoryGames]; got.Supply != 0 || got.Demand != 1 {
		t.Fatalf("games got %+v, want supply 0 demand 1", got)
	}
}
