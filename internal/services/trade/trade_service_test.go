package trade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/config"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/matching"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/memstore"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) (*TradeService, *memstore.Store) {
	t.Helper()

	store := memstore.New()
	log := zap.NewNop().Sugar()
	cfg := &config.Config{JWTSecret: testSecret, StoreTimeout: 2 * time.Second}
	matcher := matching.NewService(store, store, matching.DefaultConfig(), log)

	return NewTradeService(cfg, store, store, matcher, log), store
}

func putItem(t *testing.T, store *memstore.Store, owner uuid.UUID, category models.Category, value int64, wants ...models.Category) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:                uuid.New(),
		UserID:            owner,
		Category:          category,
		DesiredCategories: wants,
		ConditionScore:    7,
		EstimatedValue:    decimal.NewFromInt(value),
		Status:            models.ItemAvailable,
	}
	if err := store.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func itemStatus(t *testing.T, store *memstore.Store, id uuid.UUID) models.ItemStatus {
	t.Helper()

	item, err := store.GetItem(context.Background(), id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	return item.Status
}

// fourUserChain строит кольцо books -> electronics -> bikes -> music -> books
func fourUserChain(t *testing.T, store *memstore.Store) ([]uuid.UUID, []*models.Item) {
	t.Helper()

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	items := []*models.Item{
		putItem(t, store, users[0], models.CategoryBooks, 100, models.CategoryElectronics),
		putItem(t, store, users[1], models.CategoryElectronics, 110, models.CategoryBikes),
		putItem(t, store, users[2], models.CategoryBikes, 95, models.CategoryMusic),
		putItem(t, store, users[3], models.CategoryMusic, 105, models.CategoryBooks),
	}
	return users, items
}

func itemIDs(items []*models.Item) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestProposeOneToOne_reservesBothItems(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	mine := putItem(t, store, alice, models.CategoryBooks, 100)
	theirs := putItem(t, store, bob, models.CategoryGames, 100)

	trade, err := svc.ProposeOneToOne(context.Background(), alice, mine.ID, theirs.ID, "меняемся?")
	if err != nil {
		t.Fatalf("ProposeOneToOne: %v", err)
	}

	if trade.Status != models.TradePending || len(trade.AcceptedBy) != 0 {
		t.Fatalf("got status=%q accepted=%v, want pending with nobody accepted", trade.Status, trade.AcceptedBy)
	}
	if len(trade.UsersInvolved) != 2 {
		t.Fatalf("users involved got %v, want both owners", trade.UsersInvolved)
	}
	for _, id := range []uuid.UUID{mine.ID, theirs.ID} {
		if got := itemStatus(t, store, id); got != models.ItemPending {
			t.Fatalf("item %s got %q, want pending", id, got)
		}
	}
}

func TestProposeOneToOne_validation(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	mine := putItem(t, store, alice, models.CategoryBooks, 100)
	mineToo := putItem(t, store, alice, models.CategoryMusic, 100)
	theirs := putItem(t, store, bob, models.CategoryGames, 100)

	tests := []struct {
		name     string
		proposer uuid.UUID
		item1    uuid.UUID
		item2    uuid.UUID
		want     apperr.Kind
	}{
		{name: "same item", proposer: alice, item1: mine.ID, item2: mine.ID, want: apperr.InvalidInput},
		{name: "foreign item1", proposer: alice, item1: theirs.ID, item2: mine.ID, want: apperr.Forbidden},
		{name: "own item2", proposer: alice, item1: mine.ID, item2: mineToo.ID, want: apperr.InvalidInput},
		{name: "missing item", proposer: alice, item1: mine.ID, item2: uuid.New(), want: apperr.NotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProposeOneToOne(context.Background(), tt.proposer, tt.item1, tt.item2, "")
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("got %q (%v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestProposeOneToOne_conflictOnPendingItem(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	wanted := putItem(t, store, bob, models.CategoryGames, 100)
	first := putItem(t, store, alice, models.CategoryBooks, 100)
	second := putItem(t, store, carol, models.CategoryBooks, 100)

	if _, err := svc.ProposeOneToOne(context.Background(), alice, first.ID, wanted.ID, ""); err != nil {
		t.Fatalf("first proposal: %v", err)
	}

	_, err := svc.ProposeOneToOne(context.Background(), carol, second.ID, wanted.ID, "")
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("got %v, want conflict", err)
	}
	if got := itemStatus(t, store, second.ID); got != models.ItemAvailable {
		t.Fatalf("rejected proposal reserved an item: %q", got)
	}
}

func TestAccept_oneToOneCompletesOnSecondAcceptance(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	mine := putItem(t, store, alice, models.CategoryBooks, 100)
	theirs := putItem(t, store, bob, models.CategoryGames, 100)
	ctx := context.Background()

	trade, err := svc.ProposeOneToOne(ctx, alice, mine.ID, theirs.ID, "")
	if err != nil {
		t.Fatalf("ProposeOneToOne: %v", err)
	}

	first, err := svc.Accept(ctx, trade.ID, bob)
	if err != nil {
		t.Fatalf("Accept bob: %v", err)
	}
	if first.Completed || first.AcceptedCount != 1 || first.TotalCount != 2 {
		t.Fatalf("after bob got completed=%v %d/%d, want pending 1/2", first.Completed, first.AcceptedCount, first.TotalCount)
	}

	again, err := svc.Accept(ctx, trade.ID, bob)
	if err != nil {
		t.Fatalf("repeated Accept: %v", err)
	}
	if again.AcceptedCount != 1 {
		t.Fatalf("repeated accept changed count to %d", again.AcceptedCount)
	}

	second, err := svc.Accept(ctx, trade.ID, alice)
	if err != nil {
		t.Fatalf("Accept alice: %v", err)
	}
	if !second.Completed || second.Trade.Status != models.TradeCompleted {
		t.Fatalf("got completed=%v status=%q, want completed", second.Completed, second.Trade.Status)
	}
	for _, id := range []uuid.UUID{mine.ID, theirs.ID} {
		if got := itemStatus(t, store, id); got != models.ItemTraded {
			t.Fatalf("item %s got %q, want traded", id, got)
		}
	}

	if _, err := svc.Decline(ctx, trade.ID, bob); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("decline after completion got %v, want invalid_state", err)
	}
}

func TestAccept_outsiderIsForbidden(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	mine := putItem(t, store, alice, models.CategoryBooks, 100)
	theirs := putItem(t, store, bob, models.CategoryGames, 100)

	trade, err := svc.ProposeOneToOne(context.Background(), alice, mine.ID, theirs.ID, "")
	if err != nil {
		t.Fatalf("ProposeOneToOne: %v", err)
	}

	if _, err := svc.Accept(context.Background(), trade.ID, uuid.New()); !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
	if _, err := svc.GetTrade(context.Background(), trade.ID, uuid.New()); !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("GetTrade got %v, want forbidden", err)
	}
	if _, err := svc.Accept(context.Background(), uuid.New(), alice); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("unknown trade got %v, want not_found", err)
	}
}

func TestProposeChain_fourUsers(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	users, items := fourUserChain(t, store)
	ctx := context.Background()

	trade, err := svc.ProposeChain(ctx, users[0], itemIDs(items), "")
	if err != nil {
		t.Fatalf("ProposeChain: %v", err)
	}

	if trade.Type != models.TradeMultiHop || len(trade.ChainItems) != 4 {
		t.Fatalf("got type=%q links=%d, want multi_hop with 4 links", trade.Type, len(trade.ChainItems))
	}
	if len(trade.AcceptedBy) != 1 || trade.AcceptedBy[0] != users[0] {
		t.Fatalf("proposer must be pre-accepted, got %v", trade.AcceptedBy)
	}
	if trade.ChainFairnessScore <= 0 || trade.ChainFairnessScore > 100 {
		t.Fatalf("fairness score %d out of range", trade.ChainFairnessScore)
	}

	for i, user := range users[1:] {
		res, err := svc.Accept(ctx, trade.ID, user)
		if err != nil {
			t.Fatalf("Accept #%d: %v", i+1, err)
		}
		wantCompleted := i == len(users)-2
		if res.Completed != wantCompleted {
			t.Fatalf("accept #%d completed=%v, want %v", i+1, res.Completed, wantCompleted)
		}
		if res.AcceptedCount != i+2 || res.TotalCount != 4 {
			t.Fatalf("accept #%d got %d/%d", i+1, res.AcceptedCount, res.TotalCount)
		}
	}

	for _, item := range items {
		if got := itemStatus(t, store, item.ID); got != models.ItemTraded {
			t.Fatalf("item %s got %q, want traded", item.ID, got)
		}
	}
}

func TestProposeChain_validation(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	users, items := fourUserChain(t, store)
	ids := itemIDs(items)

	broken := []uuid.UUID{ids[0], ids[2], ids[1], ids[3]}

	tests := []struct {
		name     string
		proposer uuid.UUID
		ids      []uuid.UUID
		want     apperr.Kind
	}{
		{name: "too short", proposer: users[0], ids: ids[:2], want: apperr.InvalidInput},
		{name: "duplicates", proposer: users[0], ids: []uuid.UUID{ids[0], ids[1], ids[0]}, want: apperr.InvalidInput},
		{name: "not a ring", proposer: users[0], ids: broken, want: apperr.InvalidInput},
		{name: "outsider", proposer: uuid.New(), ids: ids, want: apperr.Forbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProposeChain(context.Background(), tt.proposer, tt.ids, "")
			if got := apperr.KindOf(err); got != tt.want {
				t.Fatalf("got %q (%v), want %q", got, err, tt.want)
			}
		})
	}

	for _, item := range items {
		if got := itemStatus(t, store, item.ID); got != models.ItemAvailable {
			t.Fatalf("rejected chain reserved item %s: %q", item.ID, got)
		}
	}
}

func TestProposeChain_singleOwnerRejected(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	owner := uuid.New()
	ring := []*models.Item{
		putItem(t, store, owner, models.CategoryBooks, 100, models.CategoryGames),
		putItem(t, store, owner, models.CategoryGames, 100, models.CategoryMusic),
		putItem(t, store, owner, models.CategoryMusic, 100, models.CategoryBooks),
	}

	_, err := svc.ProposeChain(context.Background(), owner, itemIDs(ring), "")
	if !apperr.Is(err, apperr.InvalidInput) {
		t.Fatalf("got %v, want invalid_input", err)
	}
}

func TestDecline_releasesChainItems(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	users, items := fourUserChain(t, store)
	ctx := context.Background()

	trade, err := svc.ProposeChain(ctx, users[0], itemIDs(items), "")
	if err != nil {
		t.Fatalf("ProposeChain: %v", err)
	}
	if _, err := svc.Accept(ctx, trade.ID, users[1]); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	declined, err := svc.Decline(ctx, trade.ID, users[2])
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if declined.Status != models.TradeDeclined || declined.DeclinedBy == nil || *declined.DeclinedBy != users[2] {
		t.Fatalf("got status=%q declinedBy=%v", declined.Status, declined.DeclinedBy)
	}

	for _, item := range items {
		if got := itemStatus(t, store, item.ID); got != models.ItemAvailable {
			t.Fatalf("item %s got %q, want available", item.ID, got)
		}
	}

	if _, err := svc.Accept(ctx, trade.ID, users[3]); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("accept after decline got %v, want invalid_state", err)
	}

	// Освобожденные вещи снова можно предложить
	if _, err := svc.ProposeChain(ctx, users[1], itemIDs(items), ""); err != nil {
		t.Fatalf("re-proposal: %v", err)
	}
}

func TestAccept_concurrentFinalAcceptancesCompleteOnce(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	users, items := fourUserChain(t, store)
	ctx := context.Background()

	trade, err := svc.ProposeChain(ctx, users[0], itemIDs(items), "")
	if err != nil {
		t.Fatalf("ProposeChain: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		failures  []error
	)

	start := make(chan struct{})
	for _, user := range users[1:] {
		wg.Add(1)
		go func(user uuid.UUID) {
			defer wg.Done()
			<-start

			res, err := svc.Accept(ctx, trade.ID, user)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if res.Completed {
				completed++
			}
		}(user)
	}
	close(start)
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("concurrent accepts failed: %v", failures)
	}
	if completed != 1 {
		t.Fatalf("completion observed %d times, want exactly once", completed)
	}

	got, err := svc.GetTrade(ctx, trade.ID, users[0])
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if got.Status != models.TradeCompleted || len(got.AcceptedBy) != 4 {
		t.Fatalf("got status=%q accepted=%d, want completed by 4", got.Status, len(got.AcceptedBy))
	}
}

func TestAccept_oneToOneConcurrentAcceptancesCompleteOnce(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	mine := putItem(t, store, alice, models.CategoryBooks, 100)
	theirs := putItem(t, store, bob, models.CategoryGames, 100)
	ctx := context.Background()

	trade, err := svc.ProposeOneToOne(ctx, alice, mine.ID, theirs.ID, "")
	if err != nil {
		t.Fatalf("ProposeOneToOne: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		failures  []error
	)

	start := make(chan struct{})
	for _, user := range []uuid.UUID{alice, bob} {
		wg.Add(1)
		go func(user uuid.UUID) {
			defer wg.Done()
			<-start

			res, err := svc.Accept(ctx, trade.ID, user)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if res.Completed {
				completed++
			}
		}(user)
	}
	close(start)
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("concurrent accepts failed: %v", failures)
	}
	if completed != 1 {
		t.Fatalf("completion observed %d times, want exactly once", completed)
	}

	got, err := svc.GetTrade(ctx, trade.ID, bob)
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if got.Status != models.TradeCompleted || len(got.AcceptedBy) != 2 {
		t.Fatalf("got status=%q accepted=%d, want completed by 2", got.Status, len(got.AcceptedBy))
	}
	for _, id := range []uuid.UUID{mine.ID, theirs.ID} {
		if status := itemStatus(t, store, id); status != models.ItemTraded {
			t.Fatalf("item %s got %q, want traded", id, status)
		}
	}
}

func TestProposeOneToOne_concurrentProposalsForSameItem(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	bob := uuid.New()
	wanted := putItem(t, store, bob, models.CategoryGames, 100)
	proposers := []uuid.UUID{uuid.New(), uuid.New()}
	offered := []*models.Item{
		putItem(t, store, proposers[0], models.CategoryBooks, 100),
		putItem(t, store, proposers[1], models.CategoryBooks, 100),
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, len(proposers))
	start := make(chan struct{})
	for i := range proposers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.ProposeOneToOne(ctx, proposers[i], offered[i].ID, wanted.ID, "")
		}(i)
	}
	close(start)
	wg.Wait()

	winner := -1
	for i, err := range errs {
		switch {
		case err == nil:
			if winner != -1 {
				t.Fatalf("both proposals reserved the same item")
			}
			winner = i
		case !apperr.Is(err, apperr.Conflict):
			t.Fatalf("proposal %d got %v, want conflict", i, err)
		}
	}
	if winner == -1 {
		t.Fatalf("no proposal succeeded: %v", errs)
	}

	loser := 1 - winner
	if got := itemStatus(t, store, offered[winner].ID); got != models.ItemPending {
		t.Fatalf("winning item got %q, want pending", got)
	}
	if got := itemStatus(t, store, offered[loser].ID); got != models.ItemAvailable {
		t.Fatalf("losing item got %q, want available", got)
	}

	trades, err := svc.ListTrades(ctx, bob, "")
	if err != nil {
		t.Fatalf("ListTrades: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("got %d trades for the contested item, want 1", len(trades))
	}
}

func TestListTrades_filtersByStatus(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	alice, bob := uuid.New(), uuid.New()
	ctx := context.Background()

	a1 := putItem(t, store, alice, models.CategoryBooks, 100)
	b1 := putItem(t, store, bob, models.CategoryGames, 100)
	a2 := putItem(t, store, alice, models.CategoryMusic, 100)
	b2 := putItem(t, store, bob, models.CategoryBikes, 100)

	kept, err := svc.ProposeOneToOne(ctx, alice, a1.ID, b1.ID, "")
	if err != nil {
		t.Fatalf("ProposeOneToOne: %v", err)
	}
	dropped, err := svc.ProposeOneToOne(ctx, alice, a2.ID, b2.ID, "")
	if err != nil {
		t.Fatalf("ProposeOneToOne: %v", err)
	}
	if _, err := svc.Decline(ctx, dropped.ID, bob); err != nil {
		t.Fatalf("Decline: %v", err)
	}

	pending, err := svc.ListTrades(ctx, bob, models.TradePending)
	if err != nil {
		t.Fatalf("ListTrades: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != kept.ID {
		t.Fatalf("pending got %v, want only %s", pending, kept.ID)
	}

	all, err := svc.ListTrades(ctx, bob, "")
	if err != nil {
		t.Fatalf("ListTrades: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all got %d trades, want 2", len(all))
	}

	if _, err := svc.ListTrades(ctx, bob, "archived"); !apperr.Is(err, apperr.InvalidInput) {
		t.Fatalf("unknown status got %v, want invalid_input", err)
	}
}
