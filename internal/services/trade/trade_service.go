package trade

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/config"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/matching"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/repository"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/utils"
)

const maxMessageLength = 500

// ScorerSource отдает оценщик для расчета справедливости цепочки
type ScorerSource interface {
	Scorer(ctx context.Context) matching.Scorer
}

// AcceptResult описывает состояние обмена после принятия
type AcceptResult struct {
	Trade         *models.Trade `json:"trade"`
	Completed     bool          `json:"completed"`
	AcceptedCount int           `json:"accepted_count"`
	TotalCount    int           `json:"total_count"`
}

// TradeService управляет жизненным циклом обменов.
// Это единственный сервис, который меняет статусы вещей и обменов.
type TradeService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	trades     repository.TradeRepository
	items      repository.ItemRepository
	scorers    ScorerSource
	log        *zap.SugaredLogger
	now        func() time.Time
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(cfg *config.Config, trades repository.TradeRepository, items repository.ItemRepository,
	scorers ScorerSource, log *zap.SugaredLogger) *TradeService {
	return &TradeService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		trades:     trades,
		items:      items,
		scorers:    scorers,
		log:        log,
		now:        time.Now,
	}
}

// ProposeOneToOne создает обмен один к одному: вещь предлагающего на вещь другого пользователя
func (s *TradeService) ProposeOneToOne(ctx context.Context, proposerID, item1ID, item2ID uuid.UUID, message string) (*models.Trade, error) {
	if item1ID == item2ID {
		return nil, apperr.New(apperr.InvalidInput, "Нельзя обменять вещь саму на себя")
	}
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	items, err := s.loadItems(ctx, []uuid.UUID{item1ID, item2ID})
	if err != nil {
		return nil, err
	}
	item1, item2 := items[0], items[1]

	// Проверяем, что предлагающий отдает свою вещь
	if item1.UserID != proposerID {
		return nil, apperr.New(apperr.Forbidden, "Вы не можете предложить чужую вещь для обмена")
	}
	if item2.UserID == proposerID {
		return nil, apperr.New(apperr.InvalidInput, "Вы не можете предложить обмен самому себе")
	}
	if err := requireTradable(items); err != nil {
		return nil, err
	}

	now := s.now()
	trade := &models.Trade{
		ID:            uuid.New(),
		Type:          models.TradeOneToOne,
		Status:        models.TradePending,
		ProposerID:    proposerID,
		UsersInvolved: []uuid.UUID{item1.UserID, item2.UserID},
		AcceptedBy:    []uuid.UUID{},
		Item1ID:       &item1.ID,
		Item2ID:       &item2.ID,
		Message:       message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Доступность перепроверяется внутри транзакции хранилища
	if err := s.trades.CreateTrade(ctx, trade); err != nil {
		s.log.Infow("Не удалось создать обмен", "type", trade.Type, "proposer_id", proposerID, "error", err)
		return nil, err
	}

	s.log.Infow("Создано предложение обмена",
		"trade_id", trade.ID, "type", trade.Type, "proposer_id", proposerID)
	return trade, nil
}

// ProposeChain создает цепочку обмена. Предлагающий сразу считается принявшим.
func (s *TradeService) ProposeChain(ctx context.Context, proposerID uuid.UUID, itemIDs []uuid.UUID, message string) (*models.Trade, error) {
	if len(itemIDs) < 3 {
		return nil, apperr.New(apperr.InvalidInput, "Цепочка должна состоять минимум из трех вещей")
	}
	if hasDuplicates(itemIDs) {
		return nil, apperr.New(apperr.InvalidInput, "Вещи в цепочке не должны повторяться")
	}
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	items, err := s.loadItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	if !matching.IsChain(items) {
		return nil, apperr.New(apperr.InvalidInput, "Вещи не образуют цепочку: каждый владелец должен хотеть категорию следующей вещи")
	}

	chainItems := make([]models.ChainItem, len(items))
	for i, item := range items {
		chainItems[i] = models.ChainItem{
			ItemID:         item.ID,
			UserID:         item.UserID,
			EstimatedValue: item.EstimatedValue,
		}
	}

	owners := models.DistinctOwners(chainItems)
	if !containsID(owners, proposerID) {
		return nil, apperr.New(apperr.Forbidden, "Вы не участвуете в этой цепочке")
	}
	if len(owners) < 2 {
		return nil, apperr.New(apperr.InvalidInput, "В цепочке должно быть минимум два владельца")
	}
	if err := requireTradable(items); err != nil {
		return nil, err
	}

	score, _ := matching.ChainScore(s.scorers.Scorer(ctx), items)

	now := s.now()
	trade := &models.Trade{
		ID:                 uuid.New(),
		Type:               models.TradeMultiHop,
		Status:             models.TradePending,
		ProposerID:         proposerID,
		UsersInvolved:      owners,
		AcceptedBy:         []uuid.UUID{proposerID},
		ChainItems:         chainItems,
		ChainFairnessScore: score,
		Message:            message,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.trades.CreateTrade(ctx, trade); err != nil {
		s.log.Infow("Не удалось создать цепочку", "proposer_id", proposerID, "items", len(itemIDs), "error", err)
		return nil, err
	}

	s.log.Infow("Создано предложение цепочки",
		"trade_id", trade.ID, "proposer_id", proposerID, "items", len(chainItems), "score", score)
	return trade, nil
}

// Accept фиксирует согласие участника. Повторное согласие ничего не меняет.
func (s *TradeService) Accept(ctx context.Context, tradeID, userID uuid.UUID) (*AcceptResult, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	trade, completed, err := s.trades.AcceptTrade(ctx, tradeID, userID)
	if err != nil {
		return nil, err
	}

	if completed {
		s.log.Infow("Обмен завершен", "trade_id", tradeID, "participants", len(trade.UsersInvolved))
	} else {
		s.log.Debugw("Участник принял обмен", "trade_id", tradeID, "user_id", userID,
			"accepted", len(trade.AcceptedBy), "total", len(trade.UsersInvolved))
	}

	return &AcceptResult{
		Trade:         trade,
		Completed:     completed,
		AcceptedCount: len(trade.AcceptedBy),
		TotalCount:    len(trade.UsersInvolved),
	}, nil
}

// Decline отклоняет обмен целиком и возвращает вещи в доступные
func (s *TradeService) Decline(ctx context.Context, tradeID, userID uuid.UUID) (*models.Trade, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	trade, err := s.trades.DeclineTrade(ctx, tradeID, userID)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Обмен отклонен", "trade_id", tradeID, "user_id", userID)
	return trade, nil
}

// GetTrade возвращает обмен участнику
func (s *TradeService) GetTrade(ctx context.Context, tradeID, userID uuid.UUID) (*models.Trade, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	trade, err := s.trades.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsParticipant(userID) {
		return nil, apperr.New(apperr.Forbidden, "Пользователь не участвует в этом обмене")
	}
	return trade, nil
}

// ListTrades возвращает обмены пользователя с необязательным фильтром по статусу
func (s *TradeService) ListTrades(ctx context.Context, userID uuid.UUID, status models.TradeStatus) ([]*models.Trade, error) {
	switch status {
	case "", models.TradePending, models.TradeCompleted, models.TradeDeclined:
	default:
		return nil, apperr.New(apperr.InvalidInput, "Недопустимый статус обмена")
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.trades.ListTradesByUser(ctx, userID, status)
}

// storeContext ограничивает время обращения к хранилищу
func (s *TradeService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// loadItems загружает вещи в порядке ids; логически удаленные считаются отсутствующими
func (s *TradeService) loadItems(ctx context.Context, ids []uuid.UUID) ([]*models.Item, error) {
	items := make([]*models.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.items.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if item.Deleted() {
			return nil, apperr.New(apperr.NotFound, "Вещь не найдена")
		}
		items = append(items, item)
	}
	return items, nil
}

func requireTradable(items []*models.Item) error {
	for _, item := range items {
		if !item.Tradable() {
			return apperr.New(apperr.Conflict, "Вещь уже участвует в другом обмене")
		}
	}
	return nil
}

func validateMessage(message string) error {
	if utf8.RuneCountInString(message) > maxMessageLength {
		return apperr.New(apperr.InvalidInput, "Сообщение слишком длинное")
	}
	return nil
}

func hasDuplicates(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
