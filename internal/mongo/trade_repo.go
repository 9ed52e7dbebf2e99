package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

const tradeNotFound = "Обмен не найден"

// GetTrade возвращает обмен по ID
func (s *Store) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	trade, _, err := s.loadTrade(ctx, id)
	return trade, err
}

// CreateTrade резервирует вещи и сохраняет обмен одной транзакцией
func (s *Store) CreateTrade(ctx context.Context, trade *models.Trade) error {
	doc, err := toTradeDoc(trade)
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "Неверная стоимость в цепочке")
	}

	return s.inTx(ctx, func(sc mongo.SessionContext) error {
		if err := s.transitionItems(sc, trade.ItemIDs(), models.ItemAvailable, models.ItemPending, nil, &trade.ID); err != nil {
			return err
		}

		_, err := s.trades.InsertOne(sc, doc)
		return mapError(err, tradeNotFound)
	})
}

// AcceptTrade добавляет пользователя в accepted_by. Запись проверяет версию документа:
// из двух параллельных транзакций одна получит конфликт и будет повторена драйвером.
func (s *Store) AcceptTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, bool, error) {
	var (
		result    *models.Trade
		completed bool
	)

	err := s.inTx(ctx, func(sc mongo.SessionContext) error {
		result, completed = nil, false

		trade, version, err := s.loadTrade(sc, id)
		if err != nil {
			return err
		}

		changed, done, err := trade.Accept(userID, s.now())
		if err != nil {
			return err
		}
		if !changed {
			result = trade
			return nil
		}

		if done {
			if err := s.transitionItems(sc, trade.ItemIDs(), models.ItemPending, models.ItemTraded, &trade.ID, nil); err != nil {
				return err
			}
		}

		if err := s.saveTrade(sc, trade, version); err != nil {
			return err
		}

		result, completed = trade, done
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, completed, nil
}

// DeclineTrade отклоняет обмен и освобождает вещи одной транзакцией
func (s *Store) DeclineTrade(ctx context.Context, id, userID uuid.UUID) (*models.Trade, error) {
	var result *models.Trade

	err := s.inTx(ctx, func(sc mongo.SessionContext) error {
		result = nil

		trade, version, err := s.loadTrade(sc, id)
		if err != nil {
			return err
		}

		if err := trade.Decline(userID, s.now()); err != nil {
			return err
		}

		if err := s.transitionItems(sc, trade.ItemIDs(), models.ItemPending, models.ItemAvailable, &trade.ID, nil); err != nil {
			return err
		}

		if err := s.saveTrade(sc, trade, version); err != nil {
			return err
		}

		result = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListTradesByUser возвращает обмены пользователя, новые сначала
func (s *Store) ListTradesByUser(ctx context.Context, userID uuid.UUID, status models.TradeStatus) ([]*models.Trade, error) {
	filter := bson.M{"users_involved": userID.String()}
	if status != "" {
		filter["status"] = string(status)
	}

	cursor, err := s.trades.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, mapError(err, tradeNotFound)
	}
	defer cursor.Close(ctx)

	var docs []tradeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err, tradeNotFound)
	}

	trades := make([]*models.Trade, 0, len(docs))
	for _, doc := range docs {
		trade, err := doc.toModel()
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "Поврежденный документ обмена")
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func (s *Store) loadTrade(ctx context.Context, id uuid.UUID) (*models.Trade, int64, error) {
	var doc tradeDoc
	if err := s.trades.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, 0, mapError(err, tradeNotFound)
	}

	trade, err := doc.toModel()
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, err, "Поврежденный документ обмена")
	}
	return trade, doc.Version, nil
}

func (s *Store) saveTrade(sc mongo.SessionContext, trade *models.Trade, version int64) error {
	res, err := s.trades.UpdateOne(sc,
		bson.M{"_id": trade.ID.String(), "version": version},
		bson.M{
			"$set": bson.M{
				"status":      string(trade.Status),
				"accepted_by": idStrings(trade.AcceptedBy),
				"declined_by": idString(trade.DeclinedBy),
				"updated_at":  trade.UpdatedAt,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return mapError(err, tradeNotFound)
	}
	if res.MatchedCount == 0 {
		return errVersionMismatch
	}
	return nil
}
