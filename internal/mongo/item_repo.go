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

const itemNotFound = "Вещь не найдена"

// GetItem возвращает вещь по ID, включая логически удаленные
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var doc itemDoc
	if err := s.items.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mapError(err, itemNotFound)
	}

	item, err := doc.toModel()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Поврежденный документ вещи")
	}
	return item, nil
}

// ListItemsByStatus возвращает неудаленные вещи с указанным статусом в порядке создания
func (s *Store) ListItemsByStatus(ctx context.Context, status models.ItemStatus) ([]*models.Item, error) {
	filter := bson.M{"status": string(status), "deleted_at": nil}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return s.findItems(ctx, filter, opts)
}

// ListItemsByOwner возвращает неудаленные вещи пользователя, новые сначала
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Item, error) {
	filter := bson.M{"user_id": ownerID.String(), "deleted_at": nil}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	return s.findItems(ctx, filter, opts)
}

// CreateItem сохраняет новую вещь
func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
		item.UpdatedAt = item.CreatedAt
	}

	doc, err := toItemDoc(item)
	if err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "Неверная стоимость вещи")
	}

	_, err = s.items.InsertOne(ctx, doc)
	return mapError(err, itemNotFound)
}

// SoftDeleteItem помечает вещь удаленной, если она не участвует в обмене
func (s *Store) SoftDeleteItem(ctx context.Context, id uuid.UUID) error {
	now := s.now()
	res, err := s.items.UpdateOne(ctx,
		bson.M{"_id": id.String(), "deleted_at": nil, "status": bson.M{"$ne": string(models.ItemPending)}},
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return mapError(err, itemNotFound)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Ничего не обновили: выясняем причину
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item.Deleted() {
		return apperr.New(apperr.NotFound, itemNotFound)
	}
	return apperr.New(apperr.InvalidState, "Вещь участвует в обмене")
}

func (s *Store) findItems(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Item, error) {
	cursor, err := s.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err, itemNotFound)
	}
	defer cursor.Close(ctx)

	var docs []itemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(err, itemNotFound)
	}

	items := make([]*models.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.toModel()
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "Поврежденный документ вещи")
		}
		items = append(items, item)
	}
	return items, nil
}

// transitionItems переводит все вещи из from в to или возвращает conflict,
// после чего транзакция откатывается
func (s *Store) transitionItems(sc mongo.SessionContext, ids []uuid.UUID, from, to models.ItemStatus,
	expectTrade, setTrade *uuid.UUID) error {
	filter := bson.M{
		"_id":        bson.M{"$in": idStrings(ids)},
		"status":     string(from),
		"deleted_at": nil,
	}
	if expectTrade != nil {
		filter["pending_trade_id"] = expectTrade.String()
	}

	res, err := s.items.UpdateMany(sc, filter, bson.M{"$set": bson.M{
		"status":           string(to),
		"pending_trade_id": idString(setTrade),
		"updated_at":       s.now(),
	}})
	if err != nil {
		return mapError(err, itemNotFound)
	}

	if res.MatchedCount != int64(len(ids)) {
		return apperr.New(apperr.Conflict, "Не все вещи обмена доступны для изменения")
	}
	return nil
}
