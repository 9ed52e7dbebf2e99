// Package mongo хранит вещи и обмены в MongoDB.
// Изменения статусов выполняются в транзакциях, поэтому нужен replica set.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	itemsCollection  = "items"
	tradesCollection = "trades"
)

// Store реализует repository.Store поверх MongoDB
type Store struct {
	client *mongo.Client
	items  *mongo.Collection
	trades *mongo.Collection
	now    func() time.Time
}

// NewStore создает хранилище в указанной базе
func NewStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client: client,
		items:  db.Collection(itemsCollection),
		trades: db.Collection(tradesCollection),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes создает индексы по статусу, владельцу и участникам
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ошибка создания индексов items: %w", err)
	}

	_, err = s.trades.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "users_involved", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("ошибка создания индексов trades: %w", err)
	}
	return nil
}

// Close отключается от MongoDB
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// inTx выполняет fn в транзакции. Драйвер повторяет fn при временных конфликтах записи,
// поэтому fn должна заново заполнять свои результаты при каждом вызове.
func (s *Store) inTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return mapError(err, "")
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return mapError(err, "")
}
