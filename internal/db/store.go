package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier объединяет методы, общие для пула и транзакции
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowScanner покрывает pgx.Row и pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// Store реализует repository.Store поверх PostgreSQL.
// Изменения статусов выполняются в транзакциях с блокировкой строк SELECT ... FOR UPDATE.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewStore создает хранилище поверх пула соединений
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Close закрывает пул соединений
func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// inTx выполняет fn в транзакции и фиксирует ее, если fn не вернула ошибку
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError(fmt.Errorf("ошибка начала транзакции: %w", err), "")
	}
	// Откатываем транзакцию в случае ошибки
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(fmt.Errorf("ошибка фиксации транзакции: %w", err), "")
	}
	return nil
}
