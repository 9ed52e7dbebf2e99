package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
)

// Коды PostgreSQL, после которых операцию можно повторить
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// mapError переводит ошибку драйвера в доменную.
// notFound используется как сообщение, когда строка не найдена.
func mapError(err error, notFound string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.NotFound, notFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return apperr.Wrap(apperr.Conflict, err, "Параллельное изменение, повторите запрос")
		case codeUniqueViolation:
			return apperr.Wrap(apperr.Conflict, err, "Запись уже существует")
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.Unavailable, err, "База данных не ответила вовремя")
	}

	return apperr.Wrap(apperr.Unavailable, err, "Ошибка базы данных")
}
