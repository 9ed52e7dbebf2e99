package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
)

// errVersionMismatch означает, что документ обмена изменился между чтением и записью
var errVersionMismatch = apperr.New(apperr.Conflict, "Обмен изменен параллельно, повторите запрос")

// mapError переводит ошибку драйвера в доменную
func mapError(err error, notFound string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.New(apperr.NotFound, notFound)
	}

	if mongo.IsDuplicateKeyError(err) {
		return apperr.Wrap(apperr.Conflict, err, "Запись уже существует")
	}

	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel("TransientTransactionError") {
		return apperr.Wrap(apperr.Conflict, err, "Параллельное изменение, повторите запрос")
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.Unavailable, err, "MongoDB не ответила вовремя")
	}

	return apperr.Wrap(apperr.Unavailable, err, "Ошибка MongoDB")
}
