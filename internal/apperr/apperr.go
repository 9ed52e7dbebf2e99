package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind определяет категорию доменной ошибки
type Kind string

const (
	NotFound     Kind = "not_found"
	Forbidden    Kind = "forbidden"
	InvalidState Kind = "invalid_state"
	Conflict     Kind = "conflict"
	InvalidInput Kind = "invalid_input"
	Unavailable  Kind = "unavailable"
	Internal     Kind = "internal"
)

// Error представляет ошибку, которую можно показать вызывающей стороне
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает ошибку заданного вида
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap создает ошибку заданного вида, сохраняя исходную причину
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf возвращает вид ошибки. Истекший дедлайн считается unavailable.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Unavailable
	}

	return Internal
}

// Is проверяет, относится ли ошибка к указанному виду
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf возвращает сообщение для пользователя
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	if KindOf(err) == Unavailable {
		return "Хранилище не ответило вовремя, повторите запрос"
	}

	return "Внутренняя ошибка сервера"
}

// Retryable сообщает, имеет ли смысл повторить операцию
func Retryable(err error) bool {
	kind := KindOf(err)
	return kind == Conflict || kind == Unavailable
}
