package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cause := errors.New("driver error")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "direct", err: New(NotFound, "нет"), want: NotFound},
		{name: "wrapped", err: fmt.Errorf("store: %w", Wrap(Conflict, cause, "гонка")), want: Conflict},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: Unavailable},
		{name: "plain", err: cause, want: Internal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_unwrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Wrap(Unavailable, cause, "хранилище недоступно")

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
	if MessageOf(err) != "хранилище недоступно" {
		t.Fatalf("MessageOf got %q", MessageOf(err))
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	if !Retryable(New(Conflict, "x")) {
		t.Fatalf("conflict must be retryable")
	}
	if !Retryable(context.DeadlineExceeded) {
		t.Fatalf("deadline must be retryable")
	}
	if Retryable(New(InvalidState, "x")) {
		t.Fatalf("invalid_state must not be retryable")
	}
}
