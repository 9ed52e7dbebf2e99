package utils

import (
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := map[apperr.Kind]int{
		apperr.NotFound:     fiber.StatusNotFound,
		apperr.Forbidden:    fiber.StatusForbidden,
		apperr.InvalidState: fiber.StatusConflict,
		apperr.Conflict:     fiber.StatusConflict,
		apperr.InvalidInput: fiber.StatusBadRequest,
		apperr.Unavailable:  fiber.StatusServiceUnavailable,
		apperr.Internal:     fiber.StatusInternalServerError,
	}

	for kind, want := range tests {
		if got := StatusFor(kind); got != want {
			t.Fatalf("StatusFor(%q) got %d, want %d", kind, got, want)
		}
	}
}
