package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTService_roundTrip(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := svc.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	got, err := svc.ExtractUserID(token)
	if err != nil {
		t.Fatalf("ExtractUserID: %v", err)
	}
	if got != userID.String() {
		t.Fatalf("got %v, want %v", got, userID)
	}
}

func TestJWTService_rejectsForeignSecret(t *testing.T) {
	t.Parallel()

	token, err := NewJWTService("one").GenerateToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := NewJWTService("two").ExtractUserID(token); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}
}
