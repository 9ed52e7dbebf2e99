package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/utils"
)

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	jwtService := utils.NewJWTService("test-secret")
	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	app := fiber.New()
	app.Use(AuthMiddleware(jwtService))
	app.Get("/me", func(c fiber.Ctx) error {
		return c.SendString(c.Locals("userID").(string))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + token, want: fiber.StatusOK},
		{name: "missing", header: "", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: fiber.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Fatalf("got %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
