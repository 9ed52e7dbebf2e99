package listing

import (
	"github.com/gofiber/fiber/v3"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/middleware"
)

// SetupRoutes настраивает маршруты для API вещей и возвращает защищенную группу
func (s *ListingService) SetupRoutes(app *fiber.App) fiber.Router {
	// Группа для API вещей
	api := app.Group("/api/items")

	// Защищенные маршруты
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateItem)
	// /my регистрируется раньше /:id
	api.Get("/my", s.GetMyItems)
	api.Get("/:id", s.GetItem)
	api.Delete("/:id", s.DeleteItem)

	return api
}
