package trade

import (
	"github.com/gofiber/fiber/v3"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (s *TradeService) SetupRoutes(app *fiber.App) {
	// Группа для API обменов
	api := app.Group("/api/trades")

	// Все маршруты требуют авторизации
	api.Use(middleware.AuthMiddleware(s.jwtService))

	// Создание предложения обмена или цепочки
	api.Post("/", s.CreateTrade)

	// Список обменов пользователя
	api.Get("/", s.GetMyTrades)

	// Просмотр обмена участником
	api.Get("/:id", s.GetTradeByID)

	// Согласие и отказ
	api.Post("/:id/accept", s.AcceptTrade)
	api.Post("/:id/decline", s.DeclineTrade)
}
