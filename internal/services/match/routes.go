package match

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты подбора обменов.
// items — защищенная группа /api/items из сервиса вещей.
func (s *MatchService) SetupRoutes(items fiber.Router) {
	items.Get("/:id/matches", s.GetMatches)
	items.Get("/:id/chains", s.GetChains)
}
