package match

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/config"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/utils"
)

// Matcher подбирает обмены и цепочки для вещи
type Matcher interface {
	FindMatches(ctx context.Context, itemID, userID uuid.UUID) ([]models.MatchResult, error)
	FindChains(ctx context.Context, itemID uuid.UUID) ([]models.CycleResult, error)
}

// MatchService отдает результаты подбора по HTTP. Ничего не изменяет.
type MatchService struct {
	cfg     *config.Config
	matcher Matcher
}

// NewMatchService создает новый экземпляр MatchService
func NewMatchService(cfg *config.Config, matcher Matcher) *MatchService {
	return &MatchService{
		cfg:     cfg,
		matcher: matcher,
	}
}

// GetMatches возвращает кандидатов для обмена один к одному
func (s *MatchService) GetMatches(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	matches, err := s.matcher.FindMatches(ctx, itemID, userID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetChains возвращает цепочки обмена через вещь
func (s *MatchService) GetChains(c fiber.Ctx) error {
	itemID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	chains, err := s.matcher.FindChains(ctx, itemID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"chains": chains,
		"count":  len(chains),
	})
}

// requestContext ограничивает подбор сверху: он читает весь пул доступных вещей.
// Отмена запроса клиентом прерывает подбор раньше таймаута.
func (s *MatchService) requestContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	timeout := s.cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Context(), timeout)
}
