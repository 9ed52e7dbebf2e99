package trade

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/utils"
)

// createTradeRequest описывает тело запроса создания обмена
type createTradeRequest struct {
	Type         models.TradeType `json:"type"`
	Item1ID      uuid.UUID        `json:"item1_id"`
	Item2ID      uuid.UUID        `json:"item2_id"`
	ChainItemIDs []uuid.UUID      `json:"chain_item_ids"`
	Message      string           `json:"message"`
}

// CreateTrade обрабатывает создание предложения обмена или цепочки
func (s *TradeService) CreateTrade(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}

	var req createTradeRequest
	if err := c.Bind().Body(&req); err != nil {
		s.log.Warnw("Ошибка декодирования тела запроса", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	var trade *models.Trade
	switch req.Type {
	case models.TradeOneToOne, "":
		if req.Item1ID == uuid.Nil || req.Item2ID == uuid.Nil {
			return utils.ErrorResponse(c, apperr.New(apperr.InvalidInput, "Укажите item1_id и item2_id"))
		}
		trade, err = s.ProposeOneToOne(c.Context(), userID, req.Item1ID, req.Item2ID, req.Message)
	case models.TradeMultiHop:
		trade, err = s.ProposeChain(c.Context(), userID, req.ChainItemIDs, req.Message)
	default:
		return utils.ErrorResponse(c, apperr.New(apperr.InvalidInput, "Неизвестный тип обмена"))
	}
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"trade":   trade,
		"message": "Предложение обмена успешно создано",
	})
}

// GetMyTrades возвращает обмены текущего пользователя
func (s *TradeService) GetMyTrades(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}

	trades, err := s.ListTrades(c.Context(), userID, models.TradeStatus(c.Query("status")))
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if trades == nil {
		trades = []*models.Trade{}
	}

	return c.JSON(fiber.Map{
		"trades": trades,
		"count":  len(trades),
	})
}

// GetTradeByID возвращает обмен, если пользователь в нем участвует
func (s *TradeService) GetTradeByID(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}
	tradeID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	trade, err := s.GetTrade(c.Context(), tradeID, userID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"trade": trade})
}

// AcceptTrade обрабатывает согласие участника
func (s *TradeService) AcceptTrade(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}
	tradeID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	result, err := s.Accept(c.Context(), tradeID, userID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	message := "Согласие принято, ожидаем остальных участников"
	if result.Completed {
		message = "Обмен завершен"
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"trade":          result.Trade,
		"completed":      result.Completed,
		"accepted_count": result.AcceptedCount,
		"total_count":    result.TotalCount,
		"message":        message,
	})
}

// DeclineTrade обрабатывает отказ участника
func (s *TradeService) DeclineTrade(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}
	tradeID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	trade, err := s.Decline(c.Context(), tradeID, userID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"trade":   trade,
		"message": "Обмен отклонен",
	})
}
