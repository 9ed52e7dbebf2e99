package listing

import (
	"github.com/gofiber/fiber/v3"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/utils"
)

// CreateItem обрабатывает создание новой вещи
func (s *ListingService) CreateItem(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}

	var in CreateItemInput
	if err := c.Bind().Body(&in); err != nil {
		s.log.Warnw("Ошибка декодирования тела запроса", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	item, err := s.Create(c.Context(), userID, in)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item":    item,
		"message": "Вещь успешно добавлена",
	})
}

// GetMyItems возвращает вещи текущего пользователя
func (s *ListingService) GetMyItems(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}

	items, err := s.ListMine(c.Context(), userID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}
	if items == nil {
		items = []*models.Item{}
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// GetItem возвращает вещь по ID
func (s *ListingService) GetItem(c fiber.Ctx) error {
	itemID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	item, err := s.Get(c.Context(), itemID)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"item": item})
}

// DeleteItem обрабатывает удаление вещи владельцем
func (s *ListingService) DeleteItem(c fiber.Ctx) error {
	userID, err := utils.CurrentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := utils.ParamUUID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	if err := s.Delete(c.Context(), userID, itemID); err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Вещь успешно удалена",
	})
}
