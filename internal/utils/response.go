package utils

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
)

// StatusFor возвращает HTTP статус для вида доменной ошибки
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.InvalidState, apperr.Conflict:
		return fiber.StatusConflict
	case apperr.InvalidInput:
		return fiber.StatusBadRequest
	case apperr.Unavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse отправляет доменную ошибку клиенту в JSON
func ErrorResponse(c fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)

	body := fiber.Map{
		"error": apperr.MessageOf(err),
		"kind":  kind,
	}
	if apperr.Retryable(err) {
		body["retryable"] = true
	}

	return c.Status(StatusFor(kind)).JSON(body)
}

// CurrentUserID достает ID пользователя, положенный AuthMiddleware
func CurrentUserID(c fiber.Ctx) (uuid.UUID, error) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Пользователь не авторизован")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Неверный формат ID пользователя")
	}
	return id, nil
}

// ParamUUID разбирает UUID из параметра маршрута
func ParamUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.InvalidInput, "Неверный формат ID")
	}
	return id, nil
}
