package matching

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

func item(category models.Category, value int64, wants ...models.Category) *models.Item {
	return &models.Item{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		Category:          category,
		DesiredCategories: wants,
		ConditionScore:    8,
		EstimatedValue:    decimal.NewFromInt(value),
		Status:            models.ItemAvailable,
	}
}

func ids(items []*models.Item) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
