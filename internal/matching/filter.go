package matching

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// FilterCandidates отбирает из пула вещи, которые можно предложить в обмен на source.
// Несовпадение желаемой категории не исключает кандидата: это учитывается при оценке.
func FilterCandidates(source *models.Item, userID uuid.UUID, pool []*models.Item, maxValueRatio float64) []*models.Item {
	candidates := make([]*models.Item, 0, len(pool))
	ratio := decimal.NewFromFloat(maxValueRatio)

	for _, item := range pool {
		if item == nil || item.ID == source.ID || item.UserID == userID {
			continue
		}
		if !item.Tradable() || !item.Category.Valid() {
			continue
		}
		if !valueWithinRatio(source.EstimatedValue, item.EstimatedValue, ratio) {
			continue
		}
		candidates = append(candidates, item)
	}

	return candidates
}

// valueWithinRatio проверяет |candidate - source| / source <= ratio.
// При неположительной стоимости источника подходит только точно такая же стоимость.
func valueWithinRatio(source, candidate, ratio decimal.Decimal) bool {
	diff := candidate.Sub(source).Abs()
	if !source.IsPositive() {
		return diff.IsZero()
	}
	return diff.Div(source).LessThanOrEqual(ratio)
}
