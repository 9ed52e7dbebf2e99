package matching

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// Максимальные баллы по составляющим оценки
const (
	MaxValuePoints     = 40
	MaxConditionPoints = 20
	MaxCategoryPoints  = 25
	MaxKeywordPoints   = 15

	keywordPointsEach = 3
	scarcityBonus     = 5
)

// Score — результат оценки пары вещей
type Score struct {
	Total     int
	Breakdown models.ScoreBreakdown
	Reasoning []string
}

// Scorer оценивает справедливость обмена вещи A на вещь B по шкале 0–100.
// Нулевое значение готово к использованию и не учитывает дефицит категорий.
type Scorer struct {
	Stats             map[models.Category]models.CategoryStats
	ScarcityWeighting bool
}

// Score вычисляет оценку для упорядоченной пары (a, b). Никогда не возвращает ошибку.
func (s Scorer) Score(a, b *models.Item) Score {
	var result Score

	valuePercent, comparable := valueDifferencePercent(a, b)
	if comparable {
		result.Breakdown.Value = valuePoints(valuePercent)
		if result.Breakdown.Value > 5 {
			result.Reasoning = append(result.Reasoning,
				fmt.Sprintf("Близкая стоимость: разница %s%%", valuePercent.StringFixed(1)))
		}
	}

	conditionDiff := abs(a.ConditionScore - b.ConditionScore)
	result.Breakdown.Condition = conditionPoints(conditionDiff)
	if result.Breakdown.Condition > 5 {
		result.Reasoning = append(result.Reasoning,
			fmt.Sprintf("Похожее состояние: разница %d", conditionDiff))
	}

	var categoryReason string
	result.Breakdown.Category, categoryReason = s.categoryPoints(a, b)
	if categoryReason != "" {
		result.Reasoning = append(result.Reasoning, categoryReason)
	}

	shared := sharedKeywords(a.Keywords, b.Keywords)
	result.Breakdown.Keywords = keywordPoints(shared)
	if shared > 0 {
		result.Reasoning = append(result.Reasoning,
			fmt.Sprintf("Общие ключевые слова: %d", shared))
	}

	result.Total = result.Breakdown.Value + result.Breakdown.Condition +
		result.Breakdown.Category + result.Breakdown.Keywords
	return result
}

// valueDifferencePercent возвращает |a-b| * 200 / (a+b), то есть разницу к среднему в процентах.
// Считается в decimal, чтобы границы уровней совпадали точно.
// comparable=false при нулевой сумме стоимостей: такая пара получает 0 баллов.
func valueDifferencePercent(a, b *models.Item) (decimal.Decimal, bool) {
	sum := a.EstimatedValue.Add(b.EstimatedValue)
	if !sum.IsPositive() {
		return decimal.Zero, false
	}

	diff := a.EstimatedValue.Sub(b.EstimatedValue).Abs()
	return diff.Mul(hundredPercentOfMean).Div(sum), true
}

var (
	hundredPercentOfMean = decimal.NewFromInt(200)

	valueTiers = []struct {
		maxPercent decimal.Decimal
		points     int
	}{
		{decimal.NewFromInt(5), 40},
		{decimal.NewFromInt(10), 35},
		{decimal.NewFromInt(20), 25},
		{decimal.NewFromInt(30), 15},
	}
)

func valuePoints(percent decimal.Decimal) int {
	for _, tier := range valueTiers {
		if percent.LessThanOrEqual(tier.maxPercent) {
			return tier.points
		}
	}
	return 5
}

func conditionPoints(diff int) int {
	switch {
	case diff <= 1:
		return 20
	case diff <= 2:
		return 15
	case diff <= 3:
		return 10
	default:
		return 5
	}
}

func (s Scorer) categoryPoints(a, b *models.Item) (int, string) {
	aWantsB := a.Wants(b.Category)
	bWantsA := b.Wants(a.Category)

	var points int
	var reason string
	switch {
	case aWantsB && bWantsA:
		points, reason = 25, "Взаимный интерес к категориям"
	case aWantsB || bWantsA:
		points, reason = 15, "Односторонний интерес к категории"
	case a.Category == b.Category:
		points, reason = 10, "Одинаковая категория"
	default:
		return 5, ""
	}

	if s.ScarcityWeighting && aWantsB {
		if stats, ok := s.Stats[b.Category]; ok && stats.Scarce() && points < MaxCategoryPoints {
			points = min(points+scarcityBonus, MaxCategoryPoints)
			reason += fmt.Sprintf(" (дефицитная категория %s)", b.Category)
		}
	}

	return points, reason
}

func keywordPoints(shared int) int {
	return min(shared*keywordPointsEach, MaxKeywordPoints)
}

func sharedKeywords(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, k := range a {
		if k = normalizeKeyword(k); k != "" {
			set[k] = true
		}
	}

	count := 0
	for _, k := range b {
		k = normalizeKeyword(k)
		if set[k] {
			count++
			delete(set, k)
		}
	}
	return count
}

func normalizeKeyword(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
