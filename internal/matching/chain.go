package matching

import (
	"math"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// ChainScore оценивает цепочку как кольцо: каждая пара (i_k, i_(k+1) mod N),
// включая замыкающую, вносит одинаковый вклад
func ChainScore(scorer Scorer, cycle []*models.Item) (int, []int) {
	if len(cycle) == 0 {
		return 0, nil
	}

	pairs := make([]int, len(cycle))
	for k := range cycle {
		pairs[k] = scorer.Score(cycle[k], cycle[(k+1)%len(cycle)]).Total
	}
	return AggregateScores(pairs), pairs
}

// AggregateScores возвращает округленное среднее арифметическое
func AggregateScores(scores []int) int {
	if len(scores) == 0 {
		return 0
	}

	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
