package matching

import (
	"testing"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

func TestAggregateScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scores []int
		want   int
	}{
		{[]int{80, 70, 90}, 80},
		{[]int{85, 86}, 86},
		{[]int{50, 51, 51}, 51},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := AggregateScores(tt.scores); got != tt.want {
			t.Errorf("AggregateScores(%v) got %d, want %d", tt.scores, got, tt.want)
		}
	}
}

func TestChainScore_includesWrapAroundEdge(t *testing.T) {
	t.Parallel()

	a := item(models.CategoryElectronics, 100, models.CategoryBooks)
	b := item(models.CategoryBooks, 100, models.CategoryMusic)
	c := item(models.CategoryMusic, 300, models.CategoryElectronics)
	cycle := []*models.Item{a, b, c}

	got, pairs := ChainScore(Scorer{}, cycle)

	if len(pairs) != 3 {
		t.Fatalf("pairs got %d, want 3", len(pairs))
	}
	want := []int{
		Scorer{}.Score(a, b).Total,
		Scorer{}.Score(b, c).Total,
		Scorer{}.Score(c, a).Total,
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("pair[%d] got %d, want %d", i, pairs[i], want[i])
		}
	}
	if got != AggregateScores(want) {
		t.Fatalf("chain score got %d, want %d", got, AggregateScores(want))
	}

	if score, pairs := ChainScore(Scorer{}, nil); score != 0 || pairs != nil {
		t.Fatalf("empty cycle got %d %v", score, pairs)
	}
}
