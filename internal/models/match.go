package models

// ScoreBreakdown содержит составляющие оценки справедливости
type ScoreBreakdown struct {
	Value     int `json:"value"`
	Condition int `json:"condition"`
	Category  int `json:"category"`
	Keywords  int `json:"keywords"`
}

// MatchResult представляет кандидата на обмен один к одному
type MatchResult struct {
	Item      *Item          `json:"item"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reasoning []string       `json:"reasoning"`
}

// CycleResult представляет найденную цепочку обмена
type CycleResult struct {
	Items              []*Item `json:"items"`
	ChainFairnessScore int     `json:"chain_fairness_score"`
	PairScores         []int   `json:"pair_scores"`
}
