package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/repository"
)

// Config содержит параметры подбора
type Config struct {
	MaxValueRatio     float64
	MinScore          int
	ResultCap         int
	MaxDepth          int
	PoolLimit         int
	ScarcityWeighting bool
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		MaxValueRatio: 0.30,
		MinScore:      50,
		ResultCap:     20,
		MaxDepth:      DefaultMaxDepth,
		PoolLimit:     500,
	}
}

// Service подбирает обмены один к одному и цепочки. Ничего не изменяет в хранилище.
type Service struct {
	items repository.ItemRepository
	stats repository.StatsSource
	cfg   Config
	log   *zap.SugaredLogger
}

// NewService создает новый экземпляр Service
func NewService(items repository.ItemRepository, stats repository.StatsSource, cfg Config, log *zap.SugaredLogger) *Service {
	return &Service{
		items: items,
		stats: stats,
		cfg:   cfg,
		log:   log,
	}
}

// Scorer возвращает оценщик с учетом настроек дефицита.
// Если статистика недоступна, оценка продолжается без нее.
func (s *Service) Scorer(ctx context.Context) Scorer {
	scorer := Scorer{ScarcityWeighting: s.cfg.ScarcityWeighting}
	if !s.cfg.ScarcityWeighting || s.stats == nil {
		return scorer
	}

	stats, err := s.stats.GetCategoryStats(ctx)
	if err != nil {
		s.log.Warnw("Не удалось получить статистику категорий, оцениваем без дефицита", "error", err)
		scorer.ScarcityWeighting = false
		return scorer
	}
	scorer.Stats = stats
	return scorer
}

// FindMatches возвращает кандидатов для обмена один к одному, лучшие сначала
func (s *Service) FindMatches(ctx context.Context, itemID, userID uuid.UUID) ([]models.MatchResult, error) {
	source, err := s.sourceItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	pool, err := s.items.ListItemsByStatus(ctx, models.ItemAvailable)
	if err != nil {
		return nil, err
	}

	candidates := FilterCandidates(source, userID, pool, s.cfg.MaxValueRatio)
	scorer := s.Scorer(ctx)

	results := make([]models.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		score := scorer.Score(source, candidate)
		if score.Total < s.cfg.MinScore {
			continue
		}
		results = append(results, models.MatchResult{
			Item:      candidate,
			Score:     score.Total,
			Breakdown: score.Breakdown,
			Reasoning: score.Reasoning,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if s.cfg.ResultCap > 0 && len(results) > s.cfg.ResultCap {
		results = results[:s.cfg.ResultCap]
	}

	s.log.Debugw("Подбор обменов выполнен",
		"item_id", itemID, "pool", len(pool), "candidates", len(candidates), "results", len(results))
	return results, nil
}

// FindChains возвращает цепочки обмена через вещь, лучшие сначала
func (s *Service) FindChains(ctx context.Context, itemID uuid.UUID) ([]models.CycleResult, error) {
	start, err := s.sourceItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	available, err := s.items.ListItemsByStatus(ctx, models.ItemAvailable)
	if err != nil {
		return nil, err
	}

	pool := s.chainPool(start, available)
	cycles := FindCycles(start, pool, s.cfg.MaxDepth)
	scorer := s.Scorer(ctx)

	results := make([]models.CycleResult, 0, len(cycles))
	for _, cycle := range cycles {
		score, pairs := ChainScore(scorer, cycle)
		results = append(results, models.CycleResult{
			Items:              cycle,
			ChainFairnessScore: score,
			PairScores:         pairs,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ChainFairnessScore > results[j].ChainFairnessScore
	})
	if s.cfg.ResultCap > 0 && len(results) > s.cfg.ResultCap {
		results = results[:s.cfg.ResultCap]
	}

	s.log.Debugw("Поиск цепочек выполнен",
		"item_id", itemID, "pool", len(pool), "cycles", len(cycles), "max_depth", s.cfg.MaxDepth)
	return results, nil
}

// chainPool оставляет доступные вещи из справочных категорий без других вещей владельца старта
func (s *Service) chainPool(start *models.Item, available []*models.Item) []*models.Item {
	pool := make([]*models.Item, 0, len(available))
	for _, item := range available {
		if item.ID == start.ID || item.UserID == start.UserID {
			continue
		}
		if !item.Tradable() || !item.Category.Valid() {
			continue
		}
		pool = append(pool, item)
	}

	if s.cfg.PoolLimit > 0 && len(pool) > s.cfg.PoolLimit {
		s.log.Warnw("Пул для поиска цепочек урезан", "size", len(pool), "limit", s.cfg.PoolLimit)
		pool = pool[:s.cfg.PoolLimit]
	}
	return pool
}

func (s *Service) sourceItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Deleted() {
		return nil, apperr.New(apperr.NotFound, "Вещь не найдена")
	}
	if !item.Category.Valid() {
		return nil, apperr.New(apperr.InvalidInput, "Неизвестная категория вещи")
	}
	return item, nil
}
