package listing

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/config"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/repository"
	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/utils"
)

const (
	maxDescriptionLength = 2000
	maxKeywords          = 20
	maxConditionScore    = 100
)

// CreateItemInput содержит поля новой вещи
type CreateItemInput struct {
	Category          string            `json:"category"`
	Description       string            `json:"description"`
	DesiredCategories []string          `json:"desired_categories"`
	ConditionScore    int               `json:"condition_score"`
	EstimatedValue    decimal.Decimal   `json:"estimated_value"`
	Keywords          []string          `json:"keywords"`
	Attributes        map[string]string `json:"attributes"`
}

// ListingService представляет сервис для работы с вещами пользователей
type ListingService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	items      repository.ItemRepository
	log        *zap.SugaredLogger
	now        func() time.Time
}

// NewListingService создает новый экземпляр ListingService
func NewListingService(cfg *config.Config, items repository.ItemRepository, log *zap.SugaredLogger) *ListingService {
	return &ListingService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		items:      items,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create проверяет данные и сохраняет новую доступную вещь
func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, in CreateItemInput) (*models.Item, error) {
	category, ok := models.ParseCategory(in.Category)
	if !ok {
		return nil, apperr.New(apperr.InvalidInput, "Неизвестная категория")
	}

	desired := make([]models.Category, 0, len(in.DesiredCategories))
	for _, raw := range in.DesiredCategories {
		c, ok := models.ParseCategory(raw)
		if !ok {
			return nil, apperr.New(apperr.InvalidInput, "Неизвестная желаемая категория: "+raw)
		}
		if !containsCategory(desired, c) {
			desired = append(desired, c)
		}
	}

	if in.ConditionScore < 0 || in.ConditionScore > maxConditionScore {
		return nil, apperr.New(apperr.InvalidInput, "Состояние должно быть от 0 до 100")
	}
	if !in.EstimatedValue.IsPositive() {
		return nil, apperr.New(apperr.InvalidInput, "Стоимость должна быть положительной")
	}

	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, apperr.New(apperr.InvalidInput, "Описание слишком длинное")
	}

	keywords := normalizeKeywords(in.Keywords)
	if len(keywords) > maxKeywords {
		return nil, apperr.New(apperr.InvalidInput, "Слишком много ключевых слов")
	}

	now := s.now()
	item := &models.Item{
		ID:                uuid.New(),
		UserID:            ownerID,
		Category:          category,
		Description:       description,
		DesiredCategories: desired,
		ConditionScore:    in.ConditionScore,
		EstimatedValue:    in.EstimatedValue.Round(2),
		Status:            models.ItemAvailable,
		Keywords:          keywords,
		Attributes:        in.Attributes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.log.Infow("Вещь выставлена на обмен", "item_id", item.ID, "user_id", ownerID, "category", category)
	return item, nil
}

// Get возвращает неудаленную вещь
func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Deleted() {
		return nil, apperr.New(apperr.NotFound, "Вещь не найдена")
	}
	return item, nil
}

// ListMine возвращает вещи владельца
func (s *ListingService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]*models.Item, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.items.ListItemsByOwner(ctx, ownerID)
}

// Delete логически удаляет вещь владельца. Вещь в ожидающем обмене удалить нельзя.
func (s *ListingService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.UserID != ownerID {
		return apperr.New(apperr.Forbidden, "У вас нет прав на удаление этой вещи")
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.items.SoftDeleteItem(ctx, id); err != nil {
		return err
	}

	s.log.Infow("Вещь удалена", "item_id", id, "user_id", ownerID)
	return nil
}

func (s *ListingService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

func normalizeKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return keywords
}

func containsCategory(categories []models.Category, c models.Category) bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}
