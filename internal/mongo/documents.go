package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

// itemDoc хранит вещь в коллекции items. ID хранятся строками, стоимость Decimal128.
type itemDoc struct {
	ID                string               `bson:"_id"`
	UserID            string               `bson:"user_id"`
	Category          string               `bson:"category"`
	Description       string               `bson:"description"`
	DesiredCategories []string             `bson:"desired_categories"`
	ConditionScore    int                  `bson:"condition_score"`
	EstimatedValue    primitive.Decimal128 `bson:"estimated_value"`
	Status            string               `bson:"status"`
	Keywords          []string             `bson:"keywords,omitempty"`
	Attributes        map[string]string    `bson:"attributes,omitempty"`
	PendingTradeID    *string              `bson:"pending_trade_id"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
	DeletedAt         *time.Time           `bson:"deleted_at"`
}

type chainItemDoc struct {
	ItemID         string               `bson:"item_id"`
	UserID         string               `bson:"user_id"`
	EstimatedValue primitive.Decimal128 `bson:"estimated_value"`
}

// tradeDoc хранит обмен. Version растет при каждом изменении и проверяется при записи.
type tradeDoc struct {
	ID                 string         `bson:"_id"`
	Type               string         `bson:"type"`
	Status             string         `bson:"status"`
	ProposerID         string         `bson:"proposer_id"`
	UsersInvolved      []string       `bson:"users_involved"`
	AcceptedBy         []string       `bson:"accepted_by"`
	Item1ID            *string        `bson:"item1_id,omitempty"`
	Item2ID            *string        `bson:"item2_id,omitempty"`
	ChainItems         []chainItemDoc `bson:"chain_items,omitempty"`
	ChainFairnessScore int            `bson:"chain_fairness_score"`
	DeclinedBy         *string        `bson:"declined_by,omitempty"`
	Message            string         `bson:"message,omitempty"`
	Version            int64          `bson:"version"`
	CreatedAt          time.Time      `bson:"created_at"`
	UpdatedAt          time.Time      `bson:"updated_at"`
}

func toItemDoc(item *models.Item) (itemDoc, error) {
	value, err := toDecimal128(item.EstimatedValue)
	if err != nil {
		return itemDoc{}, err
	}

	desired := make([]string, len(item.DesiredCategories))
	for i, c := range item.DesiredCategories {
		desired[i] = string(c)
	}

	return itemDoc{
		ID:                item.ID.String(),
		UserID:            item.UserID.String(),
		Category:          string(item.Category),
		Description:       item.Description,
		DesiredCategories: desired,
		ConditionScore:    item.ConditionScore,
		EstimatedValue:    value,
		Status:            string(item.Status),
		Keywords:          item.Keywords,
		Attributes:        item.Attributes,
		PendingTradeID:    idString(item.PendingTradeID),
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
		DeletedAt:         item.DeletedAt,
	}, nil
}

func (d itemDoc) toModel() (*models.Item, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("неверный _id вещи %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("неверный user_id вещи %s: %w", d.ID, err)
	}
	pending, err := parseOptionalID(d.PendingTradeID)
	if err != nil {
		return nil, err
	}
	value, err := fromDecimal128(d.EstimatedValue)
	if err != nil {
		return nil, err
	}

	desired := make([]models.Category, len(d.DesiredCategories))
	for i, c := range d.DesiredCategories {
		desired[i] = models.Category(c)
	}

	return &models.Item{
		ID:                id,
		UserID:            userID,
		Category:          models.Category(d.Category),
		Description:       d.Description,
		DesiredCategories: desired,
		ConditionScore:    d.ConditionScore,
		EstimatedValue:    value,
		Status:            models.ItemStatus(d.Status),
		Keywords:          d.Keywords,
		Attributes:        d.Attributes,
		PendingTradeID:    pending,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		DeletedAt:         d.DeletedAt,
	}, nil
}

func toTradeDoc(trade *models.Trade) (tradeDoc, error) {
	chain := make([]chainItemDoc, len(trade.ChainItems))
	for i, ci := range trade.ChainItems {
		value, err := toDecimal128(ci.EstimatedValue)
		if err != nil {
			return tradeDoc{}, err
		}
		chain[i] = chainItemDoc{
			ItemID:         ci.ItemID.String(),
			UserID:         ci.UserID.String(),
			EstimatedValue: value,
		}
	}

	return tradeDoc{
		ID:                 trade.ID.String(),
		Type:               string(trade.Type),
		Status:             string(trade.Status),
		ProposerID:         trade.ProposerID.String(),
		UsersInvolved:      idStrings(trade.UsersInvolved),
		AcceptedBy:         idStrings(trade.AcceptedBy),
		Item1ID:            idString(trade.Item1ID),
		Item2ID:            idString(trade.Item2ID),
		ChainItems:         chain,
		ChainFairnessScore: trade.ChainFairnessScore,
		DeclinedBy:         idString(trade.DeclinedBy),
		Message:            trade.Message,
		CreatedAt:          trade.CreatedAt,
		UpdatedAt:          trade.UpdatedAt,
	}, nil
}

func (d tradeDoc) toModel() (*models.Trade, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("неверный _id обмена %q: %w", d.ID, err)
	}
	proposer, err := uuid.Parse(d.ProposerID)
	if err != nil {
		return nil, fmt.Errorf("неверный proposer_id обмена %s: %w", d.ID, err)
	}
	users, err := parseIDs(d.UsersInvolved)
	if err != nil {
		return nil, err
	}
	accepted, err := parseIDs(d.AcceptedBy)
	if err != nil {
		return nil, err
	}

	trade := &models.Trade{
		ID:                 id,
		Type:               models.TradeType(d.Type),
		Status:             models.TradeStatus(d.Status),
		ProposerID:         proposer,
		UsersInvolved:      users,
		AcceptedBy:         accepted,
		ChainFairnessScore: d.ChainFairnessScore,
		Message:            d.Message,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}

	if trade.Item1ID, err = parseOptionalID(d.Item1ID); err != nil {
		return nil, err
	}
	if trade.Item2ID, err = parseOptionalID(d.Item2ID); err != nil {
		return nil, err
	}
	if trade.DeclinedBy, err = parseOptionalID(d.DeclinedBy); err != nil {
		return nil, err
	}

	for _, ci := range d.ChainItems {
		itemID, err := uuid.Parse(ci.ItemID)
		if err != nil {
			return nil, fmt.Errorf("неверный item_id в цепочке %s: %w", d.ID, err)
		}
		userID, err := uuid.Parse(ci.UserID)
		if err != nil {
			return nil, fmt.Errorf("неверный user_id в цепочке %s: %w", d.ID, err)
		}
		value, err := fromDecimal128(ci.EstimatedValue)
		if err != nil {
			return nil, err
		}
		trade.ChainItems = append(trade.ChainItems, models.ChainItem{ItemID: itemID, UserID: userID, EstimatedValue: value})
	}

	return trade, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("стоимость %s не помещается в Decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка разбора стоимости %s: %w", v, err)
	}
	return d, nil
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(values))
	for i, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("неверный ID %q: %w", v, err)
		}
		out[i] = id
	}
	return out, nil
}

func parseOptionalID(v *string) (*uuid.UUID, error) {
	if v == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, fmt.Errorf("неверный ID %q: %w", *v, err)
	}
	return &id, nil
}
