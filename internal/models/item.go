package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus определяет состояние вещи в обменах
type ItemStatus string

const (
	ItemAvailable ItemStatus = "available"
	ItemPending   ItemStatus = "pending"
	ItemTraded    ItemStatus = "traded"
)

// Item представляет вещь, выставленную на обмен
type Item struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Category          Category          `json:"category"`
	Description       string            `json:"description"`
	DesiredCategories []Category        `json:"desired_categories"`
	ConditionScore    int               `json:"condition_score"`
	EstimatedValue    decimal.Decimal   `json:"estimated_value"`
	Status            ItemStatus        `json:"status"`
	Keywords          []string          `json:"keywords,omitempty"`
	Attributes        map[string]string `json:"attributes,omitempty"`
	PendingTradeID    *uuid.UUID        `json:"pending_trade_id,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	DeletedAt         *time.Time        `json:"-"`
}

// Wants сообщает, хочет ли владелец получить вещь указанной категории
func (i *Item) Wants(c Category) bool {
	for _, desired := range i.DesiredCategories {
		if desired == c {
			return true
		}
	}
	return false
}

// Deleted сообщает, что вещь логически удалена владельцем
func (i *Item) Deleted() bool {
	return i.DeletedAt != nil
}

// Tradable сообщает, что вещь можно предложить в новый обмен
func (i *Item) Tradable() bool {
	return i.Status == ItemAvailable && !i.Deleted()
}

// Clone возвращает глубокую копию вещи
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}

	c := *i
	c.DesiredCategories = append([]Category(nil), i.DesiredCategories...)
	c.Keywords = append([]string(nil), i.Keywords...)
	if i.Attributes != nil {
		c.Attributes = make(map[string]string, len(i.Attributes))
		for k, v := range i.Attributes {
			c.Attributes[k] = v
		}
	}
	if i.PendingTradeID != nil {
		id := *i.PendingTradeID
		c.PendingTradeID = &id
	}
	if i.DeletedAt != nil {
		at := *i.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}
