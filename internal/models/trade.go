package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/apperr"
)

// TradeType определяет вид обмена
type TradeType string

const (
	TradeOneToOne TradeType = "one_to_one"
	TradeMultiHop TradeType = "multi_hop"
)

// TradeStatus определяет состояние обмена
type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeCompleted TradeStatus = "completed"
	TradeDeclined  TradeStatus = "declined"
)

// ChainItem представляет звено цепочки обмена
type ChainItem struct {
	ItemID         uuid.UUID       `json:"item_id"`
	UserID         uuid.UUID       `json:"user_id"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

// Trade представляет предложение обмена между двумя или несколькими пользователями
type Trade struct {
	ID                 uuid.UUID   `json:"id"`
	Type               TradeType   `json:"type"`
	Status             TradeStatus `json:"status"`
	ProposerID         uuid.UUID   `json:"proposer_id"`
	UsersInvolved      []uuid.UUID `json:"users_involved"`
	AcceptedBy         []uuid.UUID `json:"accepted_by"`
	Item1ID            *uuid.UUID  `json:"item1_id,omitempty"`
	Item2ID            *uuid.UUID  `json:"item2_id,omitempty"`
	ChainItems         []ChainItem `json:"chain_items,omitempty"`
	ChainFairnessScore int         `json:"chain_fairness_score,omitempty"`
	DeclinedBy         *uuid.UUID  `json:"declined_by,omitempty"`
	Message            string      `json:"message,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ItemIDs возвращает все вещи, участвующие в обмене, в порядке обмена
func (t *Trade) ItemIDs() []uuid.UUID {
	if t.Type == TradeOneToOne {
		ids := make([]uuid.UUID, 0, 2)
		if t.Item1ID != nil {
			ids = append(ids, *t.Item1ID)
		}
		if t.Item2ID != nil {
			ids = append(ids, *t.Item2ID)
		}
		return ids
	}

	ids := make([]uuid.UUID, 0, len(t.ChainItems))
	for _, ci := range t.ChainItems {
		ids = append(ids, ci.ItemID)
	}
	return ids
}

// IsParticipant проверяет, является ли пользователь участником обмена
func (t *Trade) IsParticipant(userID uuid.UUID) bool {
	return containsUser(t.UsersInvolved, userID)
}

// HasAccepted проверяет, принял ли пользователь обмен
func (t *Trade) HasAccepted(userID uuid.UUID) bool {
	return containsUser(t.AcceptedBy, userID)
}

// AllAccepted сообщает, что каждый участник принял обмен
func (t *Trade) AllAccepted() bool {
	for _, u := range t.UsersInvolved {
		if !t.HasAccepted(u) {
			return false
		}
	}
	return len(t.UsersInvolved) > 0
}

// Accept добавляет пользователя в acceptedBy и завершает обмен, если приняли все.
// changed=false означает повторное принятие: состояние не изменилось.
func (t *Trade) Accept(userID uuid.UUID, now time.Time) (changed bool, completed bool, err error) {
	if err := t.checkAction(userID); err != nil {
		return false, false, err
	}

	if t.HasAccepted(userID) {
		return false, false, nil
	}

	t.AcceptedBy = append(t.AcceptedBy, userID)
	t.UpdatedAt = now

	if t.AllAccepted() {
		t.Status = TradeCompleted
		return true, true, nil
	}

	return true, false, nil
}

// Decline отклоняет обмен целиком. Частичного отказа не бывает.
func (t *Trade) Decline(userID uuid.UUID, now time.Time) error {
	if err := t.checkAction(userID); err != nil {
		return err
	}

	declinedBy := userID
	t.Status = TradeDeclined
	t.DeclinedBy = &declinedBy
	t.UpdatedAt = now
	return nil
}

func (t *Trade) checkAction(userID uuid.UUID) error {
	if !t.IsParticipant(userID) {
		return apperr.New(apperr.Forbidden, "Пользователь не участвует в этом обмене")
	}
	if t.Status != TradePending {
		return apperr.New(apperr.InvalidState, "Обмен уже завершен или отклонен")
	}
	return nil
}

// Clone возвращает глубокую копию обмена
func (t *Trade) Clone() *Trade {
	if t == nil {
		return nil
	}

	c := *t
	c.UsersInvolved = append([]uuid.UUID(nil), t.UsersInvolved...)
	c.AcceptedBy = append(make([]uuid.UUID, 0, len(t.AcceptedBy)), t.AcceptedBy...)
	c.ChainItems = append([]ChainItem(nil), t.ChainItems...)
	c.Item1ID = cloneID(t.Item1ID)
	c.Item2ID = cloneID(t.Item2ID)
	c.DeclinedBy = cloneID(t.DeclinedBy)
	return &c
}

// DistinctOwners возвращает владельцев звеньев цепочки без повторов, в порядке цепочки
func DistinctOwners(items []ChainItem) []uuid.UUID {
	owners := make([]uuid.UUID, 0, len(items))
	for _, ci := range items {
		if !containsUser(owners, ci.UserID) {
			owners = append(owners, ci.UserID)
		}
	}
	return owners
}

func containsUser(users []uuid.UUID, userID uuid.UUID) bool {
	for _, u := range users {
		if u == userID {
			return true
		}
	}
	return false
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
