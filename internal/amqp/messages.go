package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Reasons a budget check is requested.
const (
	ReasonBudgetSet          = "budget_set"
	ReasonCategoryChanged    = "category_changed"
	ReasonCategoryDeleted    = "category_deleted"
	ReasonTransactionChanged = "transaction_changed"
)

// BudgetCheckMessage asks the worker to re-derive allocation and spend for
// one user. It carries only the user id; the worker reads current records
// from storage, so a stale message can never apply stale numbers.
type BudgetCheckMessage struct {
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetCheckMessage(userID uuid.UUID, reason string) *BudgetCheckMessage {
	return &BudgetCheckMessage{
		UserID:    userID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *BudgetCheckMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetCheckMessageFromJSON(data []byte) (*BudgetCheckMessage, error) {
	var msg BudgetCheckMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
