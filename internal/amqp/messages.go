package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

type Entity string

const (
	EntityIncome   Entity = "income"
	EntityExpense  Entity = "expense"
	EntityCategory Entity = "category"
)

// LedgerEvent describes one committed change to a user's ledger. It carries
// enough data for the export worker to write a row without reading the database.
type LedgerEvent struct {
	EventID      string    `json:"event_id"`
	Action       Action    `json:"action"`
	Entity       Entity    `json:"entity"`
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	AmountCents  int64     `json:"amount_cents,omitempty"`
	Date         string    `json:"date,omitempty"`
	Description  string    `json:"description,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	IsIncome     bool      `json:"is_income,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewLedgerEvent creates an event with a fresh id and the current time.
func NewLedgerEvent(action Action, entity Entity, id, userID int64) *LedgerEvent {
	return &LedgerEvent{
		EventID:    uuid.NewString(),
		Action:     action,
		Entity:     entity,
		ID:         id,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

func IncomeEvent(action Action, i core.Income) *LedgerEvent {
	ev := NewLedgerEvent(action, EntityIncome, i.ID, i.UserID)
	ev.AmountCents = i.Amount.Cents
	ev.Date = i.Date.String()
	ev.Description = i.Description
	ev.CategoryName = i.CategoryName
	ev.IsIncome = true
	return ev
}

func ExpenseEvent(action Action, e core.Expense) *LedgerEvent {
	ev := NewLedgerEvent(action, EntityExpense, e.ID, e.UserID)
	ev.AmountCents = e.Amount.Cents
	ev.Date = e.Date.String()
	ev.Description = e.Description
	ev.CategoryName = e.CategoryName
	return ev
}

func CategoryEvent(action Action, c core.Category) *LedgerEvent {
	ev := NewLedgerEvent(action, EntityCategory, c.ID, c.UserID)
	ev.CategoryName = c.Name
	ev.IsIncome = c.IsIncome
	return ev
}

// Amount returns the event amount as Money.
func (e *LedgerEvent) Amount() core.Money {
	return core.Money{Cents: e.AmountCents}
}

func (e *LedgerEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("missing event_id")
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
	switch e.Entity {
	case EntityIncome, EntityExpense, EntityCategory:
	default:
		return fmt.Errorf("unknown entity %q", e.Entity)
	}
	if e.ID <= 0 || e.UserID <= 0 {
		return errors.New("missing id or user_id")
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
