package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType classifies a change event emitted after a commit
type EventType string

// Event types delivered to the change notifier
const (
	EventBankBalance   EventType = "bank_balance"
	EventTransaction   EventType = "transaction"
	EventAccountUpdate EventType = "account_update"
)

// Event is one settled state change. Events are produced by the transfer
// processor after a successful commit and dispatched fire-and-forget; a
// notifier failure never affects the committed transfer.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// BankBalanceData is the payload of a bank_balance event
type BankBalanceData struct {
	Balance   decimal.Decimal `json:"balance"`
	Timestamp time.Time       `json:"timestamp"`
}

// AccountUpdateData is the payload of an account_update event
type AccountUpdateData struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Notifier receives settled change events. Implementations must swallow and
// log their own delivery failures.
type Notifier interface {
	Publish(event Event)
}
