package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerID is the identity of the single bank ledger row
const LedgerID = 1

// Ledger is the singleton bank-side balance that accumulates debited amounts
type Ledger struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
