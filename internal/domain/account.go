package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a person holding a balance that transfers draw from
type Account struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}
