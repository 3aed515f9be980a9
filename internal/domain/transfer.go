package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus represents the terminal state of a settled transfer
type TransferStatus string

// Transfer statuses. A failed transfer aborts before a record is written,
// so Failed only ever appears in batch outcomes, never in the log.
const (
	StatusCompleted TransferStatus = "completed"
	StatusFailed    TransferStatus = "failed"
)

// TransferRecord is the immutable log entry for a settled transfer
type TransferRecord struct {
	ID          int             `json:"id"`
	AccountID   int             `json:"accountId"`
	LedgerID    int             `json:"ledgerId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      TransferStatus  `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`

	// Snapshots joined at query time, populated only by Recent(withRelated)
	Account *Account `json:"account,omitempty"`
	Ledger  *Ledger  `json:"ledger,omitempty"`
}
