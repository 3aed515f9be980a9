package domain

import (
	"github.com/shopspring/decimal"
)

// TransferRequest is one validated item of a batch: move Amount from the
// account into the ledger
type TransferRequest struct {
	AccountID int             `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
}

// ItemResult is the per-request outcome of a batch, tagged with the input
// index so ordering survives any future concurrent execution
type ItemResult struct {
	Index  int             `json:"index"`
	Status TransferStatus  `json:"status"`
	Record *TransferRecord `json:"transaction,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchOutcome summarizes one batch call. Completed+Failed always equals
// Total, and Details holds exactly one entry per request in input order.
type BatchOutcome struct {
	Total          int          `json:"total"`
	Completed      int          `json:"completed"`
	Failed         int          `json:"failed"`
	Details        []ItemResult `json:"details"`
	ProcessingTime int64        `json:"processingTime"` // milliseconds
}
