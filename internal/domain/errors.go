package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount rejects a non-positive transfer amount. The intake layer
// validates amounts before the core sees them, so hitting this is a contract
// violation rather than a business failure.
var ErrInvalidAmount = errors.New("transfer amount must be greater than zero")

// Unit-of-work failure modes. All are fatal to the individual transfer and
// never retried.
var (
	ErrBeginFailed    = errors.New("unit of work begin failed")
	ErrCommitFailed   = errors.New("unit of work commit failed")
	ErrRollbackFailed = errors.New("unit of work rollback failed")
)

// AccountNotFoundError reports a transfer against an unknown account id
type AccountNotFoundError struct {
	ID int
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %d not found", e.ID)
}

// InsufficientBalanceError reports a transfer that would overdraw an account.
// It carries the balance and requested amount so callers can surface the
// shortfall.
type InsufficientBalanceError struct {
	AccountName string
	Balance     decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for account %s: balance %s, requested %s (short %s)",
		e.AccountName, e.Balance.StringFixed(2), e.Requested.StringFixed(2), e.Shortfall().StringFixed(2))
}

// Shortfall returns how much the requested amount exceeds the balance
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Balance)
}

// IsBusinessError reports whether err is a pre-commit business failure
// (unknown account or overdraft) as opposed to an infrastructure failure
func IsBusinessError(err error) bool {
	var notFound *AccountNotFoundError
	var insufficient *InsufficientBalanceError
	return errors.As(err, &notFound) || errors.As(err, &insufficient)
}
