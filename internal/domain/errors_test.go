package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/danisetya/transfer-service/internal/domain"
)

func TestAccountNotFoundError(t *testing.T) {
	err := &domain.AccountNotFoundError{ID: 999}
	assert.Equal(t, "account 999 not found", err.Error())
	assert.True(t, domain.IsBusinessError(err))
}

func TestInsufficientBalanceError(t *testing.T) {
	err := &domain.InsufficientBalanceError{
		AccountName: "Bob",
		Balance:     decimal.RequireFromString("10.00"),
		Requested:   decimal.RequireFromString("50.00"),
	}

	assert.True(t, err.Shortfall().Equal(decimal.RequireFromString("40.00")))
	assert.Equal(t,
		"insufficient balance for account Bob: balance 10.00, requested 50.00 (short 40.00)",
		err.Error())
	assert.True(t, domain.IsBusinessError(err))
}

func TestIsBusinessErrorSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("processing transfer: %w", &domain.AccountNotFoundError{ID: 7})
	assert.True(t, domain.IsBusinessError(wrapped))
}

func TestInfrastructureErrorsAreNotBusinessErrors(t *testing.T) {
	for _, err := range []error{
		domain.ErrInvalidAmount,
		domain.ErrBeginFailed,
		domain.ErrCommitFailed,
		domain.ErrRollbackFailed,
		errors.New("connection refused"),
	} {
		assert.False(t, domain.IsBusinessError(err), "%v", err)
	}
}
