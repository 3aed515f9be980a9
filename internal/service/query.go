package service

import (
	"context"
	"time"

	"github.com/danisetya/transfer-service/internal/domain"
)

// Read-only query surface. All queries reflect committed state only and
// have no side effects beyond the idempotent ledger bootstrap.

// RecentTransfers returns up to limit settled transfers newest-first,
// joined with account and ledger snapshots
func (s *TransferService) RecentTransfers(ctx context.Context, limit int) ([]domain.TransferRecord, error) {
	return s.transfers.Recent(ctx, limit, true)
}

// Bank returns the singleton ledger row
func (s *TransferService) Bank(ctx context.Context) (domain.Ledger, error) {
	return s.ledger.GetOrCreate(ctx)
}

// BankBalance returns the current ledger balance with a query timestamp
func (s *TransferService) BankBalance(ctx context.Context) (domain.BankBalanceData, error) {
	balance, err := s.ledger.GetBalance(ctx)
	if err != nil {
		return domain.BankBalanceData{}, err
	}
	return domain.BankBalanceData{Balance: balance, Timestamp: time.Now()}, nil
}

// Accounts returns all accounts ordered by name
func (s *TransferService) Accounts(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

// Account returns the account with the given id
func (s *TransferService) Account(ctx context.Context, id int) (domain.Account, error) {
	return s.accounts.Get(ctx, id)
}
