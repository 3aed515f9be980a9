// Package seed populates a fresh environment with the initial accounts and
// the bank ledger row. Seeding is idempotent: existing data is left alone.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/danisetya/transfer-service/internal/domain"
)

// Seeder bootstraps accounts and the ledger before the core is first invoked
type Seeder struct {
	accounts domain.AccountStore
	ledger   domain.LedgerStore
	logger   *zap.Logger
}

// NewSeeder creates a Seeder over the given stores
func NewSeeder(accounts domain.AccountStore, ledger domain.LedgerStore, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{accounts: accounts, ledger: ledger, logger: logger}
}

// initialAccounts is the account population created in a fresh environment
var initialAccounts = []struct {
	name    string
	balance int64
}{
	{"Sultan Johnson", 5000},
	{"Maxim Smith", 3500},
	{"Marf Brown", 73400},
	{"Diana Prince", 4800},
	{"Mert Norton", 6100},
	{"Fiona Green", 2900},
	{"George Wilson", 8500},
	{"Hannah Davis", 3200},
}

// Run seeds the account population and ensures the ledger row exists
func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.accounts.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing accounts: %w", err)
	}

	if len(existing) == 0 {
		accounts := make([]domain.Account, 0, len(initialAccounts))
		for _, a := range initialAccounts {
			accounts = append(accounts, domain.Account{
				Name:    a.name,
				Balance: decimal.New(a.balance, 0),
			})
		}
		created, err := s.accounts.CreateMany(ctx, accounts)
		if err != nil {
			return fmt.Errorf("creating seed accounts: %w", err)
		}
		s.logger.Info("created seed accounts", zap.Int("count", len(created)))
	}

	ledger, err := s.ledger.GetOrCreate(ctx)
	if err != nil {
		return fmt.Errorf("initializing bank ledger: %w", err)
	}
	s.logger.Info("bank ledger ready", zap.String("balance", ledger.Balance.StringFixed(2)))

	return nil
}
