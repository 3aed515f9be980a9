package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danisetya/transfer-service/internal/domain"
)

// Store is an in-memory implementation of the account, ledger, and transfer
// stores. A single mutex serializes all state changes, so every store
// operation is atomic and units of work hold the lock for their whole scope.
// Used by tests and by dry-run batch processing.
type Store struct {
	mu             sync.Mutex
	accounts       map[int]*domain.Account
	nextAccountID  int
	ledger         *domain.Ledger
	transfers      []domain.TransferRecord
	nextTransferID int
}

// bankStartingBalance is the fixed balance the singleton ledger is created
// with on first access
var bankStartingBalance = decimal.New(1_000_000, 0)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		accounts: make(map[int]*domain.Account),
	}
}

// Accounts returns the store's AccountStore view
func (s *Store) Accounts() domain.AccountStore { return &accountStore{s: s} }

// Ledger returns the store's LedgerStore view
func (s *Store) Ledger() domain.LedgerStore { return &ledgerStore{s: s} }

// Transfers returns the store's TransferLog view
func (s *Store) Transfers() domain.TransferLog { return &transferLog{s: s} }

// Unlocked core operations. Callers must hold s.mu.

func (s *Store) getAccount(id int) (domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, &domain.AccountNotFoundError{ID: id}
	}
	return *a, nil
}

func (s *Store) debitAccount(id int, amount decimal.Decimal) error {
	a, ok := s.accounts[id]
	if !ok {
		return &domain.AccountNotFoundError{ID: id}
	}
	if a.Balance.LessThan(amount) {
		return &domain.InsufficientBalanceError{
			AccountName: a.Name,
			Balance:     a.Balance,
			Requested:   amount,
		}
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (s *Store) creditAccount(id int, amount decimal.Decimal) {
	if a, ok := s.accounts[id]; ok {
		a.Balance = a.Balance.Add(amount)
	}
}

func (s *Store) listAccounts() []domain.Account {
	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) createAccounts(accounts []domain.Account) []domain.Account {
	created := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		s.nextAccountID++
		a.ID = s.nextAccountID
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		cp := a
		s.accounts[a.ID] = &cp
		created = append(created, a)
	}
	return created
}

func (s *Store) getOrCreateLedger() domain.Ledger {
	if s.ledger == nil {
		s.ledger = &domain.Ledger{
			ID:        domain.LedgerID,
			Name:      "Bank",
			Balance:   bankStartingBalance,
			UpdatedAt: time.Now(),
		}
	}
	return *s.ledger
}

func (s *Store) creditLedger(amount decimal.Decimal) domain.Ledger {
	s.getOrCreateLedger()
	s.ledger.Balance = s.ledger.Balance.Add(amount)
	s.ledger.UpdatedAt = time.Now()
	return *s.ledger
}

func (s *Store) appendTransfer(record domain.TransferRecord) domain.TransferRecord {
	s.nextTransferID++
	record.ID = s.nextTransferID
	record.CreatedAt = time.Now()
	record.Account = nil
	record.Ledger = nil
	s.transfers = append(s.transfers, record)
	return record
}

func (s *Store) dropLastTransfer() {
	if len(s.transfers) > 0 {
		s.transfers = s.transfers[:len(s.transfers)-1]
		s.nextTransferID--
	}
}

func (s *Store) recentTransfers(limit int, withRelated bool) []domain.TransferRecord {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}

	out := make([]domain.TransferRecord, 0, limit)
	for i := len(s.transfers) - 1; i >= 0 && len(out) < limit; i-- {
		record := s.transfers[i]
		if withRelated {
			if a, ok := s.accounts[record.AccountID]; ok {
				cp := *a
				record.Account = &cp
			}
			ledger := s.getOrCreateLedger()
			record.Ledger = &ledger
		}
		out = append(out, record)
	}
	return out
}

// accountStore adapts Store to domain.AccountStore with locking
type accountStore struct{ s *Store }

func (a *accountStore) Get(ctx context.Context, id int) (domain.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.getAccount(id)
}

func (a *accountStore) GetBalance(ctx context.Context, id int) (decimal.Decimal, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	acct, err := a.s.getAccount(id)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

func (a *accountStore) Debit(ctx context.Context, id int, amount decimal.Decimal) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.debitAccount(id, amount)
}

func (a *accountStore) List(ctx context.Context) ([]domain.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.listAccounts(), nil
}

func (a *accountStore) CreateMany(ctx context.Context, accounts []domain.Account) ([]domain.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.createAccounts(accounts), nil
}

// ledgerStore adapts Store to domain.LedgerStore with locking
type ledgerStore struct{ s *Store }

func (l *ledgerStore) GetOrCreate(ctx context.Context) (domain.Ledger, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.getOrCreateLedger(), nil
}

func (l *ledgerStore) Credit(ctx context.Context, amount decimal.Decimal) (domain.Ledger, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.creditLedger(amount), nil
}

func (l *ledgerStore) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.getOrCreateLedger().Balance, nil
}

// transferLog adapts Store to domain.TransferLog with locking
type transferLog struct{ s *Store }

func (t *transferLog) Append(ctx context.Context, record domain.TransferRecord) (domain.TransferRecord, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.appendTransfer(record), nil
}

func (t *transferLog) Recent(ctx context.Context, limit int, withRelated bool) ([]domain.TransferRecord, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.recentTransfers(limit, withRelated), nil
}
