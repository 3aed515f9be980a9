package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/danisetya/transfer-service/internal/domain"
)

// UnitOfWork implements domain.UnitOfWork over an in-memory Store. The
// store mutex is held from begin to commit/rollback, so no reader observes
// a partially applied scope. Mutations apply to live state as they happen
// and an undo journal reverses them on failure.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a unit-of-work coordinator for the given store
func NewUnitOfWork(s *Store) *UnitOfWork {
	return &UnitOfWork{store: s}
}

// Run implements the domain.UnitOfWork interface
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, s domain.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBeginFailed, err)
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	tx := &txScope{store: u.store}
	scoped := domain.Stores{
		Accounts:  &txAccountStore{tx: tx},
		Ledger:    &txLedgerStore{tx: tx},
		Transfers: &txTransferLog{tx: tx},
	}

	if err := fn(ctx, scoped); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// txScope tracks the undo steps for one open scope. The store mutex is held
// by Run while any of these methods execute.
type txScope struct {
	store *Store
	undo  []func()
}

func (t *txScope) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// txAccountStore is the account handle scoped to one unit of work
type txAccountStore struct{ tx *txScope }

func (a *txAccountStore) Get(ctx context.Context, id int) (domain.Account, error) {
	return a.tx.store.getAccount(id)
}

func (a *txAccountStore) GetBalance(ctx context.Context, id int) (decimal.Decimal, error) {
	acct, err := a.tx.store.getAccount(id)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

func (a *txAccountStore) Debit(ctx context.Context, id int, amount decimal.Decimal) error {
	if err := a.tx.store.debitAccount(id, amount); err != nil {
		return err
	}
	a.tx.undo = append(a.tx.undo, func() { a.tx.store.creditAccount(id, amount) })
	return nil
}

func (a *txAccountStore) List(ctx context.Context) ([]domain.Account, error) {
	return a.tx.store.listAccounts(), nil
}

func (a *txAccountStore) CreateMany(ctx context.Context, accounts []domain.Account) ([]domain.Account, error) {
	created := a.tx.store.createAccounts(accounts)
	a.tx.undo = append(a.tx.undo, func() {
		for _, c := range created {
			delete(a.tx.store.accounts, c.ID)
		}
	})
	return created, nil
}

// txLedgerStore is the ledger handle scoped to one unit of work
type txLedgerStore struct{ tx *txScope }

func (l *txLedgerStore) GetOrCreate(ctx context.Context) (domain.Ledger, error) {
	return l.tx.store.getOrCreateLedger(), nil
}

func (l *txLedgerStore) Credit(ctx context.Context, amount decimal.Decimal) (domain.Ledger, error) {
	ledger := l.tx.store.creditLedger(amount)
	l.tx.undo = append(l.tx.undo, func() {
		l.tx.store.ledger.Balance = l.tx.store.ledger.Balance.Sub(amount)
	})
	return ledger, nil
}

func (l *txLedgerStore) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	return l.tx.store.getOrCreateLedger().Balance, nil
}

// txTransferLog is the transfer-log handle scoped to one unit of work
type txTransferLog struct{ tx *txScope }

func (t *txTransferLog) Append(ctx context.Context, record domain.TransferRecord) (domain.TransferRecord, error) {
	stored := t.tx.store.appendTransfer(record)
	t.tx.undo = append(t.tx.undo, func() { t.tx.store.dropLastTransfer() })
	return stored, nil
}

func (t *txTransferLog) Recent(ctx context.Context, limit int, withRelated bool) ([]domain.TransferRecord, error) {
	return t.tx.store.recentTransfers(limit, withRelated), nil
}
