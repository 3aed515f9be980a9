package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danisetya/transfer-service/internal/domain"
)

// UnitOfWork implements domain.UnitOfWork as a database transaction
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a unit-of-work coordinator over the given database
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Run implements the domain.UnitOfWork interface. The deferred rollback is
// a no-op once the transaction committed, so the connection is released on
// every path.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, s domain.Stores) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBeginFailed, err)
	}
	defer tx.Rollback()

	scoped := domain.Stores{
		Accounts:  &AccountStore{q: tx},
		Ledger:    &LedgerStore{q: tx},
		Transfers: &TransferLog{q: tx},
	}

	if err := fn(ctx, scoped); err != nil {
		// The business error takes precedence; a rollback failure is
		// surfaced only when rollback itself broke.
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w: %v (while handling: %v)", domain.ErrRollbackFailed, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCommitFailed, err)
	}
	return nil
}
