package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/danisetya/transfer-service/internal/domain"
)

// bankStartingBalance is the fixed balance the singleton bank row is
// created with
var bankStartingBalance = decimal.New(1_000_000, 0)

// LedgerStore implements domain.LedgerStore on Postgres
type LedgerStore struct {
	q querier
}

// NewLedgerStore creates a LedgerStore backed by the given database
func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{q: db}
}

// GetOrCreate implements the domain.LedgerStore interface
func (s *LedgerStore) GetOrCreate(ctx context.Context) (domain.Ledger, error) {
	ledger, err := s.get(ctx)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Ledger{}, fmt.Errorf("querying bank row: %w", err)
	}

	// ON CONFLICT keeps bootstrap idempotent under concurrent first access
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO bank (id, name, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		domain.LedgerID, "Bank", bankStartingBalance,
	)
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("creating bank row: %w", err)
	}

	ledger, err = s.get(ctx)
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("querying bank row after create: %w", err)
	}
	return ledger, nil
}

// Credit implements the domain.LedgerStore interface
func (s *LedgerStore) Credit(ctx context.Context, amount decimal.Decimal) (domain.Ledger, error) {
	var ledger domain.Ledger
	err := s.q.QueryRowContext(ctx,
		`UPDATE bank SET balance = balance + $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING id, name, balance, updated_at`,
		amount, domain.LedgerID,
	).Scan(&ledger.ID, &ledger.Name, &ledger.Balance, &ledger.UpdatedAt)
	if err != nil {
		return domain.Ledger{}, fmt.Errorf("crediting bank: %w", err)
	}
	return ledger, nil
}

// GetBalance implements the domain.LedgerStore interface
func (s *LedgerStore) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	ledger, err := s.GetOrCreate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Balance, nil
}

func (s *LedgerStore) get(ctx context.Context) (domain.Ledger, error) {
	var ledger domain.Ledger
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, balance, updated_at FROM bank WHERE id = $1`,
		domain.LedgerID,
	).Scan(&ledger.ID, &ledger.Name, &ledger.Balance, &ledger.UpdatedAt)
	return ledger, err
}
