package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/danisetya/transfer-service/internal/domain"
)

// AccountStore implements domain.AccountStore on Postgres
type AccountStore struct {
	q querier
}

// NewAccountStore creates an AccountStore backed by the given database
func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{q: db}
}

// Get implements the domain.AccountStore interface
func (s *AccountStore) Get(ctx context.Context, id int) (domain.Account, error) {
	var a domain.Account
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, balance, created_at FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, &domain.AccountNotFoundError{ID: id}
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("querying account %d: %w", id, err)
	}
	return a, nil
}

// GetBalance implements the domain.AccountStore interface
func (s *AccountStore) GetBalance(ctx context.Context, id int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.q.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE id = $1`, id,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, &domain.AccountNotFoundError{ID: id}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("querying balance of account %d: %w", id, err)
	}
	return balance, nil
}

// Debit implements the domain.AccountStore interface. The conditional
// single-statement UPDATE is the atomic overdraft guard: concurrent debits
// against the same row serialize on the row lock and the balance check is
// evaluated against the committed value.
func (s *AccountStore) Debit(ctx context.Context, id int, amount decimal.Decimal) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("debiting account %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("debiting account %d: %w", id, err)
	}
	if rows > 0 {
		return nil
	}

	// Nothing updated: either the account is unknown or the guard refused
	// the decrement.
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return &domain.InsufficientBalanceError{
		AccountName: a.Name,
		Balance:     a.Balance,
		Requested:   amount,
	}
}

// List implements the domain.AccountStore interface
func (s *AccountStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, balance, created_at FROM accounts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}
	return accounts, nil
}

// CreateMany implements the domain.AccountStore interface
func (s *AccountStore) CreateMany(ctx context.Context, accounts []domain.Account) ([]domain.Account, error) {
	created := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		err := s.q.QueryRowContext(ctx,
			`INSERT INTO accounts (name, balance) VALUES ($1, $2)
			 RETURNING id, name, balance, created_at`,
			a.Name, a.Balance,
		).Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting account %q: %w", a.Name, err)
		}
		created = append(created, a)
	}
	return created, nil
}
