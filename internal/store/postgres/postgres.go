// Package postgres implements the account, ledger, and transfer stores on
// PostgreSQL via database/sql with the pgx stdlib driver. Balance arithmetic
// runs as single-statement conditional UPDATEs, so each store operation is
// atomic at the row level and the unit of work only needs to group them.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
)

// querier abstracts *sql.DB and *sql.Tx so store methods work both
// standalone and inside a unit of work
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to Postgres with the given URL and verifies the connection
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// Initialize creates the accounts, bank, and transfers tables if they do
// not exist yet
func Initialize(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			balance DECIMAL(12, 2) NOT NULL CHECK (balance >= 0),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bank (
			id INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			balance DECIMAL(14, 2) NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS transfers (
			id SERIAL PRIMARY KEY,
			account_id INT NOT NULL REFERENCES accounts (id),
			bank_id INT NOT NULL REFERENCES bank (id),
			amount DECIMAL(12, 2) NOT NULL,
			status VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
