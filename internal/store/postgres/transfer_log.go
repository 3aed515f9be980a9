package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danisetya/transfer-service/internal/domain"
)

// TransferLog implements domain.TransferLog on Postgres
type TransferLog struct {
	q querier
}

// NewTransferLog creates a TransferLog backed by the given database
func NewTransferLog(db *sql.DB) *TransferLog {
	return &TransferLog{q: db}
}

// Append implements the domain.TransferLog interface
func (t *TransferLog) Append(ctx context.Context, record domain.TransferRecord) (domain.TransferRecord, error) {
	err := t.q.QueryRowContext(ctx,
		`INSERT INTO transfers (account_id, bank_id, amount, status, completed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		record.AccountID, record.LedgerID, record.Amount, record.Status, record.CompletedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return domain.TransferRecord{}, fmt.Errorf("inserting transfer record: %w", err)
	}
	record.Account = nil
	record.Ledger = nil
	return record, nil
}

// Recent implements the domain.TransferLog interface
func (t *TransferLog) Recent(ctx context.Context, limit int, withRelated bool) ([]domain.TransferRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultRecentLimit
	}
	if !withRelated {
		return t.recentPlain(ctx, limit)
	}

	rows, err := t.q.QueryContext(ctx,
		`SELECT t.id, t.account_id, t.bank_id, t.amount, t.status, t.created_at, t.completed_at,
		        a.id, a.name, a.balance, a.created_at,
		        b.id, b.name, b.balance, b.updated_at
		 FROM transfers t
		 JOIN accounts a ON a.id = t.account_id
		 JOIN bank b ON b.id = t.bank_id
		 ORDER BY t.created_at DESC, t.id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent transfers: %w", err)
	}
	defer rows.Close()

	var records []domain.TransferRecord
	for rows.Next() {
		var record domain.TransferRecord
		var account domain.Account
		var ledger domain.Ledger
		var completedAt sql.NullTime
		err := rows.Scan(
			&record.ID, &record.AccountID, &record.LedgerID, &record.Amount,
			&record.Status, &record.CreatedAt, &completedAt,
			&account.ID, &account.Name, &account.Balance, &account.CreatedAt,
			&ledger.ID, &ledger.Name, &ledger.Balance, &ledger.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer row: %w", err)
		}
		if completedAt.Valid {
			record.CompletedAt = &completedAt.Time
		}
		record.Account = &account
		record.Ledger = &ledger
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfer rows: %w", err)
	}
	return records, nil
}

func (t *TransferLog) recentPlain(ctx context.Context, limit int) ([]domain.TransferRecord, error) {
	rows, err := t.q.QueryContext(ctx,
		`SELECT id, account_id, bank_id, amount, status, created_at, completed_at
		 FROM transfers
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent transfers: %w", err)
	}
	defer rows.Close()

	var records []domain.TransferRecord
	for rows.Next() {
		var record domain.TransferRecord
		var completedAt sql.NullTime
		err := rows.Scan(
			&record.ID, &record.AccountID, &record.LedgerID, &record.Amount,
			&record.Status, &record.CreatedAt, &completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer row: %w", err)
		}
		if completedAt.Valid {
			record.CompletedAt = &completedAt.Time
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfer rows: %w", err)
	}
	return records, nil
}
