package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danisetya/transfer-service/internal/domain"
)

// TransferService executes transfers against the configured stores. The
// dependency graph (stores, unit of work, notifier) is composed once at
// startup and passed in explicitly.
type TransferService struct {
	accounts  domain.AccountStore
	ledger    domain.LedgerStore
	transfers domain.TransferLog
	uow       domain.UnitOfWork
	notifier  domain.Notifier
	logger    *zap.Logger
}

// NewTransferService creates a new TransferService. notifier may be nil
// when no change feed is wired.
func NewTransferService(
	accounts domain.AccountStore,
	ledger domain.LedgerStore,
	transfers domain.TransferLog,
	uow domain.UnitOfWork,
	notifier domain.Notifier,
	logger *zap.Logger,
) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		accounts:  accounts,
		ledger:    ledger,
		transfers: transfers,
		uow:       uow,
		notifier:  notifier,
		logger:    logger,
	}
}

// ProcessTransfer executes exactly one transfer with all-or-nothing effect:
// validate, debit the account, credit the ledger, and append the log record
// inside a single unit of work. On success it returns the stored record and
// the outbound change events for the caller to dispatch; on failure no
// mutation remains visible and the original error is returned unchanged.
func (s *TransferService) ProcessTransfer(ctx context.Context, req domain.TransferRequest) (domain.TransferRecord, []domain.Event, error) {
	if !req.Amount.IsPositive() {
		return domain.TransferRecord{}, nil, domain.ErrInvalidAmount
	}

	account, err := s.accounts.Get(ctx, req.AccountID)
	if err != nil {
		return domain.TransferRecord{}, nil, err
	}

	// Pre-check for the structured shortfall diagnostic. The store-level
	// Debit re-validates atomically, which is what holds under concurrency.
	if account.Balance.LessThan(req.Amount) {
		return domain.TransferRecord{}, nil, &domain.InsufficientBalanceError{
			AccountName: account.Name,
			Balance:     account.Balance,
			Requested:   req.Amount,
		}
	}

	var stored domain.TransferRecord
	var ledger domain.Ledger
	err = s.uow.Run(ctx, func(ctx context.Context, scoped domain.Stores) error {
		if err := scoped.Accounts.Debit(ctx, req.AccountID, req.Amount); err != nil {
			return err
		}

		ledger, err = scoped.Ledger.Credit(ctx, req.Amount)
		if err != nil {
			return err
		}

		now := time.Now()
		stored, err = scoped.Transfers.Append(ctx, domain.TransferRecord{
			AccountID:   req.AccountID,
			LedgerID:    ledger.ID,
			Amount:      req.Amount,
			Status:      domain.StatusCompleted,
			CompletedAt: &now,
		})
		return err
	})
	if err != nil {
		return domain.TransferRecord{}, nil, err
	}

	return stored, s.settledEvents(ctx, stored, ledger), nil
}

// settledEvents builds the outbound event list for one committed transfer
func (s *TransferService) settledEvents(ctx context.Context, record domain.TransferRecord, ledger domain.Ledger) []domain.Event {
	now := time.Now()
	events := []domain.Event{
		{
			Type: domain.EventBankBalance,
			Data: domain.BankBalanceData{
				Balance:   ledger.Balance,
				Timestamp: ledger.UpdatedAt,
			},
			Timestamp: now,
		},
		{
			Type:      domain.EventTransaction,
			Data:      record,
			Timestamp: now,
		},
	}

	// The account snapshot is a read-only convenience; skip the event if
	// the lookup fails rather than fail a committed transfer.
	account, err := s.accounts.Get(ctx, record.AccountID)
	if err != nil {
		s.logger.Warn("skipping account_update event",
			zap.Int("accountId", record.AccountID), zap.Error(err))
		return events
	}
	events = append(events, domain.Event{
		Type: domain.EventAccountUpdate,
		Data: domain.AccountUpdateData{
			ID:      account.ID,
			Name:    account.Name,
			Balance: account.Balance,
		},
		Timestamp: now,
	})
	return events
}

// ProcessBatch runs each request in input order through ProcessTransfer,
// converting every error into a failed item instead of aborting the batch.
// Events of settled transfers are dispatched fire-and-forget after each
// commit.
func (s *TransferService) ProcessBatch(ctx context.Context, requests []domain.TransferRequest) domain.BatchOutcome {
	start := time.Now()

	outcome := domain.BatchOutcome{
		Total:   len(requests),
		Details: make([]domain.ItemResult, 0, len(requests)),
	}

	for i, req := range requests {
		record, events, err := s.ProcessTransfer(ctx, req)
		if err != nil {
			outcome.Failed++
			outcome.Details = append(outcome.Details, domain.ItemResult{
				Index:  i,
				Status: domain.StatusFailed,
				Error:  err.Error(),
			})
			logFn := s.logger.Error
			if domain.IsBusinessError(err) {
				logFn = s.logger.Warn
			}
			logFn("transfer failed",
				zap.Int("index", i),
				zap.Int("accountId", req.AccountID),
				zap.String("amount", req.Amount.StringFixed(2)),
				zap.Error(err))
			continue
		}

		outcome.Completed++
		outcome.Details = append(outcome.Details, domain.ItemResult{
			Index:  i,
			Status: domain.StatusCompleted,
			Record: &record,
		})
		s.dispatch(events)
	}

	outcome.ProcessingTime = time.Since(start).Round(time.Millisecond).Milliseconds()
	return outcome
}

func (s *TransferService) dispatch(events []domain.Event) {
	if s.notifier == nil {
		return
	}
	for _, event := range events {
		s.notifier.Publish(event)
	}
}
