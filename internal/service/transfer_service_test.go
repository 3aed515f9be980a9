package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisetya/transfer-service/internal/domain"
	"github.com/danisetya/transfer-service/internal/service"
	"github.com/danisetya/transfer-service/internal/store/memory"
)

// recordingNotifier captures published events for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Publish(event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) captured() []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.Event, len(n.events))
	copy(out, n.events)
	return out
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	svc      *service.TransferService
}

func newFixture(t *testing.T, accounts ...domain.Account) *fixture {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()

	if len(accounts) > 0 {
		_, err := store.Accounts().CreateMany(ctx, accounts)
		require.NoError(t, err)
	}
	_, err := store.Ledger().GetOrCreate(ctx)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := service.NewTransferService(
		store.Accounts(), store.Ledger(), store.Transfers(),
		memory.NewUnitOfWork(store), notifier, nil,
	)
	return &fixture{store: store, notifier: notifier, svc: svc}
}

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestProcessTransferCompletes(t *testing.T) {
	fx := newFixture(t, domain.Account{Name: "Alice", Balance: amount("100.00")})
	ctx := context.Background()

	ledgerBefore, err := fx.store.Ledger().GetBalance(ctx)
	require.NoError(t, err)

	record, events, err := fx.svc.ProcessTransfer(ctx, domain.TransferRequest{
		AccountID: 1,
		Amount:    amount("30.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, record.Status)
	assert.Equal(t, 1, record.AccountID)
	assert.Equal(t, domain.LedgerID, record.LedgerID)
	assert.True(t, record.Amount.Equal(amount("30.00")))
	assert.NotZero(t, record.ID)
	require.NotNil(t, record.CompletedAt)

	balance, err := fx.store.Accounts().GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(amount("70.00")), "account balance = %s", balance)

	ledgerAfter, err := fx.store.Ledger().GetBalance(ctx)
	require.NoError(t, err)
	assert.True(t, ledgerAfter.Sub(ledgerBefore).Equal(amount("30.00")))

	records, err := fx.store.Transfers().Recent(ctx, 10, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)

	// bank_balance, transaction, and account_update events are produced
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventBankBalance, events[0].Type)
	assert.Equal(t, domain.EventTransaction, events[1].Type)
	assert.Equal(t, domain.EventAccountUpdate, events[2].Type)
}

func TestProcessTransferInsufficientBalance(t *testing.T) {
	fx := newFixture(t, domain.Account{Name: "Bob", Balance: amount("10.00")})
	ctx := context.Background()

	ledgerBefore, err := fx.store.Ledger().GetBalance(ctx)
	require.NoError(t, err)

	_, _, err = fx.svc.ProcessTransfer(ctx, domain.TransferRequest{
		AccountID: 1,
		Amount:    amount("50.00"),
	})

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Bob", insufficient.AccountName)
	assert.True(t, insufficient.Shortfall().Equal(amount("40.00")))

	// No mutation occurred
	balance, err := fx.store.Accounts().GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(amount("10.00")))

	ledgerAfter, err := fx.store.Ledger().GetBalance(ctx)
	require.NoError(t, err)
	assert.True(t, ledgerAfter.Equal(ledgerBefore))

	records, err := fx.store.Transfers().Recent(ctx, 10, false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessTransferUnknownAccount(t *testing.T) {
	fx := newFixture(t)

	_, _, err := fx.svc.ProcessTransfer(context.Background(), domain.TransferRequest{
		AccountID: 999,
		Amount:    amount("5.00"),
	})

	var notFound *domain.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 999, notFound.ID)
	assert.EqualError(t, err, "account 999 not found")
}

func TestProcessTransferInvalidAmount(t *testing.T) {
	fx := newFixture(t, domain.Account{Name: "Alice", Balance: amount("100.00")})

	for _, raw := range []string{"0", "-1.00"} {
		_, _, err := fx.svc.ProcessTransfer(context.Background(), domain.TransferRequest{
			AccountID: 1,
			Amount:    amount(raw),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %s", raw)
	}
}

// appendFailLog makes the log append blow up inside the unit of work
type appendFailLog struct {
	domain.TransferLog
}

func (appendFailLog) Append(ctx context.Context, record domain.TransferRecord) (domain.TransferRecord, error) {
	return domain.TransferRecord{}, errors.New("log backend unavailable")
}

// appendFailUnitOfWork wraps a real unit of work and swaps in the failing log
type appendFailUnitOfWork struct {
	inner domain.UnitOfWork
}

func (u appendFailUnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, s domain.Stores) error) error {
	return u.inner.Run(ctx, func(ctx context.Context, s domain.Stores) error {
		s.Transfers = appendFailLog{s.Transfers}
		return fn(ctx, s)
	})
}

func TestProcessTransferRollsBackOnAppendFailure(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Accounts().CreateMany(ctx, []domain.Account{{Name: "Alice", Balance: amount("100.00")}})
	require.NoError(t, err)
	ledgerBefore, err := store.Ledger().GetBalance(ctx)
	require.NoError(t, err)

	svc := service.NewTransferService(
		store.Accounts(), store.Ledger(), store.Transfers(),
		appendFailUnitOfWork{inner: memory.NewUnitOfWork(store)}, nil, nil,
	)

	_, _, err = svc.ProcessTransfer(ctx, domain.TransferRequest{AccountID: 1, Amount: amount("30.00")})
	require.EqualError(t, err, "log backend unavailable")

	// Debit and credit were rolled back, no record appended
	balance, err := store.Accounts().GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(amount("100.00")))

	ledgerAfter, err := store.Ledger().GetBalance(ctx)
	require.NoError(t, err)
	assert.True(t, ledgerAfter.Equal(ledgerBefore))

	records, err := store.Transfers().Recent(ctx, 10, false)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessBatchMixedOutcome(t *testing.T) {
	fx := newFixture(t,
		domain.Account{Name: "Alice", Balance: amount("100.00")},
		domain.Account{Name: "Bob", Balance: amount("10.00")},
	)

	outcome := fx.svc.ProcessBatch(context.Background(), []domain.TransferRequest{
		{AccountID: 1, Amount: amount("30.00")},
		{AccountID: 999, Amount: amount("5.00")},
		{AccountID: 2, Amount: amount("10.00")},
	})

	assert.Equal(t, 3, outcome.Total)
	assert.Equal(t, 2, outcome.Completed)
	assert.Equal(t, 1, outcome.Failed)
	require.Len(t, outcome.Details, 3)

	for i, detail := range outcome.Details {
		assert.Equal(t, i, detail.Index)
	}

	assert.Equal(t, domain.StatusCompleted, outcome.Details[0].Status)
	require.NotNil(t, outcome.Details[0].Record)

	assert.Equal(t, domain.StatusFailed, outcome.Details[1].Status)
	assert.Nil(t, outcome.Details[1].Record)
	assert.Equal(t, "account 999 not found", outcome.Details[1].Error)

	// Item 2 settled independently of item 1's failure
	assert.Equal(t, domain.StatusCompleted, outcome.Details[2].Status)
}

func TestProcessBatchEmpty(t *testing.T) {
	fx := newFixture(t)

	outcome := fx.svc.ProcessBatch(context.Background(), nil)

	assert.Equal(t, 0, outcome.Total)
	assert.Equal(t, 0, outcome.Completed)
	assert.Equal(t, 0, outcome.Failed)
	assert.Empty(t, outcome.Details)
	assert.Empty(t, fx.notifier.captured())
}

func TestProcessBatchConservation(t *testing.T) {
	fx := newFixture(t,
		domain.Account{Name: "Alice", Balance: amount("500.00")},
		domain.Account{Name: "Bob", Balance: amount("200.00")},
	)
	ctx := context.Background()

	ledgerBefore, err := fx.store.Ledger().GetBalance(ctx)
	require.NoError(t, err)

	outcome := fx.svc.ProcessBatch(ctx, []domain.TransferRequest{
		{AccountID: 1, Amount: amount("120.50")},
		{AccountID: 2, Amount: amount("60.25")},
		{AccountID: 1, Amount: amount("999.99")}, // fails, must not count
		{AccountID: 2, Amount: amount("10.00")},
	})
	assert.Equal(t, 3, outcome.Completed)
	assert.Equal(t, 1, outcome.Failed)

	// Ledger balance equals its initial value plus the sum of completed
	// amounts
	records, err := fx.store.Transfers().Recent(ctx, 100, false)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, record := range records {
		require.Equal(t, domain.StatusCompleted, record.Status)
		sum = sum.Add(record.Amount)
	}
	assert.True(t, sum.Equal(amount("190.75")))

	ledgerAfter, err := fx.store.Ledger().GetBalance(ctx)
	require.NoError(t, err)
	assert.True(t, ledgerAfter.Equal(ledgerBefore.Add(sum)))
}

func TestProcessBatchPublishesEvents(t *testing.T) {
	fx := newFixture(t, domain.Account{Name: "Alice", Balance: amount("100.00")})

	fx.svc.ProcessBatch(context.Background(), []domain.TransferRequest{
		{AccountID: 1, Amount: amount("25.00")},
		{AccountID: 1, Amount: amount("999.00")}, // fails, emits nothing
	})

	events := fx.notifier.captured()
	require.Len(t, events, 3)

	balanceData, ok := events[0].Data.(domain.BankBalanceData)
	require.True(t, ok)
	assert.True(t, balanceData.Balance.Equal(amount("1000025.00")))

	accountData, ok := events[2].Data.(domain.AccountUpdateData)
	require.True(t, ok)
	assert.Equal(t, "Alice", accountData.Name)
	assert.True(t, accountData.Balance.Equal(amount("75.00")))
}

func TestConcurrentBatchesNoOverdraft(t *testing.T) {
	fx := newFixture(t, domain.Account{Name: "Contended", Balance: amount("50.00")})
	ctx := context.Background()

	const batches = 100
	results := make(chan domain.BatchOutcome, batches)

	var wg sync.WaitGroup
	for i := 0; i < batches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- fx.svc.ProcessBatch(ctx, []domain.TransferRequest{
				{AccountID: 1, Amount: amount("1.00")},
			})
		}()
	}
	wg.Wait()
	close(results)

	completed, failed := 0, 0
	for outcome := range results {
		completed += outcome.Completed
		failed += outcome.Failed
		for _, detail := range outcome.Details {
			if detail.Status == domain.StatusFailed {
				assert.Contains(t, detail.Error, "insufficient balance")
			}
		}
	}
	assert.Equal(t, 50, completed)
	assert.Equal(t, 50, failed)

	balance, err := fx.store.Accounts().GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "final balance = %s", balance)

	records, err := fx.store.Transfers().Recent(ctx, batches, false)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}
