package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultRecentLimit bounds transfer-history queries when the caller does
// not ask for a specific limit
const DefaultRecentLimit = 50

// AccountStore defines the interface for accessing and debiting accounts.
// Debit is the atomic overdraft guard: it subtracts the amount in a single
// atomic step and fails with InsufficientBalanceError when the decrement
// would drive the balance negative. Accounts are seeded by the bootstrap
// collaborator; the transfer path never creates them.
type AccountStore interface {
	// Get returns the account with the given id, or AccountNotFoundError
	Get(ctx context.Context, id int) (Account, error)

	// GetBalance returns the current balance of the account with the given id
	GetBalance(ctx context.Context, id int) (decimal.Decimal, error)

	// Debit atomically subtracts amount from the account's balance
	Debit(ctx context.Context, id int, amount decimal.Decimal) error

	// List returns all accounts ordered by name
	List(ctx context.Context) ([]Account, error)

	// CreateMany inserts the given accounts, used only by the seeder
	CreateMany(ctx context.Context, accounts []Account) ([]Account, error)
}

// LedgerStore defines the interface for the singleton bank ledger
type LedgerStore interface {
	// GetOrCreate returns the one ledger row, creating it with the fixed
	// starting balance if absent
	GetOrCreate(ctx context.Context) (Ledger, error)

	// Credit atomically adds amount to the ledger balance and touches its
	// timestamp, returning the updated row
	Credit(ctx context.Context, amount decimal.Decimal) (Ledger, error)

	// GetBalance returns the current ledger balance
	GetBalance(ctx context.Context) (decimal.Decimal, error)
}

// TransferLog defines the interface for the append-only record of settled
// transfers
type TransferLog interface {
	// Append stores a new immutable record, assigning its id and created
	// timestamp, and returns the stored value
	Append(ctx context.Context, record TransferRecord) (TransferRecord, error)

	// Recent returns up to limit records newest-first, optionally joined
	// with account/ledger snapshots taken at query time
	Recent(ctx context.Context, limit int, withRelated bool) ([]TransferRecord, error)
}

// Stores bundles the scoped store handles a unit of work hands to its
// function. Mutations made through these handles commit or roll back as one
// group.
type Stores struct {
	Accounts  AccountStore
	Ledger    LedgerStore
	Transfers TransferLog
}

// UnitOfWork groups a sequence of store mutations into one atomic scope
type UnitOfWork interface {
	// Run begins a scope, invokes fn with scoped store handles, commits on
	// nil return and rolls back otherwise. The scope is always released,
	// and fn's error is propagated unchanged.
	Run(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
