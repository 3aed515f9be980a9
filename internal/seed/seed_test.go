package seed_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danisetya/transfer-service/internal/seed"
	"github.com/danisetya/transfer-service/internal/store/memory"
)

func TestSeederPopulatesFreshStore(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	seeder := seed.NewSeeder(store.Accounts(), store.Ledger(), nil)
	require.NoError(t, seeder.Run(ctx))

	accounts, err := store.Accounts().List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 8)
	for _, a := range accounts {
		assert.NotZero(t, a.ID)
		assert.NotEmpty(t, a.Name)
		assert.True(t, a.Balance.IsPositive())
	}

	balance, err := store.Ledger().GetBalance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.New(1_000_000, 0)))
}

func TestSeederIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	seeder := seed.NewSeeder(store.Accounts(), store.Ledger(), nil)
	require.NoError(t, seeder.Run(ctx))
	require.NoError(t, seeder.Run(ctx))

	accounts, err := store.Accounts().List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 8, "second run must not duplicate accounts")
}
