package cache

import (
	"context"
	"testing"

	"github.com/go-redis/cache/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
)

type view struct {
	Balance string
	Display string
}

func TestLocalCacheRoundTrip(t *testing.T) {
	r := NewLocal()
	ctx := context.Background()

	err := r.Balances.Set(&cache.Item{
		Ctx:   ctx,
		Key:   BalanceKey("acc-1"),
		Value: view{Balance: "10.5", Display: "R$10,50"},
		TTL:   BalanceTTL,
	})
	require.NoError(t, err)

	var got view
	require.NoError(t, r.Balances.Get(ctx, BalanceKey("acc-1"), &got))
	assert.Equal(t, "10.5", got.Balance)
	assert.Equal(t, "R$10,50", got.Display)
}

func TestLocalCacheMiss(t *testing.T) {
	r := NewLocal()

	var got view
	err := r.Balances.Get(context.Background(), BalanceKey("missing"), &got)

	assert.Equal(t, cache.ErrCacheMiss, err)
}

func TestEntryPostedEvictsBalance(t *testing.T) {
	r := NewLocal()
	ctx := context.Background()

	require.NoError(t, r.Balances.Set(&cache.Item{Ctx: ctx, Key: BalanceKey("acc-1"), Value: view{Balance: "1"}}))
	require.NoError(t, r.Balances.Set(&cache.Item{Ctx: ctx, Key: BalanceKey("acc-2"), Value: view{Balance: "2"}}))

	r.EntryPosted("acc-1", account.Entry{Kind: account.KindDeposit})

	var got view
	assert.Equal(t, cache.ErrCacheMiss, r.Balances.Get(ctx, BalanceKey("acc-1"), &got))
	assert.NoError(t, r.Balances.Get(ctx, BalanceKey("acc-2"), &got))
	assert.Equal(t, "2", got.Balance)
}

func TestCloseLocal(t *testing.T) {
	assert.NoError(t, NewLocal().Close())
}
