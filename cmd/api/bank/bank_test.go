package bank

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
)

type recorder struct {
	mu      sync.Mutex
	entries map[string][]account.Entry
}

func (r *recorder) EntryPosted(accountID string, e account.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string][]account.Entry)
	}
	r.entries[accountID] = append(r.entries[accountID], e)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newBankWithClient(t *testing.T, taxID string, observers ...Observer) *Bank {
	t.Helper()

	b := New("Test Bank", observers...)
	_, err := b.RegisterClient(gofakeit.Name(), taxID, gofakeit.Street())
	require.NoError(t, err)

	return b
}

func TestRegisterClient(t *testing.T) {
	b := New("Test Bank")

	c, err := b.RegisterClient("Ana", "111", "X")

	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "111", c.TaxID)
	assert.Equal(t, "X", c.Address)
	assert.Empty(t, c.AccountIDs)
}

func TestRegisterClientDuplicate(t *testing.T) {
	b := New("Test Bank")
	_, err := b.RegisterClient("Ana", "111", "X")
	require.NoError(t, err)

	_, err = b.RegisterClient("Bia", "111", "Y")

	assert.Equal(t, ErrDuplicateClient, errors.Cause(err))

	c, err := b.FindClient("111")
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, "X", c.Address)
}

func TestFindClientNotFound(t *testing.T) {
	b := New("Test Bank")

	_, err := b.FindClient("nobody")

	assert.Equal(t, ErrClientNotFound, errors.Cause(err))
}

func TestOpenAccountUnknownClient(t *testing.T) {
	b := New("Test Bank")

	acc, err := b.OpenChecking("nobody", d("1000"), decimal.Zero)
	assert.Nil(t, acc)
	assert.Equal(t, ErrClientNotFound, errors.Cause(err))

	acc, err = b.OpenSavings("nobody", d("0.005"), decimal.Zero)
	assert.Nil(t, acc)
	assert.Equal(t, ErrClientNotFound, errors.Cause(err))
}

func TestOpenAccountValidatesInitialBalance(t *testing.T) {
	b := newBankWithClient(t, "111")

	_, err := b.OpenChecking("111", d("100"), d("-100.5"))
	assert.Equal(t, account.ErrInitialBalance, errors.Cause(err))

	_, err = b.OpenSavings("111", d("0.01"), d("-1"))
	assert.Equal(t, account.ErrInitialBalance, errors.Cause(err))

	_, err = b.OpenSavings("111", d("-0.01"), decimal.Zero)
	assert.Equal(t, account.ErrNegativeRate, errors.Cause(err))

	accounts, err := b.ListAccounts("111")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestOpenAccountAttachesToClient(t *testing.T) {
	b := newBankWithClient(t, "111")

	acc, err := b.OpenChecking("111", d("1000"), d("-1000"))
	require.NoError(t, err)

	_, err = uuid.Parse(acc.ID())
	assert.NoError(t, err)

	found, err := b.FindAccount(acc.ID())
	require.NoError(t, err)
	assert.Same(t, acc, found)

	c, err := b.FindClient("111")
	require.NoError(t, err)
	assert.Equal(t, []string{acc.ID()}, c.AccountIDs)
}

func TestFindAccountNotFound(t *testing.T) {
	b := New("Test Bank")

	acc, err := b.FindAccount("missing")

	assert.Nil(t, acc)
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))
}

func TestListAccountsInCreationOrder(t *testing.T) {
	b := newBankWithClient(t, "111")

	first, err := b.OpenSavings("111", d("0.01"), d("5"))
	require.NoError(t, err)
	second, err := b.OpenChecking("111", d("1000"), d("90000"))
	require.NoError(t, err)

	accounts, err := b.ListAccounts("111")

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, first.ID(), accounts[0].ID())
	assert.Equal(t, second.ID(), accounts[1].ID())
}

func TestListAccountsUnknownClient(t *testing.T) {
	b := New("Test Bank")

	_, err := b.ListAccounts("nobody")

	assert.Equal(t, ErrClientNotFound, errors.Cause(err))
}

func TestCheckingOverdraftScenario(t *testing.T) {
	rec := &recorder{}
	b := New("Test Bank", rec)
	_, err := b.RegisterClient("Ana", "111", "X")
	require.NoError(t, err)

	acc, err := b.OpenChecking("111", d("1000"), decimal.Zero)
	require.NoError(t, err)

	e, err := b.Deposit(acc.ID(), d("500"))
	require.NoError(t, err)
	assert.True(t, d("500").Equal(e.Balance))

	_, err = b.Withdraw(acc.ID(), d("1500.01"))
	re, ok := errors.Cause(err).(*RejectedError)
	require.True(t, ok)
	assert.Equal(t, OpWithdraw, re.Operation)
	assert.Equal(t, "insufficient funds", re.Reason)
	assert.True(t, d("500").Equal(acc.Balance()))

	e, err = b.Withdraw(acc.ID(), d("1500"))
	require.NoError(t, err)
	assert.True(t, d("-1000").Equal(e.Balance))

	_, err = b.Withdraw(acc.ID(), d("1"))
	assert.IsType(t, &RejectedError{}, err)
	assert.True(t, d("-1000").Equal(acc.Balance()))

	assert.Len(t, rec.entries[acc.ID()], 2)
}

func TestSavingsInterestScenario(t *testing.T) {
	rec := &recorder{}
	b := newBankWithClient(t, "111", rec)

	acc, err := b.OpenSavings("111", d("0.01"), d("1000"))
	require.NoError(t, err)

	e, err := b.AccrueInterest(acc.ID())

	require.NoError(t, err)
	assert.Equal(t, account.KindInterest, e.Kind)
	assert.True(t, d("10").Equal(e.Amount))

	st, err := b.Statement(acc.ID())
	require.NoError(t, err)
	assert.True(t, d("1010").Equal(st.Balance))
	require.Len(t, st.Entries, 1)
	assert.Equal(t, rec.entries[acc.ID()], st.Entries)
}

func TestAccrueInterestOnChecking(t *testing.T) {
	b := newBankWithClient(t, "111")
	acc, _ := b.OpenChecking("111", d("1000"), d("1000"))

	_, err := b.AccrueInterest(acc.ID())

	re, ok := err.(*RejectedError)
	require.True(t, ok)
	assert.Equal(t, OpInterest, re.Operation)
}

func TestRejectedDepositNotObserved(t *testing.T) {
	rec := &recorder{}
	b := newBankWithClient(t, "111", rec)
	acc, _ := b.OpenChecking("111", d("1000"), decimal.Zero)

	_, err := b.Deposit(acc.ID(), d("0"))

	assert.IsType(t, &RejectedError{}, err)
	assert.Empty(t, rec.entries)
}

func TestOutOfRangeAmountRejected(t *testing.T) {
	rec := &recorder{}
	b := newBankWithClient(t, "111", rec)
	acc, err := b.OpenChecking("111", d("1000"), d("10"))
	require.NoError(t, err)

	_, err = b.Deposit(acc.ID(), d("1e20000000"))
	re, ok := errors.Cause(err).(*RejectedError)
	require.True(t, ok)
	assert.Equal(t, reasonOutOfRange, re.Reason)

	_, err = b.Withdraw(acc.ID(), d("0.000000001"))
	re, ok = errors.Cause(err).(*RejectedError)
	require.True(t, ok)
	assert.Equal(t, reasonOutOfRange, re.Reason)

	assert.True(t, d("10").Equal(acc.Balance()))
	assert.Empty(t, rec.entries[acc.ID()])
}

func TestOperationsOnMissingAccount(t *testing.T) {
	b := New("Test Bank")

	_, err := b.Deposit("missing", d("1"))
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))

	_, err = b.Withdraw("missing", d("1"))
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))

	_, err = b.AccrueInterest("missing")
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))

	_, err = b.Statement("missing")
	assert.Equal(t, ErrAccountNotFound, errors.Cause(err))
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation(" Deposit ")
	require.NoError(t, err)
	assert.Equal(t, OpDeposit, op)

	_, err = ParseOperation("transfer")
	assert.Equal(t, ErrInvalidOperation, errors.Cause(err))
}

func TestConcurrentDeposits(t *testing.T) {
	b := newBankWithClient(t, "111")
	acc, _ := b.OpenSavings("111", decimal.Zero, decimal.Zero)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Deposit(acc.ID(), d("1.01"))
		}()
	}
	wg.Wait()

	st, err := b.Statement(acc.ID())
	require.NoError(t, err)
	assert.Len(t, st.Entries, 50)
	assert.True(t, d("50.5").Equal(st.Balance))
}

func TestConcurrentRegistrations(t *testing.T) {
	b := New("Test Bank")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			taxID := fmt.Sprintf("%03d", i)
			if _, err := b.RegisterClient("client "+taxID, taxID, "street "+taxID); err != nil {
				t.Errorf("register %s: %v", taxID, err)
				return
			}
			if _, err := b.OpenChecking(taxID, d("100"), decimal.Zero); err != nil {
				t.Errorf("open checking for %s: %v", taxID, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		accounts, err := b.ListAccounts(fmt.Sprintf("%03d", i))
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	}
}
