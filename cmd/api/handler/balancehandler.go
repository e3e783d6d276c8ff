package handler

import (
	"net/http"

	"github.com/Rhymond/go-money"
	"github.com/go-redis/cache/v8"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	c "github.com/tamasbrandstadter/bank-ledger-api/internal/cache"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/web"
)

type BalanceView struct {
	AccountID string `json:"id"`
	Balance   string `json:"balance"`
	Display   string `json:"display"`
}

func (a *Application) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	key := c.BalanceKey(id)
	ctx := r.Context()

	// get balance from cache
	var view BalanceView
	if err := a.Cache.Balances.Get(ctx, key, &view); err == nil {
		web.Respond(w, http.StatusOK, view)
		return
	} else if err != cache.ErrCacheMiss {
		log.WithError(err).Warnf("failed to get balance from cache for account id %s", id)
	}

	// not in cache, read the account
	acc, err := a.Bank.FindAccount(id)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	balance := acc.Balance()
	view = BalanceView{
		AccountID: id,
		Balance:   balance.String(),
		Display:   Display(balance, a.opts.Currency),
	}

	err = a.Cache.Balances.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: view,
		TTL:   c.BalanceTTL,
	})
	if err != nil {
		log.WithError(err).Warnf("failed to cache balance for account id %s", id)
	} else if !acc.Balance().Equal(balance) {
		// an entry was posted while the view was built
		_ = a.Cache.Balances.Delete(ctx, key)
	}

	web.Respond(w, http.StatusOK, view)
}

// Display formats an amount in the currency's minor units, rounding half away
// from zero. Amounts whose minor units overflow int64 are shown as the exact
// decimal instead.
func Display(amount decimal.Decimal, currency string) string {
	fraction := 2
	if cur := money.GetCurrency(currency); cur != nil {
		fraction = cur.Fraction
	}

	minor := amount.Shift(int32(fraction)).Round(0)
	if !minor.BigInt().IsInt64() {
		return amount.String()
	}

	return money.New(minor.IntPart(), currency).Display()
}
