package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/bank"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/cache"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	clients            = "/clients"
	clientByTaxID      = "/clients/:taxId"
	clientAccounts     = "/clients/:taxId/accounts"
	accounts           = "/accounts"
	accountByID        = "/accounts/:id"
	balanceByAccountID = "/accounts/:id/balance"
	depositByAccountID = "/accounts/:id/deposit"
	withdrawByAccount  = "/accounts/:id/withdraw"
	interestByAccount  = "/accounts/:id/interest"
	statementByAccount = "/accounts/:id/statement"
	operations         = "/operations"
	health             = "/health"
	metricsPath        = "/metrics"
)

type Options struct {
	Currency              string
	DefaultOverdraftLimit decimal.Decimal
	DefaultInterestRate   decimal.Decimal
	RateLimit             rate.Limit
	RateBurst             int
}

type Application struct {
	Bank    *bank.Bank
	Cache   *cache.Redis
	Metrics *metrics.Recorder

	opts     Options
	validate *validator.Validate
	limiter  *rate.Limiter
	handler  http.Handler
}

func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func NewApplication(b *bank.Bank, c *cache.Redis, m *metrics.Recorder, opts Options) *Application {
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Inf
	}

	app := Application{
		Bank:     b,
		Cache:    c,
		Metrics:  m,
		opts:     opts,
		validate: newValidator(),
		limiter:  rate.NewLimiter(opts.RateLimit, opts.RateBurst),
	}

	router := httprouter.New()
	router.PanicHandler = recoverPanic

	router.HandlerFunc(http.MethodPost, clients, app.RegisterClient)
	router.HandlerFunc(http.MethodGet, clientByTaxID, app.GetClient)
	router.HandlerFunc(http.MethodGet, clientAccounts, app.ListClientAccounts)

	router.HandlerFunc(http.MethodPost, accounts, app.OpenAccount)
	router.HandlerFunc(http.MethodGet, accountByID, app.GetAccountByID)
	router.HandlerFunc(http.MethodGet, balanceByAccountID, app.GetBalance)
	router.HandlerFunc(http.MethodPost, depositByAccountID, app.Deposit)
	router.HandlerFunc(http.MethodPost, withdrawByAccount, app.Withdraw)
	router.HandlerFunc(http.MethodPost, interestByAccount, app.AccrueInterest)
	router.HandlerFunc(http.MethodGet, statementByAccount, app.Statement)

	router.HandlerFunc(http.MethodPost, operations, app.Operate)

	router.HandlerFunc(http.MethodGet, health, app.Health)
	router.Handler(http.MethodGet, metricsPath, m.Handler())

	app.handler = app.accessLog(app.rateLimit(router))
	return &app
}
