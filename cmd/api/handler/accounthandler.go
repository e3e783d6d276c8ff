package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/bank"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/web"
)

type Holder struct {
	Name  string `json:"name"`
	TaxID string `json:"taxId"`
}

type AccountResponse struct {
	account.Summary
	Holder Holder `json:"holder"`
}

type OperationResult struct {
	AccountID string          `json:"accountId"`
	Operation bank.Operation  `json:"operation"`
	Entry     account.Entry   `json:"entry"`
	Balance   decimal.Decimal `json:"balance"`
}

func (a *Application) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var payload AccCreationRequest
	if msg, ok := a.decode(r, &payload); !ok {
		web.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	initial := valueOr(payload.InitialBalance, decimal.Zero)

	var (
		acc *account.Account
		err error
	)
	switch account.Kind(payload.Kind) {
	case account.Checking:
		acc, err = a.Bank.OpenChecking(payload.TaxID, valueOr(payload.OverdraftLimit, a.opts.DefaultOverdraftLimit), initial)
	case account.Savings:
		acc, err = a.Bank.OpenSavings(payload.TaxID, valueOr(payload.InterestRate, a.opts.DefaultInterestRate), initial)
	default:
		web.RespondError(w, http.StatusBadRequest, "kind must be one of: checking, savings")
		return
	}
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	c, err := a.Bank.FindClient(payload.TaxID)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	a.Metrics.AccountOpened(acc.Kind())
	web.Respond(w, http.StatusCreated, AccountResponse{
		Summary: acc.Summary(),
		Holder:  Holder{Name: c.Name, TaxID: c.TaxID},
	})
}

func (a *Application) GetAccountByID(w http.ResponseWriter, r *http.Request) {
	acc, err := a.Bank.FindAccount(accountID(r))
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	web.Respond(w, http.StatusOK, acc.Summary())
}

func (a *Application) Deposit(w http.ResponseWriter, r *http.Request) {
	var payload BalanceOperationRequest
	if msg, ok := a.decode(r, &payload); !ok {
		web.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	a.apply(w, accountID(r), bank.OpDeposit, *payload.Amount)
}

func (a *Application) Withdraw(w http.ResponseWriter, r *http.Request) {
	var payload BalanceOperationRequest
	if msg, ok := a.decode(r, &payload); !ok {
		web.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	a.apply(w, accountID(r), bank.OpWithdraw, *payload.Amount)
}

func (a *Application) AccrueInterest(w http.ResponseWriter, r *http.Request) {
	a.apply(w, accountID(r), bank.OpInterest, decimal.Zero)
}

func (a *Application) Statement(w http.ResponseWriter, r *http.Request) {
	a.statement(w, accountID(r))
}

// Operate dispatches a named operation on an account, the way a teller
// terminal submits them.
func (a *Application) Operate(w http.ResponseWriter, r *http.Request) {
	var payload OperationRequest
	if msg, ok := a.decode(r, &payload); !ok {
		web.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	op, err := bank.ParseOperation(payload.Operation)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	switch op {
	case bank.OpStatement:
		a.statement(w, payload.AccountID)
	case bank.OpInterest:
		a.apply(w, payload.AccountID, op, decimal.Zero)
	default:
		if payload.Amount == nil {
			web.RespondError(w, http.StatusBadRequest, "amount is a required field")
			return
		}
		a.apply(w, payload.AccountID, op, *payload.Amount)
	}
}

func (a *Application) apply(w http.ResponseWriter, id string, op bank.Operation, amount decimal.Decimal) {
	var (
		e   account.Entry
		err error
	)

	switch op {
	case bank.OpDeposit:
		e, err = a.Bank.Deposit(id, amount)
	case bank.OpWithdraw:
		e, err = a.Bank.Withdraw(id, amount)
	case bank.OpInterest:
		e, err = a.Bank.AccrueInterest(id)
	}
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	web.Respond(w, http.StatusOK, OperationResult{
		AccountID: id,
		Operation: op,
		Entry:     e,
		Balance:   e.Balance,
	})
}

func (a *Application) statement(w http.ResponseWriter, id string) {
	st, err := a.Bank.Statement(id)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	web.Respond(w, http.StatusOK, st)
}

func accountID(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("id")
}
