package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/web"
)

type ClientAccounts struct {
	TaxID    string            `json:"taxId"`
	Accounts []account.Summary `json:"accounts"`
}

func (a *Application) RegisterClient(w http.ResponseWriter, r *http.Request) {
	var payload ClientCreationRequest
	if msg, ok := a.decode(r, &payload); !ok {
		web.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := a.Bank.RegisterClient(payload.Name, payload.TaxID, payload.Address)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	a.Metrics.ClientRegistered()
	web.Respond(w, http.StatusCreated, c)
}

func (a *Application) GetClient(w http.ResponseWriter, r *http.Request) {
	taxID := httprouter.ParamsFromContext(r.Context()).ByName("taxId")

	c, err := a.Bank.FindClient(taxID)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	web.Respond(w, http.StatusOK, c)
}

func (a *Application) ListClientAccounts(w http.ResponseWriter, r *http.Request) {
	taxID := httprouter.ParamsFromContext(r.Context()).ByName("taxId")

	accs, err := a.Bank.ListAccounts(taxID)
	if err != nil {
		a.respondBankError(w, err)
		return
	}

	resp := ClientAccounts{TaxID: taxID, Accounts: make([]account.Summary, 0, len(accs))}
	for _, acc := range accs {
		resp.Accounts = append(resp.Accounts, acc.Summary())
	}

	web.Respond(w, http.StatusOK, resp)
}
