package handler

import (
	"net/http"

	"github.com/tamasbrandstadter/bank-ledger-api/internal/web"
)

func (a *Application) Health(w http.ResponseWriter, _ *http.Request) {
	web.Respond(w, http.StatusOK, map[string]string{
		"status": "ok",
		"bank":   a.Bank.Name(),
	})
}
