package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/bank"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/web"
)

func (a *Application) respondBankError(w http.ResponseWriter, err error) {
	cause := errors.Cause(err)

	switch cause {
	case bank.ErrClientNotFound, bank.ErrAccountNotFound:
		web.RespondError(w, http.StatusNotFound, err.Error())
		return
	case bank.ErrDuplicateClient:
		web.RespondError(w, http.StatusConflict, err.Error())
		return
	case bank.ErrInvalidOperation, account.ErrInitialBalance, account.ErrNegativeOverdraft, account.ErrNegativeRate, account.ErrOutOfRange:
		web.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if re, ok := cause.(*bank.RejectedError); ok {
		a.Metrics.OperationRejected(string(re.Operation))
		web.RespondError(w, http.StatusBadRequest, re.Error())
		return
	}

	web.RespondError(w, http.StatusInternalServerError, err.Error())
}
