package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
)

// maxBodyBytes caps a request body. Larger bodies fail to parse.
const maxBodyBytes = 1 << 20

type ClientCreationRequest struct {
	Name    string `json:"name" validate:"required"`
	TaxID   string `json:"taxId" validate:"required"`
	Address string `json:"address" validate:"required"`
}

type AccCreationRequest struct {
	TaxID          string           `json:"taxId" validate:"required"`
	Kind           string           `json:"kind" validate:"required,oneof=checking savings"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
	OverdraftLimit *decimal.Decimal `json:"overdraftLimit"`
	InterestRate   *decimal.Decimal `json:"interestRate"`
}

type BalanceOperationRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type OperationRequest struct {
	AccountID string           `json:"accountId" validate:"required"`
	Operation string           `json:"operation" validate:"required"`
	Amount    *decimal.Decimal `json:"amount"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(amountsInRange, AccCreationRequest{}, BalanceOperationRequest{}, OperationRequest{})

	return v
}

// amountsInRange reports every decimal field outside account.InRange under the
// amount tag. Nil fields are left to the required rule.
func amountsInRange(sl validator.StructLevel) {
	check := func(d *decimal.Decimal, field, structField string) {
		if d != nil && !account.InRange(*d) {
			sl.ReportError(d, field, structField, "amount", "")
		}
	}

	switch req := sl.Current().Interface().(type) {
	case AccCreationRequest:
		check(req.InitialBalance, "initialBalance", "InitialBalance")
		check(req.OverdraftLimit, "overdraftLimit", "OverdraftLimit")
		check(req.InterestRate, "interestRate", "InterestRate")
	case BalanceOperationRequest:
		check(req.Amount, "amount", "Amount")
	case OperationRequest:
		check(req.Amount, "amount", "Amount")
	}
}

// decode reads a JSON body into dst and validates it. The returned message is
// safe to show to the caller.
func (a *Application) decode(r *http.Request, dst interface{}) (string, bool) {
	defer r.Body.Close()

	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return "invalid request payload, unable to parse", false
	}

	if err := a.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationMessage(verrs[0]), false
		}
		return "invalid request payload", false
	}

	return "", true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "amount":
		return fmt.Sprintf("%s must be below %s with at most %d decimal places", fe.Field(), account.MaxAmount, account.MaxScale)
	default:
		return fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag())
	}
}

func valueOr(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}
