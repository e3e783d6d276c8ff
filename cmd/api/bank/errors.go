package bank

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateClient  = errors.New("client already registered")
	ErrClientNotFound   = errors.New("client not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidOperation = errors.New("operation not recognized")
)

const (
	reasonNotPositive = "amount must be greater than zero"
	reasonOutOfRange  = "amount exceeds the supported scale or magnitude"
)

// RejectedError reports a deposit, withdrawal or interest accrual the account
// refused. Nothing changed on the account.
type RejectedError struct {
	Operation Operation
	AccountID string
	Amount    decimal.Decimal
	Reason    string
}

func (re *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected for account %s: %s", re.Operation, re.AccountID, re.Reason)
}
