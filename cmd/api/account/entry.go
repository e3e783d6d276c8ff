package account

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	KindDeposit    EntryKind = "deposit"
	KindWithdrawal EntryKind = "withdrawal"
	KindInterest   EntryKind = "interest"
)

// Entry is one balance change. Amount is signed: withdrawals are negative.
// Balance is the account balance right after the entry was applied.
type Entry struct {
	Kind      EntryKind       `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Balance   decimal.Decimal `json:"balance"`
}
