package account

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNegativeOverdraft = errors.New("overdraft limit can't be negative")
	ErrNegativeRate      = errors.New("interest rate can't be negative")
	ErrInitialBalance    = errors.New("initial balance is outside the account's allowed range")
	ErrOutOfRange        = errors.New("value exceeds the supported scale or magnitude")
)

type Kind string

const (
	Checking Kind = "checking"
	Savings  Kind = "savings"
)

func (k Kind) Supported() bool {
	return k == Checking || k == Savings
}

// Account is a checking or savings account. The variant is a tag, the variant
// specific field (overdraft or rate) is zero for the other kind.
type Account struct {
	mu sync.Mutex

	id        string
	kind      Kind
	owner     string
	initial   decimal.Decimal
	balance   decimal.Decimal
	overdraft decimal.Decimal
	rate      decimal.Decimal
	entries   []Entry
	createdAt time.Time

	now func() time.Time
}

type Summary struct {
	ID             string           `json:"id"`
	Kind           Kind             `json:"kind"`
	Owner          string           `json:"owner"`
	Balance        decimal.Decimal  `json:"balance"`
	OverdraftLimit *decimal.Decimal `json:"overdraftLimit,omitempty"`
	InterestRate   *decimal.Decimal `json:"interestRate,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

func NewChecking(id, owner string, overdraftLimit, initialBalance decimal.Decimal) (*Account, error) {
	if !InRange(overdraftLimit) || !InRange(initialBalance) {
		return nil, ErrOutOfRange
	}
	if overdraftLimit.IsNegative() {
		return nil, ErrNegativeOverdraft
	}
	if initialBalance.LessThan(overdraftLimit.Neg()) {
		return nil, errors.Wrapf(ErrInitialBalance, "%s below overdraft floor %s", initialBalance, overdraftLimit.Neg())
	}

	return newAccount(id, owner, Checking, initialBalance, overdraftLimit, decimal.Zero), nil
}

func NewSavings(id, owner string, interestRate, initialBalance decimal.Decimal) (*Account, error) {
	if !InRange(interestRate) || !InRange(initialBalance) {
		return nil, ErrOutOfRange
	}
	if interestRate.IsNegative() {
		return nil, ErrNegativeRate
	}
	if initialBalance.IsNegative() {
		return nil, errors.Wrapf(ErrInitialBalance, "savings can't open with %s", initialBalance)
	}

	return newAccount(id, owner, Savings, initialBalance, decimal.Zero, interestRate), nil
}

func newAccount(id, owner string, kind Kind, initial, overdraft, rate decimal.Decimal) *Account {
	a := &Account{
		id:        id,
		kind:      kind,
		owner:     owner,
		initial:   initial,
		balance:   initial,
		overdraft: overdraft,
		rate:      rate,
		now:       func() time.Time { return time.Now().UTC() },
	}
	a.createdAt = a.timestamp()

	return a
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) Kind() Kind {
	return a.kind
}

// Owner returns the tax id of the owning client.
func (a *Account) Owner() string {
	return a.owner
}

func (a *Account) InitialBalance() decimal.Decimal {
	return a.initial
}

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balance
}

func (a *Account) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Summary{
		ID:        a.id,
		Kind:      a.kind,
		Owner:     a.owner,
		Balance:   a.balance,
		CreatedAt: a.createdAt,
	}

	switch a.kind {
	case Checking:
		limit := a.overdraft
		s.OverdraftLimit = &limit
	case Savings:
		rate := a.rate
		s.InterestRate = &rate
	}

	return s
}

func (a *Account) Deposit(amount decimal.Decimal) (Entry, bool) {
	if !InRange(amount) || !amount.IsPositive() {
		return Entry{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.post(KindDeposit, amount), true
}

func (a *Account) Withdraw(amount decimal.Decimal) (Entry, bool) {
	if !InRange(amount) || !amount.IsPositive() {
		return Entry{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.available()) {
		return Entry{}, false
	}

	return a.post(KindWithdrawal, amount.Neg()), true
}

// AccrueInterest credits balance × rate, rounded to MaxScale places, to a
// savings account. It is only ever invoked by a caller, nothing schedules it.
func (a *Account) AccrueInterest() (Entry, bool) {
	if a.kind != Savings {
		return Entry{}, false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.post(KindInterest, a.balance.Mul(a.rate).Round(MaxScale)), true
}

func (a *Account) Statement() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Entry, len(a.entries))
	copy(out, a.entries)

	return out
}

// Ledger returns the statement together with the balance it ends on.
func (a *Account) Ledger() ([]Entry, decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Entry, len(a.entries))
	copy(out, a.entries)

	return out, a.balance
}

// available is the largest amount a withdrawal may take. Caller holds mu.
func (a *Account) available() decimal.Decimal {
	if a.kind == Checking {
		return a.balance.Add(a.overdraft)
	}
	return a.balance
}

// post applies a signed amount and appends its entry. Caller holds mu.
func (a *Account) post(kind EntryKind, signed decimal.Decimal) Entry {
	a.balance = a.balance.Add(signed)

	e := Entry{
		Kind:      kind,
		Amount:    signed,
		Timestamp: a.timestamp(),
		Balance:   a.balance,
	}
	a.entries = append(a.entries, e)

	return e
}

func (a *Account) timestamp() time.Time {
	return a.now().Truncate(time.Second)
}
