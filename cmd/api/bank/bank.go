package bank

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/client"
)

type Operation string

const (
	OpDeposit   Operation = "deposit"
	OpWithdraw  Operation = "withdraw"
	OpInterest  Operation = "interest"
	OpStatement Operation = "statement"
)

func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case OpDeposit, OpWithdraw, OpInterest, OpStatement:
		return op, nil
	default:
		return "", errors.Wrapf(ErrInvalidOperation, "%q", s)
	}
}

// Observer is told about every entry posted through the bank, after the
// account has been unlocked.
type Observer interface {
	EntryPosted(accountID string, e account.Entry)
}

type Statement struct {
	AccountID string          `json:"accountId"`
	Entries   []account.Entry `json:"entries"`
	Balance   decimal.Decimal `json:"balance"`
}

// Bank is the registry of clients and accounts and the only place that
// creates either. mu guards the two maps and the clients' account lists;
// account state is guarded by each account. mu is never held while an
// account is locked.
type Bank struct {
	name string

	mu       sync.RWMutex
	clients  map[string]*client.Client
	accounts map[string]*account.Account

	observers []Observer
	newID     func() string
}

func New(name string, observers ...Observer) *Bank {
	return &Bank{
		name:      name,
		clients:   make(map[string]*client.Client),
		accounts:  make(map[string]*account.Account),
		observers: observers,
		newID:     func() string { return uuid.New().String() },
	}
}

func (b *Bank) Name() string {
	return b.name
}

func (b *Bank) RegisterClient(name, taxID, address string) (client.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[taxID]; ok {
		return client.Client{}, errors.Wrapf(ErrDuplicateClient, "tax id %s", taxID)
	}

	c := client.New(name, taxID, address)
	b.clients[taxID] = c

	return c.Copy(), nil
}

func (b *Bank) FindClient(taxID string) (client.Client, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.clients[taxID]
	if !ok {
		return client.Client{}, errors.Wrapf(ErrClientNotFound, "tax id %s", taxID)
	}

	return c.Copy(), nil
}

func (b *Bank) OpenChecking(taxID string, overdraftLimit, initialBalance decimal.Decimal) (*account.Account, error) {
	if _, err := b.FindClient(taxID); err != nil {
		return nil, err
	}

	acc, err := account.NewChecking(b.newID(), taxID, overdraftLimit, initialBalance)
	if err != nil {
		return nil, errors.Wrap(err, "open checking account")
	}

	return b.attach(acc)
}

func (b *Bank) OpenSavings(taxID string, interestRate, initialBalance decimal.Decimal) (*account.Account, error) {
	if _, err := b.FindClient(taxID); err != nil {
		return nil, err
	}

	acc, err := account.NewSavings(b.newID(), taxID, interestRate, initialBalance)
	if err != nil {
		return nil, errors.Wrap(err, "open savings account")
	}

	return b.attach(acc)
}

func (b *Bank) attach(acc *account.Account) (*account.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.clients[acc.Owner()]
	if !ok {
		return nil, errors.Wrapf(ErrClientNotFound, "tax id %s", acc.Owner())
	}
	if _, taken := b.accounts[acc.ID()]; taken {
		return nil, errors.Errorf("account id %s already issued", acc.ID())
	}

	b.accounts[acc.ID()] = acc
	c.Attach(acc.ID())

	return acc, nil
}

func (b *Bank) FindAccount(id string) (*account.Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acc, ok := b.accounts[id]
	if !ok {
		return nil, errors.Wrapf(ErrAccountNotFound, "account id %s", id)
	}

	return acc, nil
}

// ListAccounts returns the client's accounts in the order they were opened.
func (b *Bank) ListAccounts(taxID string) ([]*account.Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.clients[taxID]
	if !ok {
		return nil, errors.Wrapf(ErrClientNotFound, "tax id %s", taxID)
	}

	accounts := make([]*account.Account, 0, len(c.AccountIDs))
	for _, id := range c.AccountIDs {
		accounts = append(accounts, b.accounts[id])
	}

	return accounts, nil
}

func (b *Bank) Deposit(id string, amount decimal.Decimal) (account.Entry, error) {
	acc, err := b.FindAccount(id)
	if err != nil {
		return account.Entry{}, err
	}

	e, ok := acc.Deposit(amount)
	if !ok {
		reason := reasonNotPositive
		if !account.InRange(amount) {
			reason = reasonOutOfRange
		}
		return account.Entry{}, &RejectedError{Operation: OpDeposit, AccountID: id, Amount: amount, Reason: reason}
	}

	b.notify(id, e)
	return e, nil
}

func (b *Bank) Withdraw(id string, amount decimal.Decimal) (account.Entry, error) {
	acc, err := b.FindAccount(id)
	if err != nil {
		return account.Entry{}, err
	}

	e, ok := acc.Withdraw(amount)
	if !ok {
		reason := "insufficient funds"
		switch {
		case !account.InRange(amount):
			reason = reasonOutOfRange
		case !amount.IsPositive():
			reason = reasonNotPositive
		}
		return account.Entry{}, &RejectedError{Operation: OpWithdraw, AccountID: id, Amount: amount, Reason: reason}
	}

	b.notify(id, e)
	return e, nil
}

func (b *Bank) AccrueInterest(id string) (account.Entry, error) {
	acc, err := b.FindAccount(id)
	if err != nil {
		return account.Entry{}, err
	}

	e, ok := acc.AccrueInterest()
	if !ok {
		return account.Entry{}, &RejectedError{Operation: OpInterest, AccountID: id, Reason: "interest applies to savings accounts only"}
	}

	b.notify(id, e)
	return e, nil
}

func (b *Bank) Statement(id string) (Statement, error) {
	acc, err := b.FindAccount(id)
	if err != nil {
		return Statement{}, err
	}

	entries, balance := acc.Ledger()

	return Statement{AccountID: id, Entries: entries, Balance: balance}, nil
}

func (b *Bank) notify(id string, e account.Entry) {
	for _, o := range b.observers {
		o.EntryPosted(id, e)
	}
}
