package client

import (
	"time"
)

// Client owns accounts by id. Only the bank registry creates clients and
// attaches accounts to them.
type Client struct {
	Name       string    `json:"name"`
	TaxID      string    `json:"taxId"`
	Address    string    `json:"address"`
	AccountIDs []string  `json:"accounts"`
	CreatedAt  time.Time `json:"createdAt"`
}

func New(name, taxID, address string) *Client {
	return &Client{
		Name:       name,
		TaxID:      taxID,
		Address:    address,
		AccountIDs: make([]string, 0),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func (c *Client) Attach(accountID string) {
	c.AccountIDs = append(c.AccountIDs, accountID)
}

// Copy returns a value that shares no memory with c.
func (c *Client) Copy() Client {
	cp := *c
	cp.AccountIDs = append(make([]string, 0, len(c.AccountIDs)), c.AccountIDs...)

	return cp
}
