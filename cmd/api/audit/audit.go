package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
)

const insert = "INSERT INTO ledger_entries(account_id, kind, amount, balance, posted_at) VALUES($1,$2,$3,$4,$5) RETURNING id;"

const defaultTimeout = 3 * time.Second

// Journal appends every posted entry to the ledger_entries table. Nothing in
// the service reads it back.
type Journal struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewJournal(db *sqlx.DB) *Journal {
	return &Journal{db: db, timeout: defaultTimeout}
}

func (j *Journal) Record(ctx context.Context, accountID string, e account.Entry) (int64, error) {
	tx, err := j.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return 0, errors.Wrap(err, "begin journal tx")
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "prepare journal insert")
	}
	defer stmt.Close()

	var id int64
	row := stmt.QueryRowContext(ctx, accountID, string(e.Kind), e.Amount.String(), e.Balance.String(), e.Timestamp)
	if err = row.Scan(&id); err != nil {
		_ = tx.Rollback()
		log.Warnf("journal record for account id %s was rolled back, error: %v", accountID, err)
		return 0, errors.Wrap(err, "insert journal record")
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit journal record")
	}

	return id, nil
}

// EntryPosted makes the journal a bank observer. A failed write is logged and
// does not undo the entry.
func (j *Journal) EntryPosted(accountID string, e account.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	id, err := j.Record(ctx, accountID, e)
	if err != nil {
		log.WithError(err).WithField("account_id", accountID).Error("failed to journal ledger entry")
		return
	}

	log.WithFields(log.Fields{
		"account_id": accountID,
		"journal_id": id,
		"kind":       e.Kind,
	}).Debug("journaled ledger entry")
}
