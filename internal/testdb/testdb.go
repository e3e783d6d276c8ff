package testdb

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var TestTime = time.Now().UTC().Truncate(time.Second)

// Open returns a sqlx handle backed by sqlmock. Expectations are matched in
// order.
func Open() (*sqlx.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, errors.Wrap(err, "open sqlmock database")
	}

	return sqlx.NewDb(db, "sqlmock"), mock, nil
}
