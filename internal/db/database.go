package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	User string
	Pass string
	Name string
	Port int
}

func (cfg Config) DSN() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.User, cfg.Pass, cfg.Name, cfg.Port)
}

func NewConnection(cfg Config) (*sqlx.DB, error) {
	log.Info("connecting to database...")
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}

	log.Info("verifying connection...")
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	log.Info("verified postgres connection")
	return db, nil
}

// Schema is applied on startup. The journal is only ever appended to.
const Schema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	id          BIGSERIAL PRIMARY KEY,
	account_id  TEXT        NOT NULL,
	kind        TEXT        NOT NULL,
	amount      NUMERIC     NOT NULL,
	balance     NUMERIC     NOT NULL,
	posted_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_entries_account_id_idx ON ledger_entries (account_id);
`

func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return errors.Wrap(err, "apply ledger schema")
	}
	return nil
}
