package env

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Cfg struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	BankName string `envconfig:"BANK_NAME" default:"Banco Ledger"`
	Currency string `envconfig:"CURRENCY" default:"BRL"`

	DefaultOverdraftLimit decimal.Decimal `envconfig:"DEFAULT_OVERDRAFT_LIMIT" default:"1000"`
	DefaultInterestRate   decimal.Decimal `envconfig:"DEFAULT_INTEREST_RATE" default:"0.005"`

	DBUser string `envconfig:"DB_USER"`
	DBPass string `envconfig:"DB_PASSWORD"`
	DBName string `envconfig:"DB_NAME"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`

	MQUser        string `envconfig:"MQ_USER" default:"guest"`
	MQPass        string `envconfig:"MQ_PASSWORD" default:"guest"`
	MQHost        string `envconfig:"MQ_HOST"`
	MQPort        int    `envconfig:"MQ_PORT" default:"5672"`
	MQConcurrency int    `envconfig:"MQ_CONCURRENCY" default:"5"`

	RedisHost string `envconfig:"REDIS_HOST"`
	RedisPass string `envconfig:"REDIS_PASSWORD"`
	RedisPort int    `envconfig:"REDIS_PORT" default:"6379"`

	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"100"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"200"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

func (c Cfg) JournalEnabled() bool {
	return c.DBName != ""
}

func (c Cfg) BrokerEnabled() bool {
	return c.MQHost != ""
}

func (c Cfg) RedisEnabled() bool {
	return c.RedisHost != ""
}

// GetEnvCfg reads APP_ prefixed variables, after loading a .env file from the
// working directory when there is one.
func GetEnvCfg() (Cfg, error) {
	var cfg Cfg

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("unable to load .env file")
	}

	if err := envconfig.Process("APP", &cfg); err != nil {
		return Cfg{}, errors.Wrap(err, "parse environment variables")
	}

	return cfg, nil
}
