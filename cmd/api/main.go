package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/audit"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/balance"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/bank"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/handler"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/notification"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/cache"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/db"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/env"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/metrics"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/mq"
	"golang.org/x/time/rate"
)

func main() {
	log.SetFormatter(&log.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})

	if err := run(); err != nil {
		log.Errorf("shutting down: %v", err)
		os.Exit(1)
	}
}

func run() error {
	envCfg, err := env.GetEnvCfg()
	if err != nil {
		return errors.Wrap(err, "error parsing env vars")
	}

	if money.GetCurrency(envCfg.Currency) == nil {
		return errors.Errorf("unknown currency %q", envCfg.Currency)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewRecorder()
	observers := []bank.Observer{m}

	redis := cache.NewLocal()
	if envCfg.RedisEnabled() {
		redis, err = cache.NewConnection(cache.Config{
			Host:       envCfg.RedisHost,
			Pass:       envCfg.RedisPass,
			Port:       envCfg.RedisPort,
			MaxRetries: 5,
		})
		if err != nil {
			return errors.Wrap(err, "error connecting to redis")
		}
	}
	defer func() {
		if err := redis.Close(); err != nil {
			log.Errorf("error closing redis: %v", err)
		}
	}()
	observers = append(observers, redis)

	if envCfg.JournalEnabled() {
		dbc, err := db.NewConnection(db.Config{
			User: envCfg.DBUser,
			Pass: envCfg.DBPass,
			Name: envCfg.DBName,
			Port: envCfg.DBPort,
		})
		if err != nil {
			return errors.Wrap(err, "error connecting to db")
		}
		defer func() {
			if err := dbc.Close(); err != nil {
				log.Errorf("error closing db: %v", err)
			}
		}()

		if err := db.Migrate(dbc); err != nil {
			return err
		}
		observers = append(observers, audit.NewJournal(dbc))
	} else {
		log.Info("no database configured, ledger journal disabled")
	}

	var (
		conn     mq.Conn
		mqCfg    mq.Config
		notifier *notification.Notifier
	)
	if envCfg.BrokerEnabled() {
		mqCfg = mq.Config{
			User:         envCfg.MQUser,
			Pass:         envCfg.MQPass,
			Host:         envCfg.MQHost,
			Port:         envCfg.MQPort,
			Concurrency:  envCfg.MQConcurrency,
			MaxReconnect: 5,
		}
		conn, err = mq.NewConnection(mqCfg)
		if err != nil {
			return errors.Wrap(err, "error connecting to mq")
		}
		defer func() {
			if err := conn.Close(); err != nil {
				log.Errorf("error closing mq: %v", err)
			}
		}()
		notifier = notification.NewNotifier(conn.Channel)
		observers = append(observers, notifier)
	} else {
		log.Info("no broker configured, queue consumers and notifications disabled")
	}

	b := bank.New(envCfg.BankName, observers...)

	if envCfg.BrokerEnabled() {
		deposit, withdraw, err := conn.DeclareQueues(mqCfg.Concurrency)
		if err != nil {
			return errors.Wrap(err, "error declaring queues")
		}

		tc := balance.TransactionConsumer{
			Deposit:     deposit,
			Withdraw:    withdraw,
			Concurrency: mqCfg.Concurrency,
			Bank:        b,
			OnReconnect: func(c mq.Conn) {
				notifier.SetPublisher(c.Channel)
			},
		}
		closed := conn.Channel.NotifyClose(make(chan *amqp.Error, 1))

		go func() {
			if err := tc.StartConsume(ctx, conn); err != nil {
				log.Errorf("error starting consumers: %v", err)
			}
		}()
		go tc.ClosedConnectionListener(ctx, mqCfg, closed)
	}

	server := http.Server{
		Addr: fmt.Sprintf(":%d", envCfg.Port),
		Handler: handler.NewApplication(b, redis, m, handler.Options{
			Currency:              envCfg.Currency,
			DefaultOverdraftLimit: envCfg.DefaultOverdraftLimit,
			DefaultInterestRate:   envCfg.DefaultInterestRate,
			RateLimit:             rate.Limit(envCfg.RateLimitPerSecond),
			RateBurst:             envCfg.RateLimitBurst,
		}),
		ReadTimeout:    envCfg.ReadTimeout,
		WriteTimeout:   envCfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infof("server started successfully, listening on %s", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), envCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: Graceful shutdown did not complete in %v : %v", envCfg.ShutdownTimeout, err)

		if err := server.Close(); err != nil {
			log.Warnf("shutdown: Error killing server : %v", err)
		}
	}

	return nil
}
