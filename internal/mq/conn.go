package mq

import (
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Config struct {
	User         string
	Pass         string
	Host         string
	Port         int
	Concurrency  int
	MaxReconnect uint
}

func (cfg Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Pass, cfg.Host, cfg.Port)
}

type Conn struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

func NewConnection(cfg Config) (Conn, error) {
	var conn Conn

	log.Infof("connecting to mq at %s:%d", cfg.Host, cfg.Port)

	err := retry.Do(
		func() error {
			c, err := GetConn(cfg.URL())
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Attempts(max(cfg.MaxReconnect, 1)),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("mq connection attempt %d failed", n+1)
		}),
	)
	if err != nil {
		return Conn{}, errors.Wrap(err, "connect to mq")
	}

	log.Info("connected to mq")
	return conn, nil
}

func GetConn(url string) (Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return Conn{}, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return Conn{}, err
	}

	return Conn{Connection: conn, Channel: ch}, nil
}

func (conn Conn) Close() error {
	if conn.Channel != nil {
		if err := conn.Channel.Close(); err != nil {
			return errors.Wrap(err, "close mq channel")
		}
	}
	if conn.Connection != nil {
		if err := conn.Connection.Close(); err != nil {
			return errors.Wrap(err, "close mq connection")
		}
	}
	return nil
}
