package balance

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/bank"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/mq"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		msg := sl.Current().Interface().(BalanceMessage)
		if !account.InRange(msg.Amount) {
			sl.ReportError(msg.Amount, "amount", "Amount", "amount", "")
		}
	}, BalanceMessage{})

	return v
}

type BalanceMessage struct {
	AccountID string          `json:"id" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
}

type TransactionConsumer struct {
	Deposit     amqp.Queue
	Withdraw    amqp.Queue
	Concurrency int
	Bank        *bank.Bank

	// OnReconnect, when set, is handed every connection the listener
	// establishes after a broker drop.
	OnReconnect func(mq.Conn)
}

// StartConsume consumes both queues until ctx is done or the broker closes
// the deliveries.
func (tc TransactionConsumer) StartConsume(ctx context.Context, conn mq.Conn) error {
	deposits, err := conn.Channel.Consume(tc.Deposit.Name, "deposit-consumer", false, false,
		false, false, nil,
	)
	if err != nil {
		return errors.Wrap(err, "consume deposits")
	}

	withdraws, err := conn.Channel.Consume(tc.Withdraw.Name, "withdraw-consumer", false, false,
		false, false, nil,
	)
	if err != nil {
		return errors.Wrap(err, "consume withdraws")
	}

	tc.Run(ctx, deposits, withdraws)
	return nil
}

func (tc TransactionConsumer) Run(ctx context.Context, deposits, withdraws <-chan amqp.Delivery) {
	var wg sync.WaitGroup

	workers := tc.Concurrency
	if workers < 1 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		wg.Add(2)
		go tc.work(ctx, &wg, deposits, handleDeposit)
		go tc.work(ctx, &wg, withdraws, handleWithdraw)
	}

	wg.Wait()
}

func (tc TransactionConsumer) work(ctx context.Context, wg *sync.WaitGroup, deliveries <-chan amqp.Delivery, handle func([]byte, *bank.Bank) error) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			settle(d, handle(d.Body, tc.Bank))
		}
	}
}

// ClosedConnectionListener reconnects and resumes consuming after the broker
// drops the connection. A normal close ends the listener.
func (tc TransactionConsumer) ClosedConnectionListener(ctx context.Context, cfg mq.Config, closed <-chan *amqp.Error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-closed:
			if err == nil {
				log.Info("mq connection closed normally, will not reconnect")
				return
			}
			log.Errorf("closed mq connection: %v", err)
		}

		conn, err := mq.NewConnection(cfg)
		if err != nil {
			log.WithError(err).Error("unable to reconnect to mq")
			return
		}

		deposit, withdraw, err := conn.DeclareQueues(cfg.Concurrency)
		if err != nil {
			log.WithError(err).Error("unable to declare queues after reconnect")
			_ = conn.Close()
			return
		}
		tc.Deposit, tc.Withdraw = deposit, withdraw
		if tc.OnReconnect != nil {
			tc.OnReconnect(conn)
		}

		log.Info("reconnected to mq")
		closed = conn.Channel.NotifyClose(make(chan *amqp.Error, 1))

		go func(conn mq.Conn) {
			if err := tc.StartConsume(ctx, conn); err != nil {
				log.WithError(err).Error("unable to restart consumers")
			}
		}(conn)

		time.Sleep(time.Second)
	}
}

func handleDeposit(body []byte, b *bank.Bank) error {
	payload, err := decodeMessage(body)
	if err != nil {
		return err
	}

	e, err := b.Deposit(payload.AccountID, payload.Amount)
	if err != nil {
		return err
	}

	log.Infof("successfully deposited amount %s to account %s, balance %s", payload.Amount, payload.AccountID, e.Balance)
	return nil
}

func handleWithdraw(body []byte, b *bank.Bank) error {
	payload, err := decodeMessage(body)
	if err != nil {
		return err
	}

	e, err := b.Withdraw(payload.AccountID, payload.Amount)
	if err != nil {
		return err
	}

	log.Infof("successfully withdrew amount %s from account %s, balance %s", payload.Amount, payload.AccountID, e.Balance)
	return nil
}

func decodeMessage(body []byte) (BalanceMessage, error) {
	var payload BalanceMessage

	if err := json.Unmarshal(body, &payload); err != nil {
		return BalanceMessage{}, errors.New("invalid message payload, unable to parse")
	}
	if err := validate.Struct(payload); err != nil {
		return BalanceMessage{}, errors.Wrap(err, "invalid message payload")
	}

	return payload, nil
}

// settle acks handled deliveries. Failed ones are dropped without requeue:
// neither a bad payload nor a refused operation succeeds on redelivery.
func settle(d amqp.Delivery, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.WithError(ackErr).Warn("failed to ack delivery")
		}
		return
	}

	log.WithError(err).Warnf("dropping message %s", d.MessageId)
	if nackErr := d.Nack(false, false); nackErr != nil {
		log.WithError(nackErr).Warn("failed to nack delivery")
	}
}
