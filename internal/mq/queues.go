package mq

import (
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

const (
	LedgerExchange        = "ledger"
	NotificationsExchange = "balance-notifications"

	DepositQueue  = "deposits"
	WithdrawQueue = "withdraws"

	DepositRouteKey      = "dep"
	WithdrawRouteKey     = "wit"
	NotificationRouteKey = "notif"

	kind = "topic"
)

// DeclareQueues declares the ledger exchange with its deposit and withdraw
// queues, the notifications exchange, and the prefetch window for the
// consumers.
func (conn Conn) DeclareQueues(concurrency int) (amqp.Queue, amqp.Queue, error) {
	ch := conn.Channel

	if err := ch.ExchangeDeclare(LedgerExchange, kind, true, false, false, false, nil); err != nil {
		return amqp.Queue{}, amqp.Queue{}, errors.Wrap(err, "declare ledger exchange")
	}
	if err := ch.ExchangeDeclare(NotificationsExchange, kind, true, false, false, false, nil); err != nil {
		return amqp.Queue{}, amqp.Queue{}, errors.Wrap(err, "declare notifications exchange")
	}

	deposit, err := declareBound(ch, DepositQueue, DepositRouteKey)
	if err != nil {
		return amqp.Queue{}, amqp.Queue{}, err
	}

	withdraw, err := declareBound(ch, WithdrawQueue, WithdrawRouteKey)
	if err != nil {
		return amqp.Queue{}, amqp.Queue{}, err
	}

	prefetchCount := concurrency * 4
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return amqp.Queue{}, amqp.Queue{}, errors.Wrap(err, "set prefetch count")
	}

	return deposit, withdraw, nil
}

func declareBound(ch *amqp.Channel, name, routeKey string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, errors.Wrapf(err, "declare queue %s", name)
	}

	if err := ch.QueueBind(name, routeKey, LedgerExchange, false, nil); err != nil {
		return amqp.Queue{}, errors.Wrapf(err, "bind queue %s", name)
	}

	return q, nil
}
