package notification

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/tamasbrandstadter/bank-ledger-api/cmd/api/account"
	"github.com/tamasbrandstadter/bank-ledger-api/internal/mq"
)

// Publisher is the part of *amqp.Channel the notifier needs.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Notification struct {
	AccountID string            `json:"accountId"`
	Kind      account.EntryKind `json:"kind"`
	Amount    decimal.Decimal   `json:"amount"`
	Balance   decimal.Decimal   `json:"balance"`
	PostedAt  time.Time         `json:"postedAt"`
}

type Notifier struct {
	mu  sync.RWMutex
	pub Publisher
}

func NewNotifier(pub Publisher) *Notifier {
	return &Notifier{pub: pub}
}

// SetPublisher replaces the channel notifications go out on, after the broker
// connection was re-established.
func (n *Notifier) SetPublisher(pub Publisher) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pub = pub
}

func (n *Notifier) publisher() Publisher {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.pub
}

func (n *Notifier) Publish(accountID string, e account.Entry) error {
	body, err := json.Marshal(Notification{
		AccountID: accountID,
		Kind:      e.Kind,
		Amount:    e.Amount,
		Balance:   e.Balance,
		PostedAt:  e.Timestamp,
	})
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}

	err = n.publisher().Publish(mq.NotificationsExchange, mq.NotificationRouteKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.New().String(),
		Timestamp:    e.Timestamp,
		Body:         body,
		DeliveryMode: amqp.Transient,
	})
	if err != nil {
		return errors.Wrapf(err, "send notification to %s topic", mq.NotificationsExchange)
	}

	return nil
}

// EntryPosted makes the notifier a bank observer.
func (n *Notifier) EntryPosted(accountID string, e account.Entry) {
	if err := n.Publish(accountID, e); err != nil {
		log.WithError(err).WithField("account_id", accountID).Error("failed to publish balance notification")
	}
}
