package testmq

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

type Message struct {
	Exchange string
	Key      string
	amqp.Publishing
}

// Publisher records publishings instead of sending them to a broker.
type Publisher struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (p *Publisher) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return errors.Wrap(p.Err, "publish")
	}

	p.messages = append(p.messages, Message{Exchange: exchange, Key: key, Publishing: msg})
	return nil
}

func (p *Publisher) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// Acknowledger records what a consumer did with a delivery.
type Acknowledger struct {
	mu      sync.Mutex
	Acked   []uint64
	Nacked  []uint64
	Requeue []bool
}

func (a *Acknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Acked = append(a.Acked, tag)
	return nil
}

func (a *Acknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Nacked = append(a.Nacked, tag)
	a.Requeue = append(a.Requeue, requeue)
	return nil
}

func (a *Acknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

// Delivery builds a delivery whose acknowledgements land in a.
func Delivery(a *Acknowledger, tag uint64, body []byte) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: a,
		DeliveryTag:  tag,
		ContentType:  "application/json",
		Body:         body,
	}
}
