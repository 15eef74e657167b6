package rabbitmq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type settlement struct {
	tag     uint64
	action  ackAction
	requeue bool
}

// fakeAcknowledger records how each delivery was settled.
type fakeAcknowledger struct {
	mu      sync.Mutex
	settled []settlement
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.record(settlement{tag: tag, action: actionAck})
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	action := actionDiscard
	if requeue {
		action = actionRequeue
	}
	a.record(settlement{tag: tag, action: action, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.record(settlement{tag: tag, action: actionReject, requeue: requeue})
	return nil
}

func (a *fakeAcknowledger) record(s settlement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settled = append(a.settled, s)
}

func (a *fakeAcknowledger) byTag() map[uint64]ackAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[uint64]ackAction, len(a.settled))
	for _, s := range a.settled {
		out[s.tag] = s.action
	}
	return out
}

type fakeConsumeChannel struct {
	deliveries chan amqp.Delivery
	err        error
	queue      string
	autoAck    bool
}

func (f *fakeConsumeChannel) Consume(queue, _ string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	f.queue = queue
	f.autoAck = autoAck
	if f.err != nil {
		return nil, f.err
	}
	return f.deliveries, nil
}

type fakePublishChannel struct {
	mu       sync.Mutex
	err      error
	exchange string
	key      string
	msgs     []amqp.Publishing
}

func (f *fakePublishChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.exchange = exchange
	f.key = key
	f.msgs = append(f.msgs, msg)
	return nil
}
