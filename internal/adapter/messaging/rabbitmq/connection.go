package rabbitmq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Saga topology. Both directions share one durable direct exchange.
const (
	ExchangeName = "os.stock.saga"
	ExchangeType = "direct"

	RequestRoutingKey = "stock.reduction.requested"
	ResultRoutingKey  = "stock.reduction.result"
	ResultQueueName   = "os.stock.reduction.result"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

// TopologyChannel is the subset of *amqp.Channel needed to declare the saga
// exchange and result queue.
type TopologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// SetupConn dials the broker, retrying while it starts up, and opens a
// channel with the saga topology declared.
func SetupConn(url string, logger *zap.Logger) (*amqp.Connection, *amqp.Channel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("[saga][rabbitmq] connect failed, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}
	if err := DeclareTopology(ch); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	logger.Info("[saga][rabbitmq] connected", zap.String("exchange", ExchangeName))
	return conn, ch, nil
}

// DeclareTopology is idempotent; the stock service declares the same objects.
func DeclareTopology(ch TopologyChannel) error {
	err := ch.ExchangeDeclare(
		ExchangeName,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("could not declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		ResultQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("could not declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, ResultRoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("could not bind queue: %w", err)
	}
	return nil
}

// OpenConsumerChannel opens a dedicated channel for the result consumer;
// prefetch bounds the unacked deliveries handed to the workers.
func OpenConsumerChannel(conn *amqp.Connection, prefetch int) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("could not open consumer channel: %w", err)
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("could not set qos: %w", err)
		}
	}
	return ch, nil
}
