package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase"
	"os_service_api/pkg/correlation"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConsumerWorkers = 4

// ErrDeliveriesClosed is returned by Run when the broker closes the delivery
// channel while the consumer is still expected to run.
var ErrDeliveriesClosed = errors.New("stock result deliveries closed by broker")

// ConsumeChannel is the subset of *amqp.Channel used by the consumer.
type ConsumeChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type ackAction int

const (
	actionAck ackAction = iota
	actionReject
	actionRequeue
	actionDiscard
)

func (a ackAction) String() string {
	switch a {
	case actionAck:
		return "ack"
	case actionReject:
		return "reject"
	case actionRequeue:
		return "nack_requeue"
	default:
		return "nack_discard"
	}
}

// StockResultConsumer feeds stock reduction results to the use case and
// settles each delivery according to the outcome.
type StockResultConsumer struct {
	ch      ConsumeChannel
	handler usecase.IStockReductionResultUseCase
	logger  *zap.Logger
	workers int
	tag     string
}

func NewStockResultConsumer(
	ch ConsumeChannel,
	handler usecase.IStockReductionResultUseCase,
	logger *zap.Logger,
	workers int,
) *StockResultConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = DefaultConsumerWorkers
	}
	return &StockResultConsumer{
		ch:      ch,
		handler: handler,
		logger:  logger,
		workers: workers,
		tag:     "os-service-stock-result",
	}
}

// Run consumes until ctx is cancelled. Deliveries already taken by a worker
// are finished even if ctx is cancelled meanwhile.
func (c *StockResultConsumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(
		ResultQueueName,
		c.tag,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("could not start consume: %w", err)
	}

	c.logger.Info("[saga][consumer] started",
		zap.String("queue", ResultQueueName),
		zap.Int("workers", c.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case d, ok := <-msgs:
					if !ok {
						if gctx.Err() != nil {
							return nil
						}
						return ErrDeliveriesClosed
					}
					c.process(context.WithoutCancel(gctx), d)
				}
			}
		})
	}

	err = g.Wait()
	c.logger.Info("[saga][consumer] stopped")
	return err
}

func (c *StockResultConsumer) process(ctx context.Context, d amqp.Delivery) {
	ctx = extractTraceHeaders(ctx, d.Headers)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "stock.reduction.result process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.source.name", ResultQueueName),
			attribute.Bool("messaging.rabbitmq.redelivered", d.Redelivered),
		),
	)
	defer span.End()

	res, err := decodeStockResult(d)
	log := c.logger.With(
		zap.String(correlation.LogField, res.CorrelationID),
		zap.String("message_id", d.MessageId),
		zap.Bool("redelivered", d.Redelivered),
	)
	span.SetAttributes(attribute.String(correlation.SpanAttribute, res.CorrelationID))

	if err != nil {
		log.Error("[saga][consumer] malformed stock reduction result", zap.Error(err))
		span.SetStatus(codes.Error, "malformed payload")
		c.settle(d, actionReject, log)
		return
	}

	err = c.handler.Handle(ctx, res)
	action := decideAck(err, d.Redelivered)
	if err != nil && action != actionAck {
		span.RecordError(err)
		span.SetStatus(codes.Error, action.String())
	}
	if action == actionDiscard && !errors.Is(err, usecase.ErrCompensationFailed) {
		log.Error("[saga][consumer] redelivered stock reduction result failed again, dropping",
			zap.String("order_id", res.OrderID.String()),
			zap.Error(err),
		)
	}
	c.settle(d, action, log)
}

// decodeStockResult parses the body and resolves the correlation id: body
// first, then the header, then the AMQP correlation id, then the message id.
// The id stays empty when none is present; it must be stable across
// redeliveries to key the processed-message store.
func decodeStockResult(d amqp.Delivery) (entities.StockReductionResult, error) {
	var res entities.StockReductionResult
	err := json.Unmarshal(d.Body, &res)

	for _, id := range []string{
		res.CorrelationID,
		headerString(d.Headers, correlation.Header),
		d.CorrelationId,
		d.MessageId,
	} {
		if id = strings.TrimSpace(id); id != "" {
			res.CorrelationID = id
			break
		}
	}

	if err != nil {
		return res, fmt.Errorf("decode stock reduction result: %w", err)
	}
	return res, nil
}

// decideAck maps a use case outcome to the delivery settlement.
func decideAck(err error, redelivered bool) ackAction {
	switch {
	case err == nil:
		return actionAck
	case errors.Is(err, usecase.ErrInvalidStockResult):
		return actionReject
	case errors.Is(err, usecase.ErrStockResultOrderNotFound),
		errors.Is(err, usecase.ErrLateStockReply):
		return actionAck
	case errors.Is(err, usecase.ErrCompensationFailed):
		return actionDiscard
	case redelivered:
		return actionDiscard
	default:
		return actionRequeue
	}
}

func (c *StockResultConsumer) settle(d amqp.Delivery, action ackAction, log *zap.Logger) {
	var err error
	switch action {
	case actionAck:
		err = d.Ack(false)
	case actionReject:
		err = d.Reject(false)
	case actionRequeue:
		err = d.Nack(false, true)
	case actionDiscard:
		err = d.Nack(false, false)
	}
	if err != nil {
		log.Error("[saga][consumer] settle delivery failed",
			zap.String("action", action.String()),
			zap.Error(err),
		)
	}
}
