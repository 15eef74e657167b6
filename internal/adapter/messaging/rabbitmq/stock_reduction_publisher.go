package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"
	"os_service_api/pkg/correlation"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMessageTTL bounds how long a request may wait in the broker. Past
// it the message is dropped and the timeout compensator takes over.
const DefaultMessageTTL = 60 * time.Second

const tracerName = "os_service_api/rabbitmq"

// PublishChannel is the subset of *amqp.Channel used by the publisher.
type PublishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type StockReductionPublisher struct {
	ch  PublishChannel
	ttl time.Duration
	now func() time.Time
}

var _ interfaces.IStockReductionPublisher = (*StockReductionPublisher)(nil)

func NewStockReductionPublisher(ch PublishChannel, ttl time.Duration) *StockReductionPublisher {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	return &StockReductionPublisher{
		ch:  ch,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (p *StockReductionPublisher) Publish(ctx context.Context, req entities.StockReductionRequest) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "stock.reduction.requested publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String(correlation.SpanAttribute, req.CorrelationID),
			attribute.String("order.id", req.OrderID.String()),
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination.name", ExchangeName),
		),
	)
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return fmt.Errorf("encode stock reduction request: %w", err)
	}

	headers := injectTraceHeaders(ctx, amqp.Table{correlation.Header: req.CorrelationID})
	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: req.CorrelationID,
		Timestamp:     p.now(),
		Expiration:    strconv.FormatInt(p.ttl.Milliseconds(), 10),
		Headers:       headers,
		Body:          body,
	}

	if err := p.ch.PublishWithContext(ctx, ExchangeName, RequestRoutingKey, false, false, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("publish stock reduction request: %w", err)
	}
	return nil
}
