package observability

import (
	"context"
	"errors"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "os_service_api/saga"

// SagaMetrics publishes the saga counters through an OTel meter.
type SagaMetrics struct {
	requested           metric.Int64Counter
	publishFailed       metric.Int64Counter
	confirmed           metric.Int64Counter
	compensated         metric.Int64Counter
	timeout             metric.Int64Counter
	criticalFailure     metric.Int64Counter
	lateReplyConflict   metric.Int64Counter
	correlationMismatch metric.Int64Counter
	orderNotFound       metric.Int64Counter
}

var _ interfaces.ISagaMetrics = (*SagaMetrics)(nil)

// NewSagaMetrics registers the counters on the meter of provider.
func NewSagaMetrics(provider metric.MeterProvider) (*SagaMetrics, error) {
	meter := provider.Meter(meterName)

	var errs error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("{message}"))
		errs = errors.Join(errs, err)
		return c
	}

	m := &SagaMetrics{
		requested:           counter("saga.stock_reduction.requested", "Stock reduction requests published"),
		publishFailed:       counter("saga.stock_reduction.publish_failed", "Stock reduction requests that could not be published"),
		confirmed:           counter("saga.stock_reduction.confirmed", "Stock reductions confirmed by the stock service"),
		compensated:         counter("saga.stock_reduction.compensated", "Orders compensated after a failure reply"),
		timeout:             counter("saga.compensation.timeout", "Orders compensated because no reply arrived in time"),
		criticalFailure:     counter("saga.compensation.critical_failure", "Compensations that could not be persisted"),
		lateReplyConflict:   counter("saga.stock_result.late_reply_conflict", "Replies contradicting an already resolved order"),
		correlationMismatch: counter("saga.stock_result.correlation_mismatch", "Replies carrying another saga instance's correlation id"),
		orderNotFound:       counter("saga.stock_result.order_not_found", "Replies for unknown orders"),
	}
	if errs != nil {
		return nil, errs
	}
	return m, nil
}

func (m *SagaMetrics) StockReductionRequested(ctx context.Context) { m.requested.Add(ctx, 1) }

func (m *SagaMetrics) StockReductionPublishFailed(ctx context.Context) { m.publishFailed.Add(ctx, 1) }

func (m *SagaMetrics) StockReductionConfirmed(ctx context.Context) { m.confirmed.Add(ctx, 1) }

func (m *SagaMetrics) StockReductionCompensated(ctx context.Context, reason entities.StockFailureReason) {
	m.compensated.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}

func (m *SagaMetrics) TimeoutCompensation(ctx context.Context) { m.timeout.Add(ctx, 1) }

func (m *SagaMetrics) CriticalCompensationFailure(ctx context.Context) { m.criticalFailure.Add(ctx, 1) }

func (m *SagaMetrics) LateReplyConflict(ctx context.Context) { m.lateReplyConflict.Add(ctx, 1) }

func (m *SagaMetrics) CorrelationMismatch(ctx context.Context) { m.correlationMismatch.Add(ctx, 1) }

func (m *SagaMetrics) OrderNotFound(ctx context.Context) { m.orderNotFound.Add(ctx, 1) }
