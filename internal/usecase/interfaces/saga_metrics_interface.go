package interfaces

import (
	"context"

	"os_service_api/internal/domain/entities"
)

//go:generate mockgen -source=saga_metrics_interface.go -destination=mocks/saga_metrics_mock.go -package=mock_interfaces

// ISagaMetrics counts stock reduction saga outcomes. Saga failures have no
// synchronous caller, so these counters are how operators notice them.
type ISagaMetrics interface {
	StockReductionRequested(ctx context.Context)
	StockReductionPublishFailed(ctx context.Context)
	StockReductionConfirmed(ctx context.Context)
	StockReductionCompensated(ctx context.Context, reason entities.StockFailureReason)
	TimeoutCompensation(ctx context.Context)
	CriticalCompensationFailure(ctx context.Context)
	LateReplyConflict(ctx context.Context)
	CorrelationMismatch(ctx context.Context)
	OrderNotFound(ctx context.Context)
}
