package usecase

import (
	"context"
	"errors"
	"fmt"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"
	"os_service_api/pkg/correlation"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidStockResult       = errors.New("invalid stock reduction result")
	ErrStockResultOrderNotFound = errors.New("stock reduction result references unknown order")
	ErrLateStockReply           = errors.New("stock reduction reply conflicts with resolved order")
	ErrCompensationFailed       = errors.New("stock reduction compensation failed")
)

// IStockReductionResultUseCase applies the stock service answer to the order.
//
// Outcomes callers must tell apart:
//   - ErrInvalidStockResult: payload cannot be processed, drop it
//   - ErrStockResultOrderNotFound, ErrLateStockReply: nothing to retry, ack
//   - ErrCompensationFailed: critical, the order may disagree with the stock service
//   - anything else: transient
type IStockReductionResultUseCase interface {
	Handle(ctx context.Context, res entities.StockReductionResult) error
}

type StockReductionResultUseCase struct {
	repo      interfaces.IOrderRepository
	metrics   interfaces.ISagaMetrics
	processed interfaces.IProcessedMessageStore
	logger    *zap.Logger
	retry     RetryConfig
}

var _ IStockReductionResultUseCase = (*StockReductionResultUseCase)(nil)

// NewStockReductionResultUseCase builds the handler. processed may be nil,
// in which case every delivery goes to the order store.
func NewStockReductionResultUseCase(
	repo interfaces.IOrderRepository,
	metrics interfaces.ISagaMetrics,
	processed interfaces.IProcessedMessageStore,
	logger *zap.Logger,
) *StockReductionResultUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockReductionResultUseCase{
		repo:      repo,
		metrics:   metrics,
		processed: processed,
		logger:    logger,
		retry:     DefaultConflictRetryConfig(),
	}
}

func (u *StockReductionResultUseCase) Handle(ctx context.Context, res entities.StockReductionResult) error {
	correlationID := correlation.Resolve(res.CorrelationID)
	log := u.logger.With(
		zap.String(correlation.LogField, correlationID),
		zap.String("order_id", res.OrderID.String()),
		zap.String("outcome", res.Outcome()),
	)

	if err := validateStockResult(res); err != nil {
		log.Error("[saga][usecase] invalid stock reduction result", zap.Error(err))
		return err
	}

	// Without a supplied id every redelivery would get a fresh key, so dedupe
	// is skipped and the idempotent aggregate absorbs the replay.
	var key string
	if strings.TrimSpace(res.CorrelationID) != "" {
		key = ProcessedResultKey(correlationID, res)
	}
	if u.alreadyProcessed(ctx, key, log) {
		log.Info("[saga][usecase] duplicate stock reduction result skipped")
		return nil
	}

	var sagaCorrelationID string
	changed, err := retryOnConflict(ctx, u.retry, func() (bool, error) {
		return u.apply(ctx, res, &sagaCorrelationID)
	})
	if res.CorrelationID != "" && sagaCorrelationID != "" && res.CorrelationID != sagaCorrelationID {
		log.Warn("[saga][usecase] stock reduction reply belongs to another saga instance",
			zap.String("order_correlation_id", sagaCorrelationID),
		)
		u.metrics.CorrelationMismatch(ctx)
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrStockResultOrderNotFound):
		log.Error("[saga][usecase] stock reduction result for unknown order")
		u.metrics.OrderNotFound(ctx)
		return err
	case errors.Is(err, ErrLateStockReply):
		log.Error("[saga][usecase] late stock reduction reply conflicts with resolved order", zap.Error(err))
		u.metrics.LateReplyConflict(ctx)
		u.markProcessed(ctx, key, log)
		return err
	case !res.Success:
		log.Error("[saga][usecase] stock compensation failed, order may be inconsistent with stock service",
			zap.String("severity", "critical"),
			zap.String("failure_reason", string(res.FailureReason)),
			zap.Error(err),
		)
		u.metrics.CriticalCompensationFailure(ctx)
		return fmt.Errorf("%w: %w", ErrCompensationFailed, err)
	default:
		log.Error("[saga][usecase] stock reduction confirmation failed", zap.Error(err))
		return err
	}

	switch {
	case !changed:
		log.Info("[saga][usecase] stock reduction already resolved, nothing to apply")
	case res.Success:
		u.metrics.StockReductionConfirmed(ctx)
		log.Info("[saga][usecase] stock reduction confirmed")
	default:
		u.metrics.StockReductionCompensated(ctx, res.FailureReason)
		log.Warn("[saga][usecase] stock reduction failed, order compensated",
			zap.String("failure_reason", string(res.FailureReason)),
		)
	}
	u.markProcessed(ctx, key, log)
	return nil
}

// apply reports whether the order changed and stores the correlation id of
// the order's current saga in sagaCorrelationID. Reloading on every call is
// what makes retryOnConflict safe.
func (u *StockReductionResultUseCase) apply(ctx context.Context, res entities.StockReductionResult, sagaCorrelationID *string) (bool, error) {
	o, err := u.repo.GetByID(ctx, res.OrderID)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, ErrStockResultOrderNotFound
	}
	*sagaCorrelationID = o.StockCorrelationID()

	before := o.StockInteraction()
	if res.Success {
		err = o.ConfirmStockReduction()
	} else {
		err = o.RegisterStockReductionFailure(res.FailureReason)
	}
	if err != nil {
		if errors.Is(err, entities.ErrStockAlreadyConfirmed) ||
			errors.Is(err, entities.ErrStockAlreadyCompensated) ||
			errors.Is(err, entities.ErrNoStockInteraction) {
			return false, fmt.Errorf("%w: %w", ErrLateStockReply, err)
		}
		return false, err
	}
	if o.StockInteraction() == before {
		return false, nil
	}

	if _, err := u.repo.Update(ctx, o); err != nil {
		return false, err
	}
	return true, nil
}

func (u *StockReductionResultUseCase) alreadyProcessed(ctx context.Context, key string, log *zap.Logger) bool {
	if u.processed == nil || key == "" {
		return false
	}
	done, err := u.processed.WasProcessed(ctx, key)
	if err != nil {
		log.Warn("[saga][usecase] processed-message lookup failed, applying anyway", zap.Error(err))
		return false
	}
	return done
}

func (u *StockReductionResultUseCase) markProcessed(ctx context.Context, key string, log *zap.Logger) {
	if u.processed == nil || key == "" {
		return
	}
	if err := u.processed.MarkProcessed(ctx, key); err != nil {
		log.Warn("[saga][usecase] processed-message mark failed", zap.Error(err))
	}
}

// ProcessedResultKey identifies one reply of one saga instance.
func ProcessedResultKey(correlationID string, res entities.StockReductionResult) string {
	return fmt.Sprintf("%s:%s:%s", correlationID, res.OrderID, res.Outcome())
}

func validateStockResult(res entities.StockReductionResult) error {
	if res.OrderID == uuid.Nil {
		return fmt.Errorf("%w: missing orderId", ErrInvalidStockResult)
	}
	if !res.Success && !res.FailureReason.IsValid() {
		return fmt.Errorf("%w: unknown failureReason %q", ErrInvalidStockResult, res.FailureReason)
	}
	return nil
}
