package usecase

import (
	"context"
	"errors"
	"fmt"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"
	"os_service_api/pkg/correlation"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeoutPollInterval = 30 * time.Second
	DefaultTimeoutThreshold    = 90 * time.Second
)

// StockTimeoutCompensator is the second path to the compensating transition:
// it reverts orders whose stock reduction never got an answer.
//
// It polls instead of scheduling per-order timers; interval and threshold are
// the only knobs.
type StockTimeoutCompensator struct {
	repo      interfaces.IOrderRepository
	metrics   interfaces.ISagaMetrics
	logger    *zap.Logger
	interval  time.Duration
	threshold time.Duration
	retry     RetryConfig
	now       func() time.Time
}

func NewStockTimeoutCompensator(
	repo interfaces.IOrderRepository,
	metrics interfaces.ISagaMetrics,
	logger *zap.Logger,
	interval time.Duration,
	threshold time.Duration,
) *StockTimeoutCompensator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultTimeoutPollInterval
	}
	if threshold <= 0 {
		threshold = DefaultTimeoutThreshold
	}
	return &StockTimeoutCompensator{
		repo:      repo,
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
		threshold: threshold,
		retry:     DefaultConflictRetryConfig(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is cancelled. A failing or panicking cycle is logged and
// the loop waits for the next tick.
func (c *StockTimeoutCompensator) Run(ctx context.Context) error {
	c.logger.Info("[saga][compensator] started",
		zap.Duration("interval", c.interval),
		zap.Duration("threshold", c.threshold),
	)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("[saga][compensator] stopped")
			return nil
		case <-ticker.C:
			c.cycle(ctx)
		}
	}
}

func (c *StockTimeoutCompensator) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("[saga][compensator] cycle panicked", zap.Any("panic", r))
		}
	}()

	if _, err := c.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("[saga][compensator] cycle failed", zap.Error(err))
	}
}

// RunOnce performs a single scan and returns how many orders it compensated.
// Once ctx is cancelled no further order is started, but the write already in
// flight completes.
func (c *StockTimeoutCompensator) RunOnce(ctx context.Context) (int, error) {
	cutoff := c.now().Add(-c.threshold)
	orders, err := c.repo.ListAwaitingStockWithDeadline(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list orders awaiting stock: %w", err)
	}

	compensated := 0
	for _, o := range orders {
		if ctx.Err() != nil {
			break
		}
		log := c.logger.With(
			zap.String(correlation.LogField, o.StockCorrelationID()),
			zap.String("order_id", o.ID().String()),
		)

		done, err := c.compensate(context.WithoutCancel(ctx), o, cutoff)
		if err != nil {
			log.Error("[saga][compensator] timeout compensation failed", zap.Error(err))
			continue
		}
		if !done {
			log.Info("[saga][compensator] order resolved concurrently, skipped")
			continue
		}
		compensated++
		c.metrics.TimeoutCompensation(ctx)
		log.Warn("[saga][compensator] stock reduction timed out, order compensated",
			zap.Duration("threshold", c.threshold),
		)
	}
	return compensated, nil
}

func (c *StockTimeoutCompensator) compensate(ctx context.Context, listed *entities.Order, cutoff time.Time) (bool, error) {
	current := listed
	return retryOnConflict(ctx, c.retry, func() (bool, error) {
		if current == nil {
			reloaded, err := c.repo.GetByID(ctx, listed.ID())
			if err != nil {
				return false, err
			}
			if reloaded == nil {
				return false, nil
			}
			current = reloaded
		}
		if !expired(current, cutoff) {
			return false, nil
		}

		if err := current.RegisterStockReductionFailure(entities.StockFailureTimeout); err != nil {
			if errors.Is(err, entities.ErrStockAlreadyConfirmed) {
				return false, nil
			}
			return false, err
		}
		if _, err := c.repo.Update(ctx, current); err != nil {
			current = nil
			return false, err
		}
		return true, nil
	})
}

func expired(o *entities.Order, cutoff time.Time) bool {
	if o.Status() != entities.OrderStatusEmExecucao || !o.StockInteraction().IsAwaiting() {
		return false
	}
	started := o.History().ExecutionStartedAt()
	return started != nil && !started.After(cutoff)
}
