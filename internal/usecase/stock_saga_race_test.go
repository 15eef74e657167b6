package usecase

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"os_service_api/internal/adapter/persistence/repository"
	"os_service_api/internal/domain/entities"
)

type countingMetrics struct {
	requested, publishFailed, confirmed, compensated atomic.Int64
	timeouts, critical, lateReplies, notFound        atomic.Int64
	mismatches                                       atomic.Int64
}

func (m *countingMetrics) StockReductionRequested(context.Context)     { m.requested.Add(1) }
func (m *countingMetrics) StockReductionPublishFailed(context.Context) { m.publishFailed.Add(1) }
func (m *countingMetrics) StockReductionConfirmed(context.Context)     { m.confirmed.Add(1) }
func (m *countingMetrics) StockReductionCompensated(context.Context, entities.StockFailureReason) {
	m.compensated.Add(1)
}
func (m *countingMetrics) TimeoutCompensation(context.Context)         { m.timeouts.Add(1) }
func (m *countingMetrics) CriticalCompensationFailure(context.Context) { m.critical.Add(1) }
func (m *countingMetrics) LateReplyConflict(context.Context)           { m.lateReplies.Add(1) }
func (m *countingMetrics) CorrelationMismatch(context.Context)         { m.mismatches.Add(1) }
func (m *countingMetrics) OrderNotFound(context.Context)               { m.notFound.Add(1) }

// A late success reply and the timeout compensator race on the same order.
// Exactly one resolving transition may win and the order must stay coherent.
func TestStockSaga_LateReplyRacesTimeout(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	must(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	must(t, repository.ApplySQLiteMigrations(context.Background(), db))
	repo := repository.NewOrderSQLiteRepository(db)

	for i := 0; i < 25; i++ {
		metrics := &countingMetrics{}
		resultUC := NewStockReductionResultUseCase(repo, metrics, nil, nil)
		resultUC.retry = RetryConfig{MaxAttempts: 10, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
		compensator := NewStockTimeoutCompensator(repo, metrics, nil, time.Second, DefaultTimeoutThreshold)
		compensator.now = fixedNow
		compensator.retry = resultUC.retry

		o := orderAwaitingStock(t, testNow.Add(-5*time.Minute))
		must(t, repo.Create(context.Background(), o))

		var (
			wg        sync.WaitGroup
			handleErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			handleErr = resultUC.Handle(context.Background(), entities.StockReductionResult{
				CorrelationID: o.StockCorrelationID(),
				OrderID:       o.ID(),
				Success:       true,
			})
		}()
		go func() {
			defer wg.Done()
			if _, err := compensator.RunOnce(context.Background()); err != nil {
				t.Errorf("compensator: %v", err)
			}
		}()
		wg.Wait()

		if handleErr != nil && !errors.Is(handleErr, ErrLateStockReply) {
			t.Fatalf("iteration %d: unexpected handle error %v", i, handleErr)
		}

		stored, err := repo.GetByID(context.Background(), o.ID())
		must(t, err)
		switch stored.StockInteraction().State() {
		case entities.StockInteractionConfirmed:
			if stored.Status() != entities.OrderStatusEmExecucao || stored.History().ExecutionStartedAt() == nil {
				t.Fatalf("iteration %d: confirmed order must stay in execution, got %+v", i, stored.Snapshot())
			}
			if metrics.confirmed.Load() != 1 || metrics.timeouts.Load() != 0 {
				t.Fatalf("iteration %d: expected only confirmation counted", i)
			}
		case entities.StockInteractionCompensated:
			if stored.Status() != entities.OrderStatusAguardandoAprovacao || stored.History().ExecutionStartedAt() != nil {
				t.Fatalf("iteration %d: compensated order must be reverted, got %+v", i, stored.Snapshot())
			}
			if metrics.timeouts.Load() != 1 || metrics.confirmed.Load() != 0 || metrics.lateReplies.Load() != 1 {
				t.Fatalf("iteration %d: expected timeout plus late reply counted", i)
			}
		default:
			t.Fatalf("iteration %d: unresolved stock state %s", i, stored.StockInteraction().State())
		}
	}
}
