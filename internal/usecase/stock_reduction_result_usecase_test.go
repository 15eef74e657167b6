package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"
	mock_interfaces "os_service_api/internal/usecase/interfaces/mocks"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type resultMocks struct {
	repo      *mock_interfaces.MockIOrderRepository
	metrics   *mock_interfaces.MockISagaMetrics
	processed *mock_interfaces.MockIProcessedMessageStore
	logs      *observer.ObservedLogs
}

func newResultUseCaseForTest(t *testing.T, withStore bool) (*StockReductionResultUseCase, resultMocks) {
	ctrl := gomock.NewController(t)
	logger, logs := observedLogger()
	m := resultMocks{
		repo:    mock_interfaces.NewMockIOrderRepository(ctrl),
		metrics: mock_interfaces.NewMockISagaMetrics(ctrl),
		logs:    logs,
	}
	var store interfaces.IProcessedMessageStore
	if withStore {
		m.processed = mock_interfaces.NewMockIProcessedMessageStore(ctrl)
		store = m.processed
	}
	uc := NewStockReductionResultUseCase(m.repo, m.metrics, store, logger)
	uc.retry = fastRetry()
	return uc, m
}

func successResult(o *entities.Order) entities.StockReductionResult {
	return entities.StockReductionResult{CorrelationID: "corr-saga", OrderID: o.ID(), Success: true}
}

func failureResult(o *entities.Order, reason entities.StockFailureReason) entities.StockReductionResult {
	return entities.StockReductionResult{CorrelationID: "corr-saga", OrderID: o.ID(), FailureReason: reason}
}

func TestStockReductionResultUseCase_Validation(t *testing.T) {
	t.Run("missing order id", func(t *testing.T) {
		uc, _ := newResultUseCaseForTest(t, false)
		err := uc.Handle(context.Background(), entities.StockReductionResult{CorrelationID: "c", Success: true})
		if !errors.Is(err, ErrInvalidStockResult) {
			t.Fatalf("expected ErrInvalidStockResult, got %v", err)
		}
	})

	t.Run("unknown failure reason", func(t *testing.T) {
		uc, _ := newResultUseCaseForTest(t, false)
		err := uc.Handle(context.Background(), entities.StockReductionResult{OrderID: uuid.New(), FailureReason: "sem_motivo"})
		if !errors.Is(err, ErrInvalidStockResult) {
			t.Fatalf("expected ErrInvalidStockResult, got %v", err)
		}
	})
}

func TestStockReductionResultUseCase_Apply(t *testing.T) {
	t.Run("success confirms and marks processed", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, true)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		res := successResult(o)
		key := ProcessedResultKey("corr-saga", res)

		m.processed.EXPECT().WasProcessed(gomock.Any(), key).Return(false, nil)
		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, o *entities.Order) (*entities.Order, error) {
				if o.StockInteraction().State() != entities.StockInteractionConfirmed {
					t.Fatalf("expected confirmed, got %s", o.StockInteraction().State())
				}
				return o, nil
			},
		)
		m.metrics.EXPECT().StockReductionConfirmed(gomock.Any())
		m.processed.EXPECT().MarkProcessed(gomock.Any(), key).Return(nil)

		if err := uc.Handle(context.Background(), res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status() != entities.OrderStatusEmExecucao {
			t.Fatalf("confirmation must not change status, got %s", o.Status())
		}
	})

	t.Run("failure compensates the order", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated)
		m.metrics.EXPECT().StockReductionCompensated(gomock.Any(), entities.StockFailureInsufficientStock)

		if err := uc.Handle(context.Background(), failureResult(o, entities.StockFailureInsufficientStock)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status() != entities.OrderStatusAguardandoAprovacao || o.History().ExecutionStartedAt() != nil {
			t.Fatalf("expected order reverted, got %+v", o.Snapshot())
		}
		if len(m.logs.FilterMessageSnippet("order compensated").All()) != 1 {
			t.Fatalf("expected compensation warning")
		}
	})

	t.Run("repeated success is a no-op", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		must(t, o.ConfirmStockReduction())

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)

		if err := uc.Handle(context.Background(), successResult(o)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("repeated failure is a no-op", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		must(t, o.RegisterStockReductionFailure(entities.StockFailureInternalError))

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)

		if err := uc.Handle(context.Background(), failureResult(o, entities.StockFailureInternalError)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("processed duplicate skips the store", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, true)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		m.processed.EXPECT().WasProcessed(gomock.Any(), gomock.Any()).Return(true, nil)

		if err := uc.Handle(context.Background(), successResult(o)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("dedupe lookup failure falls back to the store", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, true)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		m.processed.EXPECT().WasProcessed(gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated)
		m.metrics.EXPECT().StockReductionConfirmed(gomock.Any())
		m.processed.EXPECT().MarkProcessed(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		if err := uc.Handle(context.Background(), successResult(o)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("version conflict reloads and retries", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		stored := orderAwaitingStock(t, testNow.Add(-time.Minute))

		gomock.InOrder(
			m.repo.EXPECT().GetByID(gomock.Any(), stored.ID()).Return(clone(t, stored), nil),
			m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, interfaces.ErrOrderVersionConflict),
			m.repo.EXPECT().GetByID(gomock.Any(), stored.ID()).Return(clone(t, stored), nil),
			m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated),
		)
		m.metrics.EXPECT().StockReductionConfirmed(gomock.Any())

		if err := uc.Handle(context.Background(), successResult(stored)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("result without correlation id skips dedupe", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, true)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		res := successResult(o)
		res.CorrelationID = ""

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated)
		m.metrics.EXPECT().StockReductionConfirmed(gomock.Any())

		if err := uc.Handle(context.Background(), res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(m.logs.FilterMessageSnippet("another saga instance").All()) != 0 {
			t.Fatalf("missing correlation id must not be reported as a mismatch")
		}
	})

	t.Run("reply from an earlier saga instance is flagged", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-3*time.Minute))
		must(t, o.RegisterStockReductionFailure(entities.StockFailureTimeout))
		must(t, o.ApproveQuote(testNow.Add(-time.Minute), "corr-second-saga"))

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated)
		m.metrics.EXPECT().CorrelationMismatch(gomock.Any())
		m.metrics.EXPECT().StockReductionConfirmed(gomock.Any())

		if err := uc.Handle(context.Background(), successResult(o)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries := m.logs.FilterMessageSnippet("another saga instance").All()
		if len(entries) != 1 {
			t.Fatalf("expected one mismatch warning, got %d", len(entries))
		}
		fields := entries[0].ContextMap()
		if entries[0].Level != zap.WarnLevel ||
			fields["correlation_id"] != "corr-saga" ||
			fields["order_correlation_id"] != "corr-second-saga" {
			t.Fatalf("unexpected mismatch warning: %+v", entries[0])
		}
	})

	t.Run("version conflict retries count a mismatch once", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		stored := orderAwaitingStock(t, testNow.Add(-3*time.Minute))
		must(t, stored.RegisterStockReductionFailure(entities.StockFailureTimeout))
		must(t, stored.ApproveQuote(testNow.Add(-time.Minute), "corr-second-saga"))

		gomock.InOrder(
			m.repo.EXPECT().GetByID(gomock.Any(), stored.ID()).Return(clone(t, stored), nil),
			m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, interfaces.ErrOrderVersionConflict),
			m.repo.EXPECT().GetByID(gomock.Any(), stored.ID()).Return(clone(t, stored), nil),
			m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated),
		)
		m.metrics.EXPECT().CorrelationMismatch(gomock.Any()).Times(1)
		m.metrics.EXPECT().StockReductionConfirmed(gomock.Any())

		if err := uc.Handle(context.Background(), successResult(stored)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestStockReductionResultUseCase_Failures(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		id := uuid.New()
		m.repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)
		m.metrics.EXPECT().OrderNotFound(gomock.Any())

		err := uc.Handle(context.Background(), entities.StockReductionResult{CorrelationID: "c", OrderID: id, Success: true})
		if !errors.Is(err, ErrStockResultOrderNotFound) {
			t.Fatalf("expected ErrStockResultOrderNotFound, got %v", err)
		}
	})

	t.Run("success after compensation is a late reply", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, true)
		o := orderAwaitingStock(t, testNow.Add(-3*time.Minute))
		must(t, o.RegisterStockReductionFailure(entities.StockFailureTimeout))

		m.processed.EXPECT().WasProcessed(gomock.Any(), gomock.Any()).Return(false, nil)
		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.metrics.EXPECT().LateReplyConflict(gomock.Any())
		m.processed.EXPECT().MarkProcessed(gomock.Any(), gomock.Any()).Return(nil)

		err := uc.Handle(context.Background(), successResult(o))
		if !errors.Is(err, ErrLateStockReply) || !errors.Is(err, entities.ErrStockAlreadyCompensated) {
			t.Fatalf("expected late reply wrapping ErrStockAlreadyCompensated, got %v", err)
		}
		if o.Status() != entities.OrderStatusAguardandoAprovacao {
			t.Fatalf("late reply must not touch the order, got %s", o.Status())
		}
	})

	t.Run("failure after confirmation is a late reply", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))
		must(t, o.ConfirmStockReduction())

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.metrics.EXPECT().LateReplyConflict(gomock.Any())

		err := uc.Handle(context.Background(), failureResult(o, entities.StockFailureServiceUnavailable))
		if !errors.Is(err, ErrLateStockReply) {
			t.Fatalf("expected ErrLateStockReply, got %v", err)
		}
		if o.Status() != entities.OrderStatusEmExecucao {
			t.Fatalf("confirmed order must keep EmExecucao, got %s", o.Status())
		}
	})

	t.Run("compensation persistence failure is critical", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, errors.New("dynamodb unavailable"))
		m.metrics.EXPECT().CriticalCompensationFailure(gomock.Any())

		err := uc.Handle(context.Background(), failureResult(o, entities.StockFailureInsufficientStock))
		if !errors.Is(err, ErrCompensationFailed) {
			t.Fatalf("expected ErrCompensationFailed, got %v", err)
		}
		entries := m.logs.FilterField(zap.String("severity", "critical")).All()
		if len(entries) != 1 || entries[0].ContextMap()["correlation_id"] != "corr-saga" {
			t.Fatalf("expected one critical log with correlation id, got %+v", entries)
		}
	})

	t.Run("confirmation persistence failure is transient", func(t *testing.T) {
		uc, m := newResultUseCaseForTest(t, false)
		o := orderAwaitingStock(t, testNow.Add(-time.Minute))

		m.repo.EXPECT().GetByID(gomock.Any(), o.ID()).Return(o, nil)
		m.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, errors.New("throttled"))

		err := uc.Handle(context.Background(), successResult(o))
		if err == nil || errors.Is(err, ErrCompensationFailed) {
			t.Fatalf("expected plain transient error, got %v", err)
		}
	})
}
