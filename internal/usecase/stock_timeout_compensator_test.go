package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"
	mock_interfaces "os_service_api/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func newCompensatorForTest(t *testing.T) (*StockTimeoutCompensator, *mock_interfaces.MockIOrderRepository, *mock_interfaces.MockISagaMetrics) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIOrderRepository(ctrl)
	metrics := mock_interfaces.NewMockISagaMetrics(ctrl)
	c := NewStockTimeoutCompensator(repo, metrics, nil, 0, 0)
	c.now = fixedNow
	c.retry = fastRetry()
	return c, repo, metrics
}

func TestNewStockTimeoutCompensator_Defaults(t *testing.T) {
	c := NewStockTimeoutCompensator(nil, nil, nil, 0, -time.Second)
	if c.interval != 30*time.Second || c.threshold != 90*time.Second {
		t.Fatalf("expected 30s/90s defaults, got %v/%v", c.interval, c.threshold)
	}
}

func TestStockTimeoutCompensator_RunOnce(t *testing.T) {
	cutoff := testNow.Add(-DefaultTimeoutThreshold)

	t.Run("compensates expired orders", func(t *testing.T) {
		c, repo, metrics := newCompensatorForTest(t)
		o := orderAwaitingStock(t, testNow.Add(-2*time.Minute))

		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), cutoff).Return([]*entities.Order{o}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated)
		metrics.EXPECT().TimeoutCompensation(gomock.Any())

		n, err := c.RunOnce(context.Background())
		if err != nil || n != 1 {
			t.Fatalf("expected 1 compensation, got %d, %v", n, err)
		}
		if o.Status() != entities.OrderStatusAguardandoAprovacao {
			t.Fatalf("expected AguardandoAprovacao, got %s", o.Status())
		}
		if o.StockInteraction().FailureReason() != entities.StockFailureTimeout {
			t.Fatalf("expected timeout reason, got %s", o.StockInteraction().FailureReason())
		}
	})

	t.Run("list failure is returned", func(t *testing.T) {
		c, repo, _ := newCompensatorForTest(t)
		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).Return(nil, errors.New("scan failed"))

		if _, err := c.RunOnce(context.Background()); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("one failing order does not abort the cycle", func(t *testing.T) {
		c, repo, metrics := newCompensatorForTest(t)
		first := orderAwaitingStock(t, testNow.Add(-5*time.Minute))
		second := orderAwaitingStock(t, testNow.Add(-4*time.Minute))

		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).Return([]*entities.Order{first, second}, nil)
		gomock.InOrder(
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom")),
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(returnUpdated),
		)
		metrics.EXPECT().TimeoutCompensation(gomock.Any()).Times(1)

		n, err := c.RunOnce(context.Background())
		if err != nil || n != 1 {
			t.Fatalf("expected 1 compensation, got %d, %v", n, err)
		}
	})

	t.Run("concurrent confirmation wins", func(t *testing.T) {
		c, repo, _ := newCompensatorForTest(t)
		listed := orderAwaitingStock(t, testNow.Add(-2*time.Minute))
		confirmed := clone(t, listed)
		must(t, confirmed.ConfirmStockReduction())

		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).Return([]*entities.Order{listed}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, interfaces.ErrOrderVersionConflict)
		repo.EXPECT().GetByID(gomock.Any(), listed.ID()).Return(confirmed, nil)

		n, err := c.RunOnce(context.Background())
		if err != nil || n != 0 {
			t.Fatalf("expected no compensation, got %d, %v", n, err)
		}
		if confirmed.StockInteraction().State() != entities.StockInteractionConfirmed {
			t.Fatalf("confirmation must survive, got %s", confirmed.StockInteraction().State())
		}
	})

	t.Run("orders not yet expired are skipped", func(t *testing.T) {
		c, repo, _ := newCompensatorForTest(t)
		fresh := orderAwaitingStock(t, testNow.Add(-10*time.Second))
		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).Return([]*entities.Order{fresh}, nil)

		n, err := c.RunOnce(context.Background())
		if err != nil || n != 0 {
			t.Fatalf("expected no compensation, got %d, %v", n, err)
		}
	})

	t.Run("no new order starts after cancellation", func(t *testing.T) {
		c, repo, _ := newCompensatorForTest(t)
		ctx, cancel := context.WithCancel(context.Background())
		o := orderAwaitingStock(t, testNow.Add(-2*time.Minute))
		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, time.Time) ([]*entities.Order, error) {
				cancel()
				return []*entities.Order{o}, nil
			},
		)

		n, err := c.RunOnce(ctx)
		if err != nil || n != 0 {
			t.Fatalf("expected nothing compensated, got %d, %v", n, err)
		}
	})

	t.Run("in-flight write ignores cancellation", func(t *testing.T) {
		c, repo, metrics := newCompensatorForTest(t)
		ctx, cancel := context.WithCancel(context.Background())
		o := orderAwaitingStock(t, testNow.Add(-2*time.Minute))
		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).Return([]*entities.Order{o}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, o *entities.Order) (*entities.Order, error) {
				cancel()
				if ctx.Err() != nil {
					t.Fatalf("write context must not be cancelled")
				}
				return o, nil
			},
		)
		metrics.EXPECT().TimeoutCompensation(gomock.Any())

		n, err := c.RunOnce(ctx)
		if err != nil || n != 1 {
			t.Fatalf("expected 1 compensation, got %d, %v", n, err)
		}
	})
}

func TestStockTimeoutCompensator_Run(t *testing.T) {
	t.Run("survives a panicking cycle and stops on cancel", func(t *testing.T) {
		c, repo, _ := newCompensatorForTest(t)
		c.interval = 5 * time.Millisecond
		logger, logs := observedLogger()
		c.logger = logger

		ctx, cancel := context.WithCancel(context.Background())
		var once sync.Once
		calls := make(chan struct{}, 16)
		repo.EXPECT().ListAwaitingStockWithDeadline(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, time.Time) ([]*entities.Order, error) {
				calls <- struct{}{}
				var first bool
				once.Do(func() { first = true })
				if first {
					panic("scan exploded")
				}
				return nil, errors.New("still broken")
			},
		).MinTimes(2)

		done := make(chan error, 1)
		go func() { done <- c.Run(ctx) }()

		<-calls
		<-calls
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected nil on cancel, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("compensator did not stop")
		}
		if logs.FilterMessageSnippet("cycle panicked").Len() != 1 {
			t.Fatalf("expected panic to be logged once")
		}
		if logs.FilterMessageSnippet("cycle failed").Len() < 1 {
			t.Fatalf("expected cycle failure to be logged")
		}
	})
}
