package usecase

import (
	"context"
	"errors"
	"os_service_api/internal/domain/entities"
	"os_service_api/internal/usecase/interfaces"
	"os_service_api/pkg/correlation"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidOrderID   = errors.New("invalid order id")
	ErrInvalidVehicleID = errors.New("invalid vehicle id")
)

// IOrderUseCase exposes the work order lifecycle.
//
// Every mutation loads the order, applies one aggregate method and persists it
// with a version check. ApproveQuote additionally starts the stock reduction
// saga once the awaiting state is durable.
type IOrderUseCase interface {
	Create(ctx context.Context, vehicleID string) (*entities.Order, error)
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	StartDiagnosis(ctx context.Context, id string) (*entities.Order, error)
	AddPart(ctx context.Context, id string, part entities.PartItem) (*entities.Order, error)
	AddService(ctx context.Context, id string, service entities.ServiceItem) (*entities.Order, error)
	GenerateQuote(ctx context.Context, id string) (*entities.Order, error)
	ApproveQuote(ctx context.Context, id string, correlationID string) (*entities.Order, error)
	RejectQuote(ctx context.Context, id string) (*entities.Order, error)
	FinishExecution(ctx context.Context, id string) (*entities.Order, error)
	Deliver(ctx context.Context, id string) (*entities.Order, error)
	Cancel(ctx context.Context, id string) (*entities.Order, error)
}

type OrderUseCase struct {
	repo      interfaces.IOrderRepository
	publisher interfaces.IStockReductionPublisher
	metrics   interfaces.ISagaMetrics
	logger    *zap.Logger
	now       func() time.Time
}

var _ IOrderUseCase = (*OrderUseCase)(nil)

func NewOrderUseCase(
	repo interfaces.IOrderRepository,
	publisher interfaces.IStockReductionPublisher,
	metrics interfaces.ISagaMetrics,
	logger *zap.Logger,
) *OrderUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUseCase{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *OrderUseCase) Create(ctx context.Context, vehicleID string) (*entities.Order, error) {
	vid, err := uuid.Parse(strings.TrimSpace(vehicleID))
	if err != nil || vid == uuid.Nil {
		return nil, ErrInvalidVehicleID
	}

	o, err := entities.NewOrder(vid, u.now())
	if err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, o); err != nil {
		u.logger.Error("[order][usecase] create failed", zap.String("order_id", o.ID().String()), zap.Error(err))
		return nil, err
	}
	u.logger.Info("[order][usecase] order created",
		zap.String("order_id", o.ID().String()),
		zap.String("code", o.Code()),
	)
	return o, nil
}

func (u *OrderUseCase) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	orderID, err := parseOrderID(id)
	if err != nil {
		return nil, err
	}
	return u.load(ctx, orderID)
}

func (u *OrderUseCase) StartDiagnosis(ctx context.Context, id string) (*entities.Order, error) {
	return u.mutate(ctx, id, "start-diagnosis", func(o *entities.Order) error {
		return o.StartDiagnosis()
	})
}

func (u *OrderUseCase) AddPart(ctx context.Context, id string, part entities.PartItem) (*entities.Order, error) {
	return u.mutate(ctx, id, "add-part", func(o *entities.Order) error {
		return o.AddPart(part)
	})
}

func (u *OrderUseCase) AddService(ctx context.Context, id string, service entities.ServiceItem) (*entities.Order, error) {
	return u.mutate(ctx, id, "add-service", func(o *entities.Order) error {
		return o.AddService(service)
	})
}

func (u *OrderUseCase) GenerateQuote(ctx context.Context, id string) (*entities.Order, error) {
	return u.mutate(ctx, id, "generate-quote", func(o *entities.Order) error {
		return o.GenerateQuote(u.now())
	})
}

// ApproveQuote persists the approval and only then asks the stock service for
// the reduction. A publish failure leaves the order awaiting; the timeout
// compensator reverts it later, so the approval itself still succeeds.
func (u *OrderUseCase) ApproveQuote(ctx context.Context, id string, correlationID string) (*entities.Order, error) {
	correlationID = correlation.Resolve(correlationID)

	var previous entities.OrderStatus
	updated, err := u.mutate(ctx, id, "approve-quote", func(o *entities.Order) error {
		previous = o.Status()
		return o.ApproveQuote(u.now(), correlationID)
	})
	if err != nil {
		return nil, err
	}

	log := u.logger.With(
		zap.String(correlation.LogField, correlationID),
		zap.String("order_id", updated.ID().String()),
	)
	if !updated.StockInteraction().IsAwaiting() {
		log.Info("[saga][usecase] quote approved without physical items, no stock reduction")
		return updated, nil
	}

	req := entities.StockReductionRequest{
		CorrelationID:  correlationID,
		OrderID:        updated.ID(),
		PreviousStatus: previous,
		Items:          updated.StockReductionItems(),
	}
	if err := u.publisher.Publish(ctx, req); err != nil {
		log.Error("[saga][usecase] stock reduction publish failed, order left awaiting for timeout compensation",
			zap.Int("items", len(req.Items)),
			zap.Error(err),
		)
		u.metrics.StockReductionPublishFailed(ctx)
		return updated, nil
	}

	u.metrics.StockReductionRequested(ctx)
	log.Info("[saga][usecase] stock reduction requested", zap.Int("items", len(req.Items)))
	return updated, nil
}

func (u *OrderUseCase) RejectQuote(ctx context.Context, id string) (*entities.Order, error) {
	return u.mutate(ctx, id, "reject-quote", func(o *entities.Order) error {
		return o.RejectQuote()
	})
}

func (u *OrderUseCase) FinishExecution(ctx context.Context, id string) (*entities.Order, error) {
	return u.mutate(ctx, id, "finish-execution", func(o *entities.Order) error {
		return o.FinishExecution(u.now())
	})
}

func (u *OrderUseCase) Deliver(ctx context.Context, id string) (*entities.Order, error) {
	return u.mutate(ctx, id, "deliver", func(o *entities.Order) error {
		return o.Deliver(u.now())
	})
}

func (u *OrderUseCase) Cancel(ctx context.Context, id string) (*entities.Order, error) {
	return u.mutate(ctx, id, "cancel", func(o *entities.Order) error {
		return o.Cancel()
	})
}

func (u *OrderUseCase) mutate(ctx context.Context, id string, action string, apply func(o *entities.Order) error) (*entities.Order, error) {
	orderID, err := parseOrderID(id)
	if err != nil {
		return nil, err
	}
	o, err := u.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := apply(o); err != nil {
		if errors.Is(err, entities.ErrDomainRule) {
			u.logger.Info("[order][usecase] rule rejected action",
				zap.String("action", action),
				zap.String("order_id", orderID.String()),
				zap.String("status", o.Status().String()),
				zap.Error(err),
			)
			return nil, err
		}
		u.logger.Error("[order][usecase] action failed", zap.String("action", action), zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, err
	}

	updated, err := u.repo.Update(ctx, o)
	if err != nil {
		if errors.Is(err, interfaces.ErrOrderVersionConflict) {
			u.logger.Info("[order][usecase] concurrent update", zap.String("action", action), zap.String("order_id", orderID.String()))
			return nil, err
		}
		u.logger.Error("[order][usecase] update failed", zap.String("action", action), zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (u *OrderUseCase) load(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	o, err := u.repo.GetByID(ctx, id)
	if err != nil {
		u.logger.Error("[order][usecase] load failed", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func parseOrderID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil || parsed == uuid.Nil {
		return uuid.Nil, ErrInvalidOrderID
	}
	return parsed, nil
}
