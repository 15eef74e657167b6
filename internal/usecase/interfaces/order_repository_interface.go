package interfaces

import (
	"context"
	"errors"
	"time"

	"os_service_api/internal/domain/entities"

	"github.com/google/uuid"
)

//go:generate mockgen -source=order_repository_interface.go -destination=mocks/order_repository_mock.go -package=mock_interfaces

var (
	ErrOrderAlreadyExists   = errors.New("order already exists")
	ErrOrderVersionConflict = errors.New("order was modified concurrently")
)

// IOrderRepository abstracts persistence of the Order aggregate.
//
// The os-service must be able to:
//   - create an order once per vehicle visit (orders are never deleted)
//   - load an order by id (nil, nil when absent)
//   - update an order only if nobody wrote it since it was loaded
//   - list orders stuck waiting on a stock reply past a cutoff
type IOrderRepository interface {
	Create(ctx context.Context, o *entities.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	// Update persists o when the stored version equals o.Version() and returns
	// the order carrying the new version. Otherwise ErrOrderVersionConflict.
	Update(ctx context.Context, o *entities.Order) (*entities.Order, error)
	// ListAwaitingStockWithDeadline returns orders with status EmExecucao, a
	// required stock reduction still awaiting its outcome and an execution
	// start at or before cutoff.
	ListAwaitingStockWithDeadline(ctx context.Context, cutoff time.Time) ([]*entities.Order, error)
}
