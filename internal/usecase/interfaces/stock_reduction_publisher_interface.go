package interfaces

import (
	"context"

	"os_service_api/internal/domain/entities"
)

//go:generate mockgen -source=stock_reduction_publisher_interface.go -destination=mocks/stock_reduction_publisher_mock.go -package=mock_interfaces

// IStockReductionPublisher abstracts the broker used to ask the stock service
// for a reduction. Delivery is fire-and-forget with a bounded lifetime.
type IStockReductionPublisher interface {
	Publish(ctx context.Context, req entities.StockReductionRequest) error
}
