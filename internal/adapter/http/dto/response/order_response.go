package response

import (
	"os_service_api/internal/domain/entities"
	"time"

	"github.com/shopspring/decimal"
)

type PartResponse struct {
	StockItemID string          `json:"stock_item_id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type ServiceResponse struct {
	ServiceID string          `json:"service_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

type QuoteResponse struct {
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type StockReductionResponse struct {
	State         string `json:"state"`
	FailureReason string `json:"failure_reason,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type OrderResponse struct {
	ID                 string                 `json:"id"`
	Code               string                 `json:"code"`
	VehicleID          string                 `json:"vehicle_id"`
	Status             string                 `json:"status"`
	Parts              []PartResponse         `json:"parts"`
	Services           []ServiceResponse      `json:"services"`
	Quote              *QuoteResponse         `json:"quote,omitempty"`
	StockReduction     StockReductionResponse `json:"stock_reduction"`
	CreatedAt          time.Time              `json:"created_at"`
	ExecutionStartedAt *time.Time             `json:"execution_started_at,omitempty"`
	FinishedAt         *time.Time             `json:"finished_at,omitempty"`
	DeliveredAt        *time.Time             `json:"delivered_at,omitempty"`
	Version            int64                  `json:"version"`
}

func FromOrder(o *entities.Order) OrderResponse {
	parts := make([]PartResponse, 0, len(o.Parts()))
	for _, p := range o.Parts() {
		parts = append(parts, PartResponse{
			StockItemID: p.StockItemID.String(),
			Name:        p.Name,
			Type:        string(p.Type),
			UnitPrice:   p.UnitPrice,
			Quantity:    p.Quantity,
			Subtotal:    p.Subtotal(),
		})
	}

	services := make([]ServiceResponse, 0, len(o.Services()))
	for _, s := range o.Services() {
		services = append(services, ServiceResponse{
			ServiceID: s.ServiceID.String(),
			Name:      s.Name,
			Price:     s.Price,
		})
	}

	var quote *QuoteResponse
	if q := o.Quote(); q != nil {
		quote = &QuoteResponse{Total: q.Total, CreatedAt: q.CreatedAt}
	}

	history := o.History()
	stock := o.StockInteraction()
	return OrderResponse{
		ID:        o.ID().String(),
		Code:      o.Code(),
		VehicleID: o.VehicleID().String(),
		Status:    string(o.Status()),
		Parts:     parts,
		Services:  services,
		Quote:     quote,
		StockReduction: StockReductionResponse{
			State:         string(stock.State()),
			FailureReason: string(stock.FailureReason()),
			CorrelationID: o.StockCorrelationID(),
		},
		CreatedAt:          history.CreatedAt(),
		ExecutionStartedAt: history.ExecutionStartedAt(),
		FinishedAt:         history.FinishedAt(),
		DeliveredAt:        history.DeliveredAt(),
		Version:            o.Version(),
	}
}
