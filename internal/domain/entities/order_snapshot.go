package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderSnapshot is the flat, serializable form of an Order used by the
// persistence adapters. It carries no behavior.
type OrderSnapshot struct {
	ID                 uuid.UUID             `json:"id"`
	Code               string                `json:"code"`
	VehicleID          uuid.UUID             `json:"vehicle_id"`
	Parts              []PartItem            `json:"parts"`
	Services           []ServiceItem         `json:"services"`
	Quote              *Quote                `json:"quote,omitempty"`
	Status             OrderStatus           `json:"status"`
	CreatedAt          time.Time             `json:"created_at"`
	ExecutionStartedAt *time.Time            `json:"execution_started_at,omitempty"`
	FinishedAt         *time.Time            `json:"finished_at,omitempty"`
	DeliveredAt        *time.Time            `json:"delivered_at,omitempty"`
	StockState         StockInteractionState `json:"stock_state"`
	StockFailureReason StockFailureReason    `json:"stock_failure_reason,omitempty"`
	StockCorrelationID string                `json:"stock_correlation_id,omitempty"`
	Version            int64                 `json:"version"`
}

func (o *Order) Snapshot() OrderSnapshot {
	return OrderSnapshot{
		ID:                 o.id,
		Code:               o.code,
		VehicleID:          o.vehicleID,
		Parts:              o.Parts(),
		Services:           o.Services(),
		Quote:              o.Quote(),
		Status:             o.status,
		CreatedAt:          o.history.CreatedAt(),
		ExecutionStartedAt: o.history.ExecutionStartedAt(),
		FinishedAt:         o.history.FinishedAt(),
		DeliveredAt:        o.history.DeliveredAt(),
		StockState:         o.stock.State(),
		StockFailureReason: o.stock.FailureReason(),
		StockCorrelationID: o.stockCorrelationID,
		Version:            o.version,
	}
}

// RestoreOrder rebuilds an aggregate from storage, enforcing the same
// invariants as the constructors.
func RestoreOrder(s OrderSnapshot) (*Order, error) {
	if s.ID == uuid.Nil {
		return nil, fmt.Errorf("restore order: missing id")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("restore order %s: unknown status %q", s.ID, s.Status)
	}
	history, err := NewTemporalHistory(s.CreatedAt, s.ExecutionStartedAt, s.FinishedAt, s.DeliveredAt)
	if err != nil {
		return nil, fmt.Errorf("restore order %s: %w", s.ID, err)
	}
	stock, err := RestoreStockInteraction(s.StockState, s.StockFailureReason)
	if err != nil {
		return nil, fmt.Errorf("restore order %s: %w", s.ID, err)
	}

	o := &Order{
		id:                 s.ID,
		code:               s.Code,
		vehicleID:          s.VehicleID,
		parts:              append([]PartItem(nil), s.Parts...),
		services:           append([]ServiceItem(nil), s.Services...),
		status:             s.Status,
		history:            history,
		stock:              stock,
		stockCorrelationID: s.StockCorrelationID,
		version:            s.Version,
	}
	if s.Quote != nil {
		q := *s.Quote
		o.quote = &q
	}
	return o, nil
}
