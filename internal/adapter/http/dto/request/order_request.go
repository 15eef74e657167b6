package request

import (
	"errors"
	"os_service_api/internal/domain/entities"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItemID = errors.New("invalid item id")
)

type CreateOrderRequest struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
}

// AddPartRequest adds a part (peca) or consumable (insumo) taken from stock.
type AddPartRequest struct {
	StockItemID string          `json:"stock_item_id" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	Type        string          `json:"type" binding:"required,oneof=peca insumo"`
}

func (r AddPartRequest) ToPartItem() (entities.PartItem, error) {
	id, err := parseItemID(r.StockItemID)
	if err != nil {
		return entities.PartItem{}, err
	}
	return entities.PartItem{
		StockItemID: id,
		Name:        strings.TrimSpace(r.Name),
		UnitPrice:   r.UnitPrice,
		Quantity:    r.Quantity,
		Type:        entities.PartType(r.Type),
	}, nil
}

type AddServiceRequest struct {
	ServiceID string          `json:"service_id" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

func (r AddServiceRequest) ToServiceItem() (entities.ServiceItem, error) {
	id, err := parseItemID(r.ServiceID)
	if err != nil {
		return entities.ServiceItem{}, err
	}
	return entities.ServiceItem{
		ServiceID: id,
		Name:      strings.TrimSpace(r.Name),
		Price:     r.Price,
	}, nil
}

func parseItemID(v string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidItemID
	}
	return id, nil
}
