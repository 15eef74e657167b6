package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartType distinguishes parts (peças) from consumables (insumos). Both are
// physical and both are reduced from stock.
type PartType string

const (
	PartTypePeca   PartType = "peca"
	PartTypeInsumo PartType = "insumo"
)

type PartItem struct {
	StockItemID uuid.UUID       `json:"stock_item_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Type        PartType        `json:"type"`
}

func (p PartItem) Subtotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p PartItem) validate() error {
	if p.StockItemID == uuid.Nil || p.Quantity <= 0 || p.UnitPrice.IsNegative() {
		return ErrInvalidItem
	}
	if p.Type != PartTypePeca && p.Type != PartTypeInsumo {
		return ErrInvalidItem
	}
	return nil
}

type ServiceItem struct {
	ServiceID uuid.UUID       `json:"service_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

func (s ServiceItem) validate() error {
	if s.ServiceID == uuid.Nil || s.Price.IsNegative() {
		return ErrInvalidItem
	}
	return nil
}
