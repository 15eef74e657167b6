package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the priced estimate (orçamento) of an order.
//
// Domain notes:
//   - An order holds at most one quote; rejecting it discards it.
//   - Total = sum(unit price x quantity) over parts + sum(price) over services.
type Quote struct {
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

func calculateQuoteTotal(parts []PartItem, services []ServiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p.Subtotal())
	}
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}
