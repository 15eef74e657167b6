package entities

import "github.com/google/uuid"

// StockReductionItem is one line of a stock reduction request.
type StockReductionItem struct {
	StockItemID uuid.UUID `json:"stockItemId"`
	Quantity    int       `json:"quantity"`
}

// StockReductionRequest is sent to the stock service once an approved order
// with physical items has been persisted as awaiting reduction.
type StockReductionRequest struct {
	CorrelationID  string               `json:"correlationId"`
	OrderID        uuid.UUID            `json:"orderId"`
	PreviousStatus OrderStatus          `json:"previousStatus"`
	Items          []StockReductionItem `json:"items"`
}

// StockReductionResult is the asynchronous answer of the stock service.
// FailureReason is only meaningful when Success is false.
type StockReductionResult struct {
	CorrelationID string             `json:"correlationId"`
	OrderID       uuid.UUID          `json:"orderId"`
	Success       bool               `json:"success"`
	FailureReason StockFailureReason `json:"failureReason,omitempty"`
}

// Outcome is a short label used for dedupe keys and logs.
func (r StockReductionResult) Outcome() string {
	if r.Success {
		return "success"
	}
	return "failure"
}
