package entities

import (
	"errors"
	"fmt"
)

// ErrDomainRule matches every DomainRuleError through errors.Is.
var ErrDomainRule = errors.New("domain rule violated")

// DomainRuleError is returned by the Order aggregate when an operation is not
// allowed in the current state. Code is stable and safe to expose to callers.
type DomainRuleError struct {
	Code    string
	Message string
}

func (e *DomainRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainRuleError) Is(target error) bool {
	if target == ErrDomainRule {
		return true
	}
	t, ok := target.(*DomainRuleError)
	return ok && t.Code == e.Code
}

func newRuleError(code, message string) *DomainRuleError {
	return &DomainRuleError{Code: code, Message: message}
}

var (
	ErrInvalidStatusTransition  = newRuleError("INVALID_STATUS_TRANSITION", "status transition not allowed")
	ErrOrderWithoutItems        = newRuleError("ORDER_WITHOUT_ITEMS", "quote requires at least one part or service")
	ErrQuoteNotFound            = newRuleError("QUOTE_NOT_FOUND", "order has no quote")
	ErrItemsLocked              = newRuleError("ITEMS_LOCKED", "items can only change during diagnosis")
	ErrItemNotFound             = newRuleError("ITEM_NOT_FOUND", "item not present in order")
	ErrStockPending             = newRuleError("STOCK_PENDING", "stock reduction outcome is still unresolved")
	ErrNoStockInteraction       = newRuleError("NO_STOCK_INTERACTION", "order is not waiting for a stock reduction")
	ErrStockAlreadyConfirmed    = newRuleError("STOCK_ALREADY_CONFIRMED", "stock reduction was already confirmed")
	ErrStockAlreadyCompensated  = newRuleError("STOCK_ALREADY_COMPENSATED", "stock reduction was already compensated")
	ErrInvalidTemporalHistory   = newRuleError("INVALID_TEMPORAL_HISTORY", "timestamps must be non-decreasing")
	ErrInvalidItem              = newRuleError("INVALID_ITEM", "item must have a positive quantity and non-negative price")
	ErrInvalidVehicle           = newRuleError("INVALID_VEHICLE", "vehicle id is required")
	ErrInvalidStockFailureCause = newRuleError("INVALID_STOCK_FAILURE_REASON", "unknown stock reduction failure reason")
)
