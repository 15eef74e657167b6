package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order is the work order aggregate (ordem de serviço).
//
// Fields are only changed through methods. The aggregate performs no I/O and
// never reads the clock: callers pass the instant of each timed transition.
//
// Storage model:
//   - PK: id
//   - version is the optimistic concurrency token, bumped by the store on update.
type Order struct {
	id        uuid.UUID
	code      string
	vehicleID uuid.UUID
	parts     []PartItem
	services  []ServiceItem
	quote     *Quote
	status    OrderStatus
	history   TemporalHistory
	stock     StockInteraction

	// stockCorrelationID ties the current stock reduction saga to its logs and
	// messages. Diagnostic only.
	stockCorrelationID string
	version            int64
}

func NewOrder(vehicleID uuid.UUID, at time.Time) (*Order, error) {
	if vehicleID == uuid.Nil {
		return nil, ErrInvalidVehicle
	}
	history, err := NewTemporalHistory(at, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return &Order{
		id:        uuid.New(),
		code:      newOrderCode(at),
		vehicleID: vehicleID,
		status:    OrderStatusRecebida,
		history:   history,
		stock:     NoStockInteraction(),
	}, nil
}

func newOrderCode(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("OS-%s-%s", at.UTC().Format("20060102"), suffix)
}

func (o *Order) ID() uuid.UUID { return o.id }
func (o *Order) Code() string { return o.code }
func (o *Order) VehicleID() uuid.UUID { return o.vehicleID }
func (o *Order) Status() OrderStatus { return o.status }
func (o *Order) History() TemporalHistory { return o.history }
func (o *Order) StockInteraction() StockInteraction { return o.stock }
func (o *Order) StockCorrelationID() string { return o.stockCorrelationID }
func (o *Order) Version() int64 { return o.version }

func (o *Order) Parts() []PartItem {
	return append([]PartItem(nil), o.parts...)
}

func (o *Order) Services() []ServiceItem {
	return append([]ServiceItem(nil), o.services...)
}

func (o *Order) Quote() *Quote {
	if o.quote == nil {
		return nil
	}
	q := *o.quote
	return &q
}

// HasPhysicalItems reports whether approving the order needs a stock reduction.
func (o *Order) HasPhysicalItems() bool {
	return len(o.parts) > 0
}

// StockReductionItems groups parts by stock item, keeping first-seen order.
func (o *Order) StockReductionItems() []StockReductionItem {
	idx := make(map[uuid.UUID]int, len(o.parts))
	items := make([]StockReductionItem, 0, len(o.parts))
	for _, p := range o.parts {
		if i, ok := idx[p.StockItemID]; ok {
			items[i].Quantity += p.Quantity
			continue
		}
		idx[p.StockItemID] = len(items)
		items = append(items, StockReductionItem{StockItemID: p.StockItemID, Quantity: p.Quantity})
	}
	return items
}

func (o *Order) transitionTo(target OrderStatus) error {
	if !o.status.CanTransitionTo(target) {
		return &DomainRuleError{
			Code:    ErrInvalidStatusTransition.Code,
			Message: fmt.Sprintf("cannot move order from %s to %s", o.status, target),
		}
	}
	o.status = target
	return nil
}

func (o *Order) requireStatus(expected OrderStatus, target OrderStatus) error {
	if o.status != expected {
		return &DomainRuleError{
			Code:    ErrInvalidStatusTransition.Code,
			Message: fmt.Sprintf("cannot move order from %s to %s", o.status, target),
		}
	}
	return nil
}

func (o *Order) StartDiagnosis() error {
	if err := o.requireStatus(OrderStatusRecebida, OrderStatusEmDiagnostico); err != nil {
		return err
	}
	return o.transitionTo(OrderStatusEmDiagnostico)
}

// AddPart adds a part or consumable. Adding a stock item already present
// increases its quantity.
func (o *Order) AddPart(p PartItem) error {
	if o.status != OrderStatusEmDiagnostico {
		return ErrItemsLocked
	}
	if err := p.validate(); err != nil {
		return err
	}
	for i := range o.parts {
		if o.parts[i].StockItemID == p.StockItemID {
			o.parts[i].Quantity += p.Quantity
			return nil
		}
	}
	o.parts = append(o.parts, p)
	return nil
}

func (o *Order) RemovePart(stockItemID uuid.UUID) error {
	if o.status != OrderStatusEmDiagnostico {
		return ErrItemsLocked
	}
	for i := range o.parts {
		if o.parts[i].StockItemID == stockItemID {
			o.parts = append(o.parts[:i], o.parts[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (o *Order) AddService(s ServiceItem) error {
	if o.status != OrderStatusEmDiagnostico {
		return ErrItemsLocked
	}
	if err := s.validate(); err != nil {
		return err
	}
	o.services = append(o.services, s)
	return nil
}

func (o *Order) RemoveService(serviceID uuid.UUID) error {
	if o.status != OrderStatusEmDiagnostico {
		return ErrItemsLocked
	}
	for i := range o.services {
		if o.services[i].ServiceID == serviceID {
			o.services = append(o.services[:i], o.services[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (o *Order) GenerateQuote(at time.Time) error {
	if err := o.requireStatus(OrderStatusEmDiagnostico, OrderStatusAguardandoAprovacao); err != nil {
		return err
	}
	if len(o.parts) == 0 && len(o.services) == 0 {
		return ErrOrderWithoutItems
	}
	o.quote = &Quote{
		Total:     calculateQuoteTotal(o.parts, o.services),
		CreatedAt: at.UTC(),
	}
	return o.transitionTo(OrderStatusAguardandoAprovacao)
}

// ApproveQuote starts the execution. For orders with physical items it only
// records the intent to reduce stock; the caller publishes the request after
// persisting the order.
func (o *Order) ApproveQuote(at time.Time, correlationID string) error {
	if err := o.requireStatus(OrderStatusAguardandoAprovacao, OrderStatusEmExecucao); err != nil {
		return err
	}
	if o.quote == nil {
		return ErrQuoteNotFound
	}
	history, err := o.history.withExecutionStart(at)
	if err != nil {
		return err
	}
	if err := o.transitionTo(OrderStatusEmExecucao); err != nil {
		return err
	}

	o.history = history
	if o.HasPhysicalItems() {
		o.stock = AwaitingStockReduction()
		o.stockCorrelationID = correlationID
	} else {
		o.stock = NoStockInteraction()
		o.stockCorrelationID = ""
	}
	return nil
}

func (o *Order) RejectQuote() error {
	if err := o.requireStatus(OrderStatusAguardandoAprovacao, OrderStatusEmDiagnostico); err != nil {
		return err
	}
	if err := o.transitionTo(OrderStatusEmDiagnostico); err != nil {
		return err
	}
	o.quote = nil
	return nil
}

// ConfirmStockReduction is valid in any status while the reduction is
// awaiting or already confirmed. It never changes the order status.
func (o *Order) ConfirmStockReduction() error {
	stock, err := o.stock.Confirm()
	if err != nil {
		return err
	}
	o.stock = stock
	return nil
}

// RegisterStockReductionFailure compensates an awaiting reduction: the order
// goes back from EmExecucao to AguardandoAprovacao and loses its execution
// start. Calling it again once compensated is a no-op.
func (o *Order) RegisterStockReductionFailure(reason StockFailureReason) error {
	if o.stock.State() == StockInteractionCompensated {
		return nil
	}
	stock, err := o.stock.Compensate(reason)
	if err != nil {
		return err
	}

	if o.status == OrderStatusEmExecucao {
		history, err := o.history.withoutExecutionStart()
		if err != nil {
			return err
		}
		o.history = history
		o.status = OrderStatusAguardandoAprovacao
	}
	o.stock = stock
	return nil
}

func (o *Order) FinishExecution(at time.Time) error {
	if err := o.requireStatus(OrderStatusEmExecucao, OrderStatusFinalizada); err != nil {
		return err
	}
	if !o.stock.NoPending() {
		return ErrStockPending
	}
	history, err := o.history.withFinish(at)
	if err != nil {
		return err
	}
	if err := o.transitionTo(OrderStatusFinalizada); err != nil {
		return err
	}
	o.history = history
	return nil
}

func (o *Order) Deliver(at time.Time) error {
	if err := o.requireStatus(OrderStatusFinalizada, OrderStatusEntregue); err != nil {
		return err
	}
	history, err := o.history.withDelivery(at)
	if err != nil {
		return err
	}
	if err := o.transitionTo(OrderStatusEntregue); err != nil {
		return err
	}
	o.history = history
	return nil
}

func (o *Order) Cancel() error {
	return o.transitionTo(OrderStatusCancelada)
}
