package entities

// StockInteractionState is the closed set of states an order can be in with
// respect to the external stock reduction.
type StockInteractionState string

const (
	StockInteractionNone        StockInteractionState = "sem_interacao"
	StockInteractionAwaiting    StockInteractionState = "aguardando_reducao"
	StockInteractionConfirmed   StockInteractionState = "reducao_confirmada"
	StockInteractionCompensated StockInteractionState = "reducao_compensada"
)

// StockFailureReason explains why a stock reduction was compensated.
type StockFailureReason string

const (
	StockFailureInsufficientStock  StockFailureReason = "estoque_insuficiente"
	StockFailureInternalError      StockFailureReason = "erro_interno"
	StockFailureServiceUnavailable StockFailureReason = "servico_indisponivel"
	StockFailureTimeout            StockFailureReason = "timeout"
)

func (r StockFailureReason) IsValid() bool {
	switch r {
	case StockFailureInsufficientStock, StockFailureInternalError, StockFailureServiceUnavailable, StockFailureTimeout:
		return true
	}
	return false
}

// StockInteraction is an immutable value. Use the constructors; the zero value
// is equivalent to NoStockInteraction.
type StockInteraction struct {
	state         StockInteractionState
	failureReason StockFailureReason
}

func NoStockInteraction() StockInteraction {
	return StockInteraction{state: StockInteractionNone}
}

func AwaitingStockReduction() StockInteraction {
	return StockInteraction{state: StockInteractionAwaiting}
}

func ConfirmedStockReduction() StockInteraction {
	return StockInteraction{state: StockInteractionConfirmed}
}

func CompensatedStockReduction(reason StockFailureReason) (StockInteraction, error) {
	if !reason.IsValid() {
		return StockInteraction{}, ErrInvalidStockFailureCause
	}
	return StockInteraction{state: StockInteractionCompensated, failureReason: reason}, nil
}

// RestoreStockInteraction rebuilds a persisted value, rejecting combinations
// that the constructors cannot produce.
func RestoreStockInteraction(state StockInteractionState, reason StockFailureReason) (StockInteraction, error) {
	switch state {
	case "", StockInteractionNone:
		return NoStockInteraction(), nil
	case StockInteractionAwaiting:
		return AwaitingStockReduction(), nil
	case StockInteractionConfirmed:
		return ConfirmedStockReduction(), nil
	case StockInteractionCompensated:
		return CompensatedStockReduction(reason)
	}
	return StockInteraction{}, newRuleError("INVALID_STOCK_INTERACTION", "unknown stock interaction state "+string(state))
}

func (s StockInteraction) State() StockInteractionState {
	if s.state == "" {
		return StockInteractionNone
	}
	return s.state
}

// FailureReason is empty unless the state is compensated.
func (s StockInteraction) FailureReason() StockFailureReason {
	return s.failureReason
}

// RequiresStockReduction is false only for orders without physical items.
func (s StockInteraction) RequiresStockReduction() bool {
	return s.State() != StockInteractionNone
}

func (s StockInteraction) IsAwaiting() bool {
	return s.State() == StockInteractionAwaiting
}

// NoPending reports that nothing blocks finishing the execution.
func (s StockInteraction) NoPending() bool {
	return s.State() != StockInteractionAwaiting
}

// Confirm moves Awaiting to Confirmed. Confirming twice is a no-op.
func (s StockInteraction) Confirm() (StockInteraction, error) {
	switch s.State() {
	case StockInteractionAwaiting, StockInteractionConfirmed:
		return ConfirmedStockReduction(), nil
	case StockInteractionCompensated:
		return s, ErrStockAlreadyCompensated
	}
	return s, ErrNoStockInteraction
}

// Compensate moves Awaiting to Compensated. Compensating twice is a no-op and
// keeps the first reason.
func (s StockInteraction) Compensate(reason StockFailureReason) (StockInteraction, error) {
	switch s.State() {
	case StockInteractionAwaiting:
		return CompensatedStockReduction(reason)
	case StockInteractionCompensated:
		return s, nil
	case StockInteractionConfirmed:
		return s, ErrStockAlreadyConfirmed
	}
	return s, ErrNoStockInteraction
}
