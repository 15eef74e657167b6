package entities

// OrderStatus represents the lifecycle of a work order (ordem de serviço).
//
// Initial status is Recebida; Cancelada and Entregue are terminal.
// Allowed moves are listed in allowedTransitions; everything else is rejected.

type OrderStatus string

const (
	OrderStatusCancelada           OrderStatus = "Cancelada"
	OrderStatusRecebida            OrderStatus = "Recebida"
	OrderStatusEmDiagnostico       OrderStatus = "EmDiagnostico"
	OrderStatusAguardandoAprovacao OrderStatus = "AguardandoAprovacao"
	OrderStatusEmExecucao          OrderStatus = "EmExecucao"
	OrderStatusFinalizada          OrderStatus = "Finalizada"
	OrderStatusEntregue            OrderStatus = "Entregue"
)

var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusRecebida:            {OrderStatusEmDiagnostico, OrderStatusCancelada},
	OrderStatusEmDiagnostico:       {OrderStatusAguardandoAprovacao, OrderStatusCancelada},
	OrderStatusAguardandoAprovacao: {OrderStatusEmExecucao, OrderStatusEmDiagnostico, OrderStatusCancelada},
	OrderStatusEmExecucao:          {OrderStatusFinalizada, OrderStatusCancelada},
	OrderStatusFinalizada:          {OrderStatusEntregue},
}

// CanTransitionTo reports whether the adjacency table allows s -> target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelada || s == OrderStatusEntregue
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCancelada, OrderStatusRecebida, OrderStatusEmDiagnostico,
		OrderStatusAguardandoAprovacao, OrderStatusEmExecucao,
		OrderStatusFinalizada, OrderStatusEntregue:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}
