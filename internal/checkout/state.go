package checkout

// State tracks a checkout through its steps. Transitions are logged; Failed
// is reachable from any step.
type State string

const (
	StateValidating     State = "VALIDATING"
	StateCartValidated  State = "CART_VALIDATED"
	StateOrderPersisted State = "ORDER_PERSISTED"
	StateStockAdjusted  State = "STOCK_ADJUSTED"
	StateCartCleared    State = "CART_CLEARED"
	StateComplete       State = "COMPLETE"
	StateFailed         State = "FAILED"
)

func (s State) String() string { return string(s) }
