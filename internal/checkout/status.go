package checkout

type Status string

const (
	StatusIdle              Status = "IDLE"
	StatusValidatingAddress Status = "VALIDATING_ADDRESS"
	StatusCreatingOrder     Status = "CREATING_ORDER"
	StatusAwaitingPayment   Status = "AWAITING_PAYMENT"
	StatusVerifyingPayment  Status = "VERIFYING_PAYMENT"
	StatusCompleted         Status = "COMPLETED"
)

// IsTerminal reports whether the attempt is over. A new attempt may start
// from a terminal status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Busy reports whether a network call of the attempt is in flight.
func (s Status) Busy() bool {
	return s == StatusValidatingAddress || s == StatusCreatingOrder || s == StatusVerifyingPayment
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

var transitions = map[Status][]Status{
	StatusIdle:              {StatusValidatingAddress},
	StatusValidatingAddress: {StatusIdle, StatusCreatingOrder},
	StatusCreatingOrder:     {StatusIdle, StatusAwaitingPayment},
	StatusAwaitingPayment:   {StatusIdle, StatusVerifyingPayment},
	StatusVerifyingPayment:  {StatusIdle, StatusCompleted},
	StatusCompleted:         {StatusIdle},
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
