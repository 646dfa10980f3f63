package model

// Transitions lists, per current status, the statuses an order may move
// to next. Statuses missing from the map are terminal: no moves allowed.
// Completed is terminal too; return/refund cycles are opened by the
// orders backend (and arrive here via order reads and status events),
// never by a transition request against a completed order.
//
// Note: refund_failed → return_requested re-enters the exchange path
// after a failed refund. That is how the storefront behaves today;
// keep it in sync with the product, not with intuition.
var Transitions = map[Status][]Status{
	StatusCreated:         {StatusPaid, StatusPaymentFailed, StatusProcessing, StatusCancelled},
	StatusPaid:            {StatusProcessing, StatusCancelled},
	StatusProcessing:      {StatusShipping, StatusCancelled},
	StatusShipping:        {StatusCompleted},
	StatusReturnRequested: {StatusReturnAccepted, StatusReturnRejected},
	StatusReturnAccepted:  {StatusReturnSettled, StatusRefundPending},
	StatusRefundPending:   {StatusRefundSucceeded, StatusRefundFailed},
	StatusRefundSucceeded: {StatusReturnSettled},
	StatusRefundFailed:    {StatusReturnRequested},
}

// ValidNextStatuses returns the allowed next statuses for current, or an
// empty slice for terminal and unknown statuses. Callers never get an
// error here; an unknown status simply has nowhere to go.
func ValidNextStatuses(current Status) []Status {
	next, ok := Transitions[current]
	if !ok {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from → to is an allowed move.
func CanTransition(from, to Status) bool {
	for _, s := range Transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(Transitions[s]) == 0
}
