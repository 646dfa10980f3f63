package model

// Flow is one of the predefined end-to-end order journeys. When no
// history has been recorded for an order, the reconstructor picks the
// first flow containing the order's current status and synthesizes the
// prefix up to that status.
type Flow struct {
	Name     string
	Statuses []Status
}

// Flows in matching priority order. Statuses shared between flows
// (created, processing, ...) resolve to the earliest flow that lists
// them, which is the COD journey.
var Flows = []Flow{
	{
		Name:     "cod",
		Statuses: []Status{StatusCreated, StatusProcessing, StatusShipping, StatusCompleted},
	},
	{
		Name:     "online_payment_success",
		Statuses: []Status{StatusCreated, StatusPaid, StatusProcessing, StatusShipping, StatusCompleted},
	},
	{
		Name:     "online_payment_failed",
		Statuses: []Status{StatusCreated, StatusPaymentFailed},
	},
	{
		Name:     "return_success",
		Statuses: []Status{StatusReturnRequested, StatusReturnAccepted, StatusReturnSettled},
	},
	{
		Name:     "return_fail",
		Statuses: []Status{StatusReturnRequested, StatusReturnRejected},
	},
	{
		Name:     "refund_success",
		Statuses: []Status{StatusRefundPending, StatusRefundSucceeded},
	},
	{
		Name:     "refund_fail",
		Statuses: []Status{StatusRefundPending, StatusRefundFailed},
	},
}

// FlowFor returns the first flow containing s and the index of s within
// it. ok is false when s belongs to no flow (e.g. cancelled, which can
// interrupt any journey).
func FlowFor(s Status) (flow Flow, idx int, ok bool) {
	for _, f := range Flows {
		for i, fs := range f.Statuses {
			if fs == s {
				return f, i, true
			}
		}
	}
	return Flow{}, 0, false
}
