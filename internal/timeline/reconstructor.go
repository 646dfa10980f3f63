// Package timeline rebuilds a plausible status history for an order when
// the recorded one is missing or incomplete, and merges locally stored
// history with history supplied by the orders backend.
package timeline

import (
	"time"

	"order-timeline-service/internal/model"
)

// Synthetic timestamp offsets for predecessors that were never recorded.
// They exist only so the UI lists entries in a sensible order; they are
// not real event times and must never feed analytics.
const (
	predecessorOffset      = 5 * time.Minute
	grandPredecessorOffset = 10 * time.Minute
)

// Statuses that open a fresh request cycle (a return or refund initiated
// after a finished journey). Their timeline must not chain onto the
// prior journey's history.
var freshCycleRoots = map[model.Status]bool{
	model.StatusReturnRequested: true,
	model.StatusRefundPending:   true,
}

// Statuses whose logical predecessor must be displayed even when it was
// never separately recorded.
var requiredPredecessor = map[model.Status]model.Status{
	model.StatusRefundSucceeded: model.StatusRefundPending,
	model.StatusRefundFailed:    model.StatusRefundPending,
	model.StatusReturnAccepted:  model.StatusReturnRequested,
	model.StatusReturnRejected:  model.StatusReturnRequested,
}

var refundFlowMarkers = []model.Status{
	model.StatusRefundPending,
	model.StatusRefundSucceeded,
	model.StatusRefundFailed,
}

// A rule pairs a predicate with a synthesis step. Rules are evaluated in
// order and the first match wins, which keeps the priority between the
// special cases explicit.
type rule struct {
	name  string
	match func(o *model.Order, stored model.Timeline) bool
	apply func(o *model.Order, stored model.Timeline) model.Timeline
}

var rules = []rule{
	{
		name: "fresh cycle root",
		match: func(o *model.Order, stored model.Timeline) bool {
			if !freshCycleRoots[o.Status] {
				return false
			}
			first, ok := stored.First()
			return !ok || first.Status != o.Status
		},
		apply: func(o *model.Order, _ model.Timeline) model.Timeline {
			return model.Timeline{{Status: o.Status, UpdatedAt: o.UpdatedAt}}
		},
	},
	{
		name: "missing predecessor",
		match: func(o *model.Order, stored model.Timeline) bool {
			pred, ok := requiredPredecessor[o.Status]
			return ok && !stored.Contains(pred)
		},
		apply: func(o *model.Order, _ model.Timeline) model.Timeline {
			// Reaching this status without its predecessor on record
			// means the stored history belongs to an earlier journey;
			// start the cycle over, like the fresh-cycle rule does.
			pred := requiredPredecessor[o.Status]
			return model.Timeline{
				{Status: pred, UpdatedAt: o.UpdatedAt.Add(-predecessorOffset)},
				{Status: o.Status, UpdatedAt: o.UpdatedAt},
			}
		},
	},
	{
		name: "settled return with sparse history",
		match: func(o *model.Order, stored model.Timeline) bool {
			return o.Status == model.StatusReturnSettled && len(stored) < 3
		},
		apply: func(o *model.Order, stored model.Timeline) model.Timeline {
			// Which cycle led here? A refund marker in the stored
			// history means the refund path; otherwise assume exchange.
			first, second := model.StatusReturnRequested, model.StatusReturnAccepted
			if stored.ContainsAny(refundFlowMarkers...) {
				first, second = model.StatusRefundPending, model.StatusRefundSucceeded
			}
			return model.Timeline{
				{Status: first, UpdatedAt: o.UpdatedAt.Add(-grandPredecessorOffset)},
				{Status: second, UpdatedAt: o.UpdatedAt.Add(-predecessorOffset)},
				{Status: o.Status, UpdatedAt: o.UpdatedAt},
			}
		},
	},
	{
		name: "no recorded history",
		match: func(_ *model.Order, stored model.Timeline) bool {
			return len(stored) == 0
		},
		apply: func(o *model.Order, _ model.Timeline) model.Timeline {
			return defaultTimeline(o)
		},
	},
}

// Reconstruct derives the canonical timeline for an order from whatever
// was previously stored. The second return value reports whether a rule
// rewrote the history; callers persist the result in that case so
// subsequent reads are stable until the next transition.
func Reconstruct(o *model.Order, stored model.Timeline) (model.Timeline, bool) {
	for _, r := range rules {
		if r.match(o, stored) {
			return r.apply(o, stored), true
		}
	}
	return stored, false
}

// ApplyTransition computes the timeline after the order moved into its
// current status. Statuses with synthesis rules go through Reconstruct;
// everything else (cancellation included) is a plain append-and-sort.
func ApplyTransition(o *model.Order, stored model.Timeline) model.Timeline {
	if t, changed := Reconstruct(o, stored); changed {
		return t
	}
	return Merge(stored, model.Timeline{{Status: o.Status, UpdatedAt: o.UpdatedAt}})
}

// defaultTimeline synthesizes a full history for an order with none:
// pick the first flow containing the current status and spread the
// prefix evenly between createdAt and updatedAt. A status outside every
// flow gets the minimal two-entry history.
func defaultTimeline(o *model.Order) model.Timeline {
	flow, idx, ok := model.FlowFor(o.Status)
	if !ok {
		return model.Timeline{
			{Status: model.StatusCreated, UpdatedAt: o.CreatedAt},
			{Status: o.Status, UpdatedAt: o.UpdatedAt},
		}
	}
	if idx == 0 {
		return model.Timeline{{Status: o.Status, UpdatedAt: o.CreatedAt}}
	}
	span := o.UpdatedAt.Sub(o.CreatedAt)
	out := make(model.Timeline, 0, idx+1)
	for k := 0; k <= idx; k++ {
		out = append(out, model.StatusEntry{
			Status:    flow.Statuses[k],
			UpdatedAt: o.CreatedAt.Add(span * time.Duration(k) / time.Duration(idx)),
		})
	}
	return out
}
