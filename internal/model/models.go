// models.go
package model

import (
	"encoding/json"
	"sort"
	"time"
)

// StatusEntry is one point in an order's lifecycle as shown to the user.
type StatusEntry struct {
	Status    Status
	UpdatedAt time.Time
}

// Stored history and backend payloads carry the display label, not the
// internal code, so entries marshal through a wire shape.
type statusEntryJSON struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e StatusEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusEntryJSON{Status: e.Status.Label(), UpdatedAt: e.UpdatedAt})
}

// UnmarshalJSON accepts labels or internal codes. An unrecognized status
// leaves e.Status empty; readers drop such entries instead of failing.
func (e *StatusEntry) UnmarshalJSON(b []byte) error {
	var w statusEntryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if s, ok := ParseAny(w.Status); ok {
		e.Status = s
	} else {
		e.Status = ""
	}
	e.UpdatedAt = w.UpdatedAt
	return nil
}

// Timeline is the ordered status history of one (user, order) pair.
type Timeline []StatusEntry

func (t Timeline) Contains(s Status) bool {
	for _, e := range t {
		if e.Status == s {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of the given statuses appears in t.
func (t Timeline) ContainsAny(statuses ...Status) bool {
	for _, s := range statuses {
		if t.Contains(s) {
			return true
		}
	}
	return false
}

// First returns the earliest entry in stored order.
func (t Timeline) First() (StatusEntry, bool) {
	if len(t) == 0 {
		return StatusEntry{}, false
	}
	return t[0], true
}

func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

// SortByTime orders entries ascending by UpdatedAt, keeping the relative
// order of equal timestamps stable.
func (t Timeline) SortByTime() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].UpdatedAt.Before(t[j].UpdatedAt)
	})
}

// Compact drops entries whose status could not be resolved on decode.
func (t Timeline) Compact() Timeline {
	out := t[:0]
	for _, e := range t {
		if e.Status != "" {
			out = append(out, e)
		}
	}
	return out
}

// DefaultProductName is shown when the backend omits an item name.
const DefaultProductName = "Sản phẩm không tên"

// OrderItem is one line of an order, read-only to this service.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order mirrors the orders backend's view of an order. This service owns
// only the timeline derived from it, never the order itself.
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Status        Status      `json:"status"`
	Items         []OrderItem `json:"item"`
	StatusUpdates Timeline    `json:"statusUpdates,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
