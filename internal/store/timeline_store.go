package store

import (
	"context"
	"encoding/json"

	"order-timeline-service/internal/model"
)

// TimelineStore reads and writes per-(user, order) status histories.
// Writes are last-write-wins; there is no cross-writer coordination and
// the data model does not need any.
type TimelineStore struct {
	kv KV
}

func NewTimelineStore(kv KV) *TimelineStore {
	return &TimelineStore{kv: kv}
}

// Load returns the stored timeline. Malformed stored data is a cache
// miss, never an error: the reconstructor resynthesizes from scratch in
// that case. The error return is reserved for backend transport trouble.
func (s *TimelineStore) Load(ctx context.Context, userID, orderID string) (model.Timeline, bool, error) {
	raw, ok, err := s.kv.Get(ctx, historyKey(userID, orderID))
	if err != nil || !ok {
		return nil, false, err
	}
	var t model.Timeline
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false, nil
	}
	t = t.Compact()
	if len(t) == 0 {
		return nil, false, nil
	}
	return t, true, nil
}

// Save serializes and overwrites the stored timeline.
func (s *TimelineStore) Save(ctx context.Context, userID, orderID string, t model.Timeline) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, historyKey(userID, orderID), raw, 0)
}
