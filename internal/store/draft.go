package store

import (
	"context"
	"encoding/json"
	"time"
)

// DraftFreshness is how long a saved rating draft stays usable. The
// reader enforces it even when the backing KV also applies a TTL, so a
// stale draft is never offered back to the user.
const DraftFreshness = 7 * 24 * time.Hour

// RatingDraft is in-progress review input for one product of one order.
type RatingDraft struct {
	Stars   int       `json:"stars"`
	Comment string    `json:"comment"`
	SavedAt time.Time `json:"savedAt"`
}

// DraftStore shares the KV surface with TimelineStore under its own key
// prefix.
type DraftStore struct {
	kv  KV
	now func() time.Time
}

func NewDraftStore(kv KV) *DraftStore {
	return &DraftStore{kv: kv, now: time.Now}
}

// Load returns the draft if present and fresh. Stale or malformed drafts
// are discarded and reported as a miss.
func (s *DraftStore) Load(ctx context.Context, orderID, productID string) (RatingDraft, bool, error) {
	key := draftKey(orderID, productID)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return RatingDraft{}, false, err
	}
	var d RatingDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return RatingDraft{}, false, nil
	}
	if s.now().Sub(d.SavedAt) > DraftFreshness {
		_ = s.kv.Delete(ctx, key)
		return RatingDraft{}, false, nil
	}
	return d, true, nil
}

// Save stamps and stores the draft with the freshness window as TTL.
func (s *DraftStore) Save(ctx context.Context, orderID, productID string, d RatingDraft) error {
	d.SavedAt = s.now()
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, draftKey(orderID, productID), raw, DraftFreshness)
}

// Delete removes the draft, typically after the rating was submitted.
func (s *DraftStore) Delete(ctx context.Context, orderID, productID string) error {
	return s.kv.Delete(ctx, draftKey(orderID, productID))
}
