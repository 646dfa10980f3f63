// Package store persists timelines and rating drafts behind a small
// key/value abstraction so the backing engine (MongoDB, Redis, memory)
// is an injection choice, never a global.
package store

import (
	"context"
	"fmt"
	"time"
)

// KV is the persistence surface the stores are built on. A ttl of zero
// means the entry does not expire. Get reports a miss with ok=false and
// reserves the error return for transport failures.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key layout carried over from the storefront's persistence surface.
func historyKey(userID, orderID string) string {
	return fmt.Sprintf("user_%s_order_%s_status_history", userID, orderID)
}

func draftKey(orderID, productID string) string {
	return fmt.Sprintf("rating_draft_%s_%s", orderID, productID)
}
