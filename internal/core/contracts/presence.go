package contracts

import (
	"context"
	"time"
)

// PresenceStore is the shared TTL-keyed store backing heartbeat tracking.
// Keys expire on their own; nothing ever deletes them explicitly, so a
// missing key is indistinguishable from "heartbeat missed" and must be
// treated as not present.
type PresenceStore interface {
	// Refresh creates or re-arms a presence key with the given TTL.
	Refresh(ctx context.Context, key string, ttl time.Duration) error
	// Keys returns all live keys matching the pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}
