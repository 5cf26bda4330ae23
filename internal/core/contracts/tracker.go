package contracts

import "context"

// TrackerUpstream fetches the raw tracking payload for an order from the
// remote carrier. A failed fetch is fatal to the request relaying it.
type TrackerUpstream interface {
	Fetch(ctx context.Context, orderID string) ([]byte, error)
}
