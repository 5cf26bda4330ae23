package contracts

import "context"

// Broker is the cross-process fan-out channel the registry broadcasts
// through. Delivery is at-most-once, best-effort; a subscriber that is
// mid-teardown may miss a payload.
type Broker interface {
	Publish(ctx context.Context, room string, payload []byte) error
	// Subscribe opens a subscription for one room's broadcasts. The caller
	// owns the returned subscription and must close it when the last local
	// member leaves the room.
	Subscribe(ctx context.Context, room string) (Subscription, error)
}

// Subscription is one open room subscription.
type Subscription interface {
	// Payloads yields broadcast payloads until the subscription is closed.
	Payloads() <-chan []byte
	Close() error
}
