package registry

import (
	"context"
	"log/slog"
	"sync"

	"chatdesk/internal/core/contracts"
)

// Registry tracks which connections belong to which room on this node and
// fans broadcasts out through the shared broker so every process delivers
// them. Local delivery happens on the subscription path: a broadcast is
// published once and each node, the publishing one included, hands it to
// its own attached clients.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]contracts.Client // room -> connection id -> client
	subs   map[string]*roomSub
	broker contracts.Broker
	log    *slog.Logger
}

type roomSub struct {
	sub    contracts.Subscription
	cancel context.CancelFunc
}

func NewRegistry(log *slog.Logger, broker contracts.Broker) *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]contracts.Client),
		subs:   make(map[string]*roomSub),
		broker: broker,
		log:    log,
	}
}

// Register joins a client to its room, opening the room's broker
// subscription if this is the first local member. Idempotent per
// connection id.
func (h *Registry) Register(c contracts.Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := c.Room()
	if h.rooms[room] == nil {
		ctx, cancel := context.WithCancel(context.Background())
		sub, err := h.broker.Subscribe(ctx, room)
		if err != nil {
			cancel()
			h.log.Error("registry - register - broker subscribe failed", "room", room, "err", err)
			return err
		}
		h.rooms[room] = make(map[string]contracts.Client)
		h.subs[room] = &roomSub{sub: sub, cancel: cancel}
		go h.deliver(room, sub)
	}
	h.rooms[room][c.ID()] = c
	return nil
}

// Unregister removes a client from its room; no-op if absent. The room's
// broker subscription is closed once the last local member leaves.
func (h *Registry) Unregister(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := c.Room()
	delete(h.rooms[room], c.ID())
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
		if rs := h.subs[room]; rs != nil {
			rs.cancel()
			_ = rs.sub.Close()
			delete(h.subs, room)
		}
	}
}

// Broadcast publishes data to the room's broker channel. Every process
// subscribed to the room, this one included, delivers it to its local
// clients.
func (h *Registry) Broadcast(ctx context.Context, room string, data []byte) error {
	return h.broker.Publish(ctx, room, data)
}

// deliver pumps broker payloads to the room's local clients until the
// subscription closes. A client that is mid-teardown may reject the send;
// delivery is best-effort.
func (h *Registry) deliver(room string, sub contracts.Subscription) {
	for payload := range sub.Payloads() {
		h.mu.RLock()
		clients := make([]contracts.Client, 0, len(h.rooms[room]))
		for _, c := range h.rooms[room] {
			clients = append(clients, c)
		}
		h.mu.RUnlock()
		for _, c := range clients {
			if err := c.Send(context.Background(), payload); err != nil {
				h.log.Debug("registry - deliver - send failed", "room", room, "conn_id", c.ID(), "err", err)
			}
		}
	}
}
