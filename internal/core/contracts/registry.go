package contracts

import "context"

// Registry is the orchestration layer that manages physical client
// connections and bridges room broadcasts between processes.
type Registry interface {
	// Register adds a client to the local node memory and joins it to its
	// room. Fails only if the room's cross-process subscription cannot be
	// opened, which is fatal to the connection being registered.
	Register(c Client) error
	// Unregister removes the client and cleans up its room participation.
	Unregister(c Client)
	// Broadcast fans data out to every connection currently joined to the
	// room, across all processes, the sender's own connection included.
	Broadcast(ctx context.Context, room string, data []byte) error
}

// Client is the minimal interface the Registry needs to talk to an
// individual connection.
type Client interface {
	ID() string
	Room() string
	Send(ctx context.Context, data []byte) error
	Close()
}
