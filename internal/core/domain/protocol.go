package domain

// Inbound event types (client -> server).
const (
	TypeMessage   = "message"
	TypeHeartbeat = "heartbeat"
)

// Outbound event types (server -> client), forwarded verbatim from the
// room broadcast.
const (
	TypeChatMessage = "chat_message"
	TypeChatJoin    = "chat_join"
	TypeChatLeave   = "chat_leave"
)

// InboundEvent is what a connected chat client sends. Events with an
// unknown Type are ignored.
type InboundEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ChatEvent is broadcast to every connection in a room, sender included,
// and written to clients without further transformation.
type ChatEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

// PresenceEntry is one row of a presence snapshot as rendered on the
// notify stream.
type PresenceEntry struct {
	Link string `json:"link"`
	Text string `json:"text"`
}
