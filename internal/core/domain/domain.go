package domain

import (
	"strings"
	"time"
)

// RoomPrefix is the namespace shared by chat room names and presence keys.
// Presence scanning matches on this prefix, so it must stay in sync with
// RoomName.
const RoomPrefix = "customer-service"

// PresenceTTL is how long a heartbeat keeps a participant visible in
// presence snapshots.
const PresenceTTL = 10 * time.Second

// Role is the authorization outcome of a chat connection attempt.
type Role int

const (
	RoleUnauthorized Role = iota
	RoleClient
	RoleEmployee
)

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleClient:
		return "client"
	default:
		return "unauthorized"
	}
}

// User is the authenticated identity attached to every connection.
type User struct {
	Email        string
	FullName     string
	PasswordHash string
	IsEmployee   bool
	CreatedAt    time.Time
}

// Order is the business record a conversation is attached to.
type Order struct {
	ID              string
	CustomerEmail   string
	LastContactedBy string
	CreatedAt       time.Time
}

// RoomName derives the broadcast room for an order. Chat sessions and
// presence keys must agree on this exact format.
func RoomName(orderID string) string {
	return RoomPrefix + "_" + orderID
}

// PresenceKey builds the TTL key meaning "participant was active in this
// room within the last PresenceTTL window".
func PresenceKey(room, email string) string {
	return room + "_" + email
}

// ParsePresenceKey splits a presence key into its order id and participant
// email. Keys are "customer-service_<order_id>_<email>"; the split assumes
// neither order ids nor emails contain underscores. Keys that do not
// produce exactly three fields are reported as not ok and skipped by
// callers.
func ParsePresenceKey(key string) (orderID, email string, ok bool) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[1], parts[2], true
}
