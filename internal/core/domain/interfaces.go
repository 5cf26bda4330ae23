package domain

import "context"

// OrderRepository resolves and mutates the order records conversations are
// attached to.
type OrderRepository interface {
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	// SetLastContactedBy records which employee last joined the order's
	// conversation.
	SetLastContactedBy(ctx context.Context, orderID, email string) error
}

// UserRepository resolves the authenticated identity behind a connection.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
