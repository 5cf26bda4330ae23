package contracts

import "context"

// TxRunner scopes repository calls to one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
