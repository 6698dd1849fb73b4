package repository

import "context"

// TxManager runs a function inside a database transaction. The
// transaction travels in the context; repositories pick it up
// transparently. Any error rolls the whole transaction back.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
