package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per transaction.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a transaction boundary over the route store.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// RouteRepository is bound to the transaction started by Begin.
	RouteRepository() RouteRepository

	// AcquireLock takes a transaction-scoped advisory lock on key; it is released
	// on Commit or Rollback.
	AcquireLock(ctx context.Context, key int64) error
}
