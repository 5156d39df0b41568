// Package commands contains the operations that change route state.
// Implements the Command pattern for write operations in the CQRS architecture:
// validation through constructor guards, then work inside a unit of work.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// RouteRepoFactory provides access to the route repository within a transaction.
	RouteRepoFactory interface {
		RouteRepository() ports.RouteRepository
	}

	// TxLocker takes transaction-scoped advisory locks.
	TxLocker interface {
		AcquireLock(ctx context.Context, key int64) error
	}

	// RouteUoW manages one courier's route replacement.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   routes := uow.RouteRepository()
	//   // ... delete pending stops, insert the new ones
	//
	//   err = uow.Commit(ctx)
	RouteUoW interface {
		TxManager
		RouteRepoFactory
		TxLocker
	}

	// RouteUoWFactory creates new route unit of work instances.
	RouteUoWFactory interface {
		Create() RouteUoW
	}
)
