package ports

import (
	"context"

	"dispatch/internal/core/domain/model/address"
)

// AddressRepository is the durable layer of the geocode cache.
type AddressRepository interface {
	// Get loads an address by id. Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id int64) (address.Address, error)

	// FindGeocoded looks up an address with filled coordinates by its normalized key.
	// Returns errs.ErrObjectNotFound when no such row exists.
	FindGeocoded(ctx context.Context, key address.Key) (address.Address, error)

	// SaveCoordinates writes the coordinates of addr: the row is updated when addr
	// has an id, inserted otherwise. The stored address is returned.
	SaveCoordinates(ctx context.Context, addr address.Address) (address.Address, error)
}
