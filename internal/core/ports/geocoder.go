package ports

import (
	"context"

	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
)

// Geocoder resolves a free-text address through an external provider.
// A query without match returns an error wrapping errs.ErrObjectNotFound.
type Geocoder interface {
	Geocode(ctx context.Context, text string, apiKey string) (kernel.Coordinates, error)
}

// GeocodeCache is the process-wide memory layer of the geocode cache.
// Implementations must be safe for concurrent use.
type GeocodeCache interface {
	Get(key address.Key) (kernel.Coordinates, bool)
	Put(key address.Key, coordinates kernel.Coordinates)
	Len() int
}
