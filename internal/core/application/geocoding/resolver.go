// Package geocoding resolves delivery addresses to coordinates through three layers:
// the process memory cache, the address table and the external geocoder.
//
// The first layer that answers wins. Coordinates found by the geocoder are written
// back to the address table before they are returned, and every successful lookup
// fills the memory cache. Failed lookups are not remembered, so a geocoder outage
// does not poison later cycles.
//
// Example:
//
//	resolver := geocoding.NewResolver(cache, addressRepo, orsClient, defaults, m, logger)
//	coords, err := resolver.Resolve(ctx, addr, apiKey)
//	if errors.Is(err, geocoding.ErrAddressNotResolved) {
//	    // skip the order for this cycle
//	}
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// ErrAddressNotResolved means no layer produced coordinates for the address.
var ErrAddressNotResolved = errors.New("address not resolved")

// Resolver is safe for concurrent use. Concurrent misses for the same normalized
// address share one store lookup and at most one geocoder call.
type Resolver struct {
	cache     ports.GeocodeCache
	addresses ports.AddressRepository
	geocoder  ports.Geocoder
	defaults  address.Defaults
	metrics   *metrics.Metrics
	logger    *slog.Logger
	inflight  singleflight.Group
}

func NewResolver(
	cache ports.GeocodeCache,
	addresses ports.AddressRepository,
	geocoder ports.Geocoder,
	defaults address.Defaults,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		cache:     cache,
		addresses: addresses,
		geocoder:  geocoder,
		defaults:  defaults,
		metrics:   m,
		logger:    logger.With("component", "geocode_resolver"),
	}
}

// Resolve returns the coordinates of addr or an error wrapping ErrAddressNotResolved.
func (r *Resolver) Resolve(ctx context.Context, addr address.Address, apiKey string) (kernel.Coordinates, error) {
	if err := addr.Validate(); err != nil {
		return kernel.Coordinates{}, fmt.Errorf("%w: %w", ErrAddressNotResolved, err)
	}

	key := addr.Key()
	if c, ok := r.cache.Get(key); ok {
		r.metrics.RecordGeocode(metrics.SourceMemory)
		return c, nil
	}

	if c, ok := addr.Coordinates(); ok {
		r.cache.Put(key, c)
		r.metrics.RecordGeocode(metrics.SourceAddress)
		return c, nil
	}

	v, err, _ := r.inflight.Do(key.String(), func() (any, error) {
		return r.lookup(ctx, addr, apiKey)
	})
	if err != nil {
		r.metrics.RecordGeocode(metrics.SourceMiss)
		return kernel.Coordinates{}, fmt.Errorf("%w: %s: %w", ErrAddressNotResolved, addr, err)
	}

	return v.(kernel.Coordinates), nil
}

// ResolveText parses a "street, number, district[, city, state]" line and resolves it.
func (r *Resolver) ResolveText(ctx context.Context, text string, apiKey string) (kernel.Coordinates, error) {
	addr, err := address.Parse(text, r.defaults)
	if err != nil {
		return kernel.Coordinates{}, fmt.Errorf("%w: %w", ErrAddressNotResolved, err)
	}
	return r.Resolve(ctx, addr, apiKey)
}

// lookup runs once per key at a time: store first, then the geocoder with write-back.
func (r *Resolver) lookup(ctx context.Context, addr address.Address, apiKey string) (kernel.Coordinates, error) {
	key := addr.Key()

	stored, err := r.addresses.FindGeocoded(ctx, key)
	switch {
	case err == nil:
		if c, ok := stored.Coordinates(); ok {
			r.cache.Put(key, c)
			r.metrics.RecordGeocode(metrics.SourceStore)
			return c, nil
		}
	case errors.Is(err, errs.ErrObjectNotFound):
	default:
		if ctx.Err() != nil {
			return kernel.Coordinates{}, ctx.Err()
		}
		r.logger.WarnContext(ctx, "Address store lookup failed, asking the geocoder", "address", addr.String(), "error", err)
	}

	c, err := r.geocoder.Geocode(ctx, addr.FullText(), apiKey)
	if err != nil {
		return kernel.Coordinates{}, err
	}

	located, err := addr.WithCoordinates(c)
	if err != nil {
		return kernel.Coordinates{}, err
	}
	if _, err = r.addresses.SaveCoordinates(ctx, located); err != nil {
		r.logger.ErrorContext(ctx, "Failed to store geocoded coordinates", "address", addr.String(), "error", err)
	}

	r.cache.Put(key, c)
	r.metrics.RecordGeocode(metrics.SourceProvider)
	return c, nil
}
