// Package kernel holds the value objects shared by every dispatch aggregate.
//
// The package includes:
//   - UUID: identifier of couriers, route stops and dispatch tasks
//   - Coordinates: a validated (longitude, latitude) pair in WGS84 degrees
//
// Both are immutable. Zero values are invalid and fail Validate, so callers
// must go through the constructors.
package kernel
