package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
)

// ErrCoordinatesIsNotConstructed is returned when a zero-value Coordinates is used.
var ErrCoordinatesIsNotConstructed = errs.NewValueIsRequiredError(
	"coordinates must be created via NewCoordinates")

// Coordinates is a WGS84 point. Longitude always comes first, which is the
// order the routing provider expects for every location it receives.
//
// Example:
//
//	depot, err := kernel.NewCoordinates(-47.88, -21.04)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(depot.Pair()) // [-47.88 -21.04]
type Coordinates struct {
	lon   float64
	lat   float64
	guard guard.ConstructorGuard
}

// NewCoordinates validates both axes and returns an immutable point.
// NaN and infinite values are rejected together with out-of-range values.
func NewCoordinates(lon, lat float64) (Coordinates, error) {
	if err := errors.Join(checkAxis("longitude", lon, MinLongitude, MaxLongitude),
		checkAxis("latitude", lat, MinLatitude, MaxLatitude)); err != nil {
		return Coordinates{}, err
	}
	return Coordinates{lon: lon, lat: lat, guard: guard.NewConstructorGuard()}, nil
}

// NewCoordinatesFromPair accepts a [lon, lat] pair as returned by geocoders.
func NewCoordinatesFromPair(pair []float64) (Coordinates, error) {
	if len(pair) != 2 {
		return Coordinates{}, errs.NewValueIsInvalidErrorWithCause("coordinates",
			fmt.Errorf("expected [lon, lat], got %d values", len(pair)))
	}
	return NewCoordinates(pair[0], pair[1])
}

func checkAxis(name string, v, minValue, maxValue float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < minValue || v > maxValue {
		return errs.NewValueIsOutOfRangeError(name, v, minValue, maxValue)
	}
	return nil
}

func (c Coordinates) Lon() float64 {
	return c.lon
}

func (c Coordinates) Lat() float64 {
	return c.lat
}

// Pair returns the point as [lon, lat].
func (c Coordinates) Pair() [2]float64 {
	return [2]float64{c.lon, c.lat}
}

func (c Coordinates) IsEqual(other Coordinates) bool {
	return c.lon == other.lon && c.lat == other.lat
}

func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesIsNotConstructed)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("Coordinates(lon=%.6f, lat=%.6f)", c.lon, c.lat)
}
