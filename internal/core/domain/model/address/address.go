package address

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// DefaultNumber is stored when an address has no house number.
const DefaultNumber = "S/N"

// ErrAddressIsNotConstructed is returned when a zero-value Address is used.
var ErrAddressIsNotConstructed = errors.New("Address must be created via NewAddress or RestoreAddress")

// Address is a delivery destination. It is immutable; WithCoordinates and WithID
// return modified copies.
type Address struct {
	id          int64
	street      string
	number      string
	district    string
	city        string
	state       string
	coordinates *kernel.Coordinates
	guard       guard.ConstructorGuard
}

// Defaults fills components the ticket or the database left empty.
type Defaults struct {
	City  string
	State string
}

// NewAddress builds an address that is not yet persisted. Street is mandatory,
// an empty number becomes DefaultNumber and empty city/state come from defaults.
func NewAddress(street, number, district, city, state string, defaults Defaults) (Address, error) {
	return RestoreAddress(0, street, number, district, city, state, nil, defaults)
}

// RestoreAddress rebuilds an address loaded from the store. id 0 means "not persisted".
func RestoreAddress(
	id int64,
	street, number, district, city, state string,
	coordinates *kernel.Coordinates,
	defaults Defaults,
) (Address, error) {
	street = strings.TrimSpace(street)
	if street == "" {
		return Address{}, errs.NewValueIsRequiredError("street")
	}
	if id < 0 {
		return Address{}, errs.NewValueIsOutOfRangeError("address id", id, 0, "max int64")
	}
	if coordinates != nil {
		if err := coordinates.Validate(); err != nil {
			return Address{}, err
		}
	}

	return Address{
		id:          id,
		street:      street,
		number:      orDefault(number, DefaultNumber),
		district:    strings.TrimSpace(district),
		city:        orDefault(city, defaults.City),
		state:       orDefault(state, defaults.State),
		coordinates: coordinates,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Parse reads a comma separated "street, number, district[, city[, state]]" line,
// the format used for the pizzeria address in configuration and dispatch requests.
func Parse(text string, defaults Defaults) (Address, error) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	if len(parts) > 5 {
		// trailing segments such as a postal code belong to the state component
		parts = append(parts[:4], strings.Join(parts[4:], ", "))
	}

	addr, err := NewAddress(parts[0], parts[1], parts[2], parts[3], parts[4], defaults)
	if err != nil {
		return Address{}, errs.NewValueIsInvalidErrorWithCause("address text", err)
	}
	return addr, nil
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return strings.TrimSpace(def)
	}
	return v
}

func (a Address) ID() int64 {
	return a.id
}

func (a Address) Street() string {
	return a.street
}

func (a Address) Number() string {
	return a.number
}

func (a Address) District() string {
	return a.district
}

func (a Address) City() string {
	return a.city
}

func (a Address) State() string {
	return a.state
}

// Coordinates returns the resolved point, if any.
func (a Address) Coordinates() (kernel.Coordinates, bool) {
	if a.coordinates == nil {
		return kernel.Coordinates{}, false
	}
	return *a.coordinates, true
}

func (a Address) IsGeocoded() bool {
	return a.coordinates != nil
}

// Key is the normalized identity used by every cache layer.
func (a Address) Key() Key {
	return Key{
		Street:   normalize(a.street),
		Number:   normalize(a.number),
		District: normalize(a.district),
		City:     normalize(a.city),
		State:    normalize(a.state),
	}
}

// FullText is the free-text query sent to the geocoder.
func (a Address) FullText() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.street, a.number, a.district, a.city, a.state} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (a Address) WithCoordinates(c kernel.Coordinates) (Address, error) {
	if err := c.Validate(); err != nil {
		return Address{}, err
	}
	a.coordinates = &c
	return a, nil
}

func (a Address) WithID(id int64) Address {
	a.id = id
	return a
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) String() string {
	return a.FullText()
}

// Key is the normalized (street, number, district, city, state) tuple.
type Key struct {
	Street   string
	Number   string
	District string
	City     string
	State    string
}

func (k Key) String() string {
	return strings.Join([]string{k.Street, k.Number, k.District, k.City, k.State}, "|")
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
