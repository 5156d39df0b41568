// Package addressrepo persists delivery addresses and their geocoded coordinates.
package addressrepo

import (
	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
)

// AddressDTO maps the address table. Coordinates stay NULL until geocoded.
type AddressDTO struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	Street    string
	Number    string
	District  string
	City      string
	State     string
	Latitude  *float64
	Longitude *float64
}

func (AddressDTO) TableName() string {
	return "address"
}

func fromDomain(addr address.Address) AddressDTO {
	dto := AddressDTO{
		ID:       addr.ID(),
		Street:   addr.Street(),
		Number:   addr.Number(),
		District: addr.District(),
		City:     addr.City(),
		State:    addr.State(),
	}
	if c, ok := addr.Coordinates(); ok {
		lat, lon := c.Lat(), c.Lon()
		dto.Latitude = &lat
		dto.Longitude = &lon
	}
	return dto
}

func toDomain(dto AddressDTO, defaults address.Defaults) (address.Address, error) {
	var coordinates *kernel.Coordinates
	if dto.Latitude != nil && dto.Longitude != nil {
		c, err := kernel.NewCoordinates(*dto.Longitude, *dto.Latitude)
		if err != nil {
			return address.Address{}, err
		}
		coordinates = &c
	}
	return address.RestoreAddress(dto.ID, dto.Street, dto.Number, dto.District, dto.City, dto.State,
		coordinates, defaults)
}
