package addressrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// normalizedColumn mirrors address.Key normalization: lowercase, trimmed, single
// spaces. An empty or NULL column compares as its default, the way Get fills it.
// Binds the default first, then the key value.
func normalizedColumn(column string) string {
	return `regexp_replace(lower(trim(COALESCE(NULLIF(trim(` + column + `), ''), ?))), '\s+', ' ', 'g') = ?`
}

// GormAddressRepository implements ports.AddressRepository.
type GormAddressRepository struct {
	db       *gorm.DB
	defaults address.Defaults
}

// NewGormAddressRepository creates a repository; defaults fill empty number/city/state on load.
func NewGormAddressRepository(db *gorm.DB, defaults address.Defaults) *GormAddressRepository {
	return &GormAddressRepository{db: db, defaults: defaults}
}

func (r *GormAddressRepository) Get(ctx context.Context, id int64) (address.Address, error) {
	var dto AddressDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return address.Address{}, errs.NewObjectNotFoundError("address", id)
		}
		return address.Address{}, err
	}
	return toDomain(dto, r.defaults)
}

// FindGeocoded returns the oldest geocoded row matching key.
func (r *GormAddressRepository) FindGeocoded(ctx context.Context, key address.Key) (address.Address, error) {
	var dto AddressDTO
	err := r.db.WithContext(ctx).
		Where(normalizedColumn("street"), "", key.Street).
		Where(normalizedColumn("number"), address.DefaultNumber, key.Number).
		Where(normalizedColumn("district"), "", key.District).
		Where(normalizedColumn("city"), r.defaults.City, key.City).
		Where(normalizedColumn("state"), r.defaults.State, key.State).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("id ASC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return address.Address{}, errs.NewObjectNotFoundError("address", key.String())
		}
		return address.Address{}, err
	}
	return toDomain(dto, r.defaults)
}

// SaveCoordinates updates the coordinates of a stored address or inserts a new geocoded row.
func (r *GormAddressRepository) SaveCoordinates(ctx context.Context, addr address.Address) (address.Address, error) {
	if err := addr.Validate(); err != nil {
		return address.Address{}, err
	}
	if !addr.IsGeocoded() {
		return address.Address{}, errs.NewValueIsRequiredError("coordinates")
	}

	dto := fromDomain(addr)
	if dto.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
			return address.Address{}, err
		}
		return addr.WithID(dto.ID), nil
	}

	result := r.db.WithContext(ctx).Model(&AddressDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{"latitude": dto.Latitude, "longitude": dto.Longitude})
	if result.Error != nil {
		return address.Address{}, result.Error
	}
	if result.RowsAffected == 0 {
		return address.Address{}, errs.NewObjectNotFoundError("address", dto.ID)
	}
	return addr, nil
}
