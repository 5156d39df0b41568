package address_test

import (
	"testing"

	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = address.Defaults{City: "Jardinópolis", State: "SP"}

func TestNewAddress(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		addr, err := address.NewAddress("Rua Sete de Setembro", "", "Centro", "", "", defaults)

		require.NoError(t, err)
		require.NoError(t, addr.Validate())
		assert.Equal(t, address.DefaultNumber, addr.Number())
		assert.Equal(t, "Jardinópolis", addr.City())
		assert.Equal(t, "SP", addr.State())
		assert.False(t, addr.IsGeocoded())
		assert.Zero(t, addr.ID())
	})

	t.Run("requires street", func(t *testing.T) {
		_, err := address.NewAddress("  ", "10", "Centro", "", "", defaults)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestAddress_KeyIsCaseAndSpaceInsensitive(t *testing.T) {
	a, err := address.NewAddress("Rua  Sete de Setembro", "10", "CENTRO", "Jardinópolis", "SP", defaults)
	require.NoError(t, err)
	b, err := address.NewAddress("rua sete de setembro ", "10", "centro", "jardinópolis", "sp", defaults)
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "rua sete de setembro|10|centro|jardinópolis|sp", a.Key().String())
}

func TestAddress_FullText(t *testing.T) {
	addr, err := address.NewAddress("Rua Tiradentes", "200", "", "", "", defaults)
	require.NoError(t, err)

	assert.Equal(t, "Rua Tiradentes, 200, Jardinópolis, SP", addr.FullText())
}

func TestAddress_WithCoordinates(t *testing.T) {
	addr, err := address.NewAddress("Rua Tiradentes", "200", "Centro", "", "", defaults)
	require.NoError(t, err)
	c, err := kernel.NewCoordinates(-47.88, -21.04)
	require.NoError(t, err)

	located, err := addr.WithCoordinates(c)
	require.NoError(t, err)

	got, ok := located.Coordinates()
	require.True(t, ok)
	assert.True(t, got.IsEqual(c))
	assert.False(t, addr.IsGeocoded(), "original must stay untouched")

	_, err = addr.WithCoordinates(kernel.Coordinates{})
	require.ErrorIs(t, err, kernel.ErrCoordinatesIsNotConstructed)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		street   string
		number   string
		district string
		city     string
		state    string
		wantErr  bool
	}{
		{
			name: "full line", text: "Rua A, 12, Centro, Ribeirão Preto, SP",
			street: "Rua A", number: "12", district: "Centro", city: "Ribeirão Preto", state: "SP",
		},
		{
			name: "street and number only", text: "Rua B, 7",
			street: "Rua B", number: "7", city: "Jardinópolis", state: "SP",
		},
		{
			name: "extra segments folded into state", text: "Rua C, 1, Centro, Jardinópolis, SP, 14680-000",
			street: "Rua C", number: "1", district: "Centro", city: "Jardinópolis", state: "SP, 14680-000",
		},
		{name: "empty", text: " , ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := address.Parse(tt.text, defaults)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.street, addr.Street())
			assert.Equal(t, tt.number, addr.Number())
			assert.Equal(t, tt.district, addr.District())
			assert.Equal(t, tt.city, addr.City())
			assert.Equal(t, tt.state, addr.State())
		})
	}
}

func TestAddress_ZeroValueIsInvalid(t *testing.T) {
	var addr address.Address
	require.ErrorIs(t, addr.Validate(), address.ErrAddressIsNotConstructed)
}
