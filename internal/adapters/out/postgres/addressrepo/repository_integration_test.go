package addressrepo_test

import (
	"context"
	"testing"

	"dispatch/internal/adapters/out/postgres/addressrepo"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/core/domain/model/address"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

var defaults = address.Defaults{City: "Jardinópolis", State: "SP"}

type AddressRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg   *pgtest.Database
	repo *addressrepo.GormAddressRepository
}

func (s *AddressRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	s.Require().NoError(err)
	s.pg = pg
}

func (s *AddressRepositoryIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate())
	s.repo = addressrepo.NewGormAddressRepository(s.pg.DB, defaults)
}

func (s *AddressRepositoryIntegrationTestSuite) TearDownSuite() {
	s.Require().NoError(s.pg.Terminate(context.Background()))
}

func (s *AddressRepositoryIntegrationTestSuite) point() kernel.Coordinates {
	c, err := kernel.NewCoordinates(-47.8814, -21.0406)
	s.Require().NoError(err)
	return c
}

func (s *AddressRepositoryIntegrationTestSuite) TestGet_AppliesDefaults() {
	dto := addressrepo.AddressDTO{Street: "Rua A", District: "Centro"}
	s.Require().NoError(s.pg.DB.Create(&dto).Error)

	addr, err := s.repo.Get(s.T().Context(), dto.ID)

	s.Require().NoError(err)
	s.Equal(dto.ID, addr.ID())
	s.Equal(address.DefaultNumber, addr.Number())
	s.Equal("Jardinópolis", addr.City())
	s.False(addr.IsGeocoded())
}

func (s *AddressRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := s.repo.Get(s.T().Context(), 404)
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *AddressRepositoryIntegrationTestSuite) TestSaveCoordinates_UpdatesExistingRow() {
	ctx := s.T().Context()
	dto := addressrepo.AddressDTO{Street: "Rua A", Number: "10", District: "Centro", City: "Jardinópolis", State: "SP"}
	s.Require().NoError(s.pg.DB.Create(&dto).Error)
	addr, err := s.repo.Get(ctx, dto.ID)
	s.Require().NoError(err)
	located, err := addr.WithCoordinates(s.point())
	s.Require().NoError(err)

	saved, err := s.repo.SaveCoordinates(ctx, located)

	s.Require().NoError(err)
	s.Equal(dto.ID, saved.ID())
	reloaded, err := s.repo.Get(ctx, dto.ID)
	s.Require().NoError(err)
	c, ok := reloaded.Coordinates()
	s.Require().True(ok)
	s.True(c.IsEqual(s.point()))

	var count int64
	s.Require().NoError(s.pg.DB.Model(&addressrepo.AddressDTO{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *AddressRepositoryIntegrationTestSuite) TestSaveCoordinates_InsertsNewRow() {
	ctx := s.T().Context()
	addr, err := address.NewAddress("Rua B", "5", "Vila Nova", "", "", defaults)
	s.Require().NoError(err)
	located, err := addr.WithCoordinates(s.point())
	s.Require().NoError(err)

	saved, err := s.repo.SaveCoordinates(ctx, located)

	s.Require().NoError(err)
	s.Positive(saved.ID())
}

func (s *AddressRepositoryIntegrationTestSuite) TestSaveCoordinates_RequiresCoordinates() {
	addr, err := address.NewAddress("Rua B", "5", "Vila Nova", "", "", defaults)
	s.Require().NoError(err)

	_, err = s.repo.SaveCoordinates(s.T().Context(), addr)

	s.Require().ErrorIs(err, errs.ErrValueIsRequired)
}

func (s *AddressRepositoryIntegrationTestSuite) TestFindGeocoded_MatchesNormalizedKey() {
	ctx := s.T().Context()
	lat, lon := -21.0406, -47.8814
	s.Require().NoError(s.pg.DB.Create(&addressrepo.AddressDTO{
		Street: "  RUA  Sete de Setembro", Number: "10", District: "Centro",
		City: "Jardinópolis", State: "SP", Latitude: &lat, Longitude: &lon,
	}).Error)
	s.Require().NoError(s.pg.DB.Create(&addressrepo.AddressDTO{
		Street: "Rua Sete de Setembro", Number: "11", District: "Centro", City: "Jardinópolis", State: "SP",
	}).Error)

	query, err := address.NewAddress("rua sete de setembro", "10", "centro", "jardinópolis", "sp", defaults)
	s.Require().NoError(err)

	found, err := s.repo.FindGeocoded(ctx, query.Key())
	s.Require().NoError(err)
	c, ok := found.Coordinates()
	s.Require().True(ok)
	s.InDelta(lat, c.Lat(), 1e-9)

	missing, err := address.NewAddress("rua sete de setembro", "11", "centro", "", "", defaults)
	s.Require().NoError(err)
	_, err = s.repo.FindGeocoded(ctx, missing.Key())
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *AddressRepositoryIntegrationTestSuite) TestFindGeocoded_MatchesRowsWithDefaultedComponents() {
	ctx := s.T().Context()
	lat, lon := -21.0406, -47.8814
	s.Require().NoError(s.pg.DB.Exec(
		`INSERT INTO address (street, number, district, city, state, latitude, longitude)
		 VALUES (?, NULL, ?, '  ', NULL, ?, ?)`,
		"Rua Tiradentes", "Centro", lat, lon,
	).Error)

	query, err := address.NewAddress("Rua Tiradentes", "", "Centro", "", "", defaults)
	s.Require().NoError(err)

	found, err := s.repo.FindGeocoded(ctx, query.Key())

	s.Require().NoError(err)
	s.Equal(address.DefaultNumber, found.Number())
	s.Equal("Jardinópolis", found.City())
	c, ok := found.Coordinates()
	s.Require().True(ok)
	s.InDelta(lon, c.Lon(), 1e-9)

	other, err := address.NewAddress("Rua Tiradentes", "", "Centro", "Ribeirão Preto", "SP", defaults)
	s.Require().NoError(err)
	_, err = s.repo.FindGeocoded(ctx, other.Key())
	s.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestAddressRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(AddressRepositoryIntegrationTestSuite))
}
