package services

import (
	"math"

	"github.com/isdelr/taskmaster-be/internal/geo"
	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokyoLat = 35.681236
	tokyoLon = 139.767125
)

func metersNorth(meters float64) float64 {
	return tokyoLat + meters/geo.EarthRadius*180/math.Pi
}

func (s *ServiceTestSuite) createLocation(ownerID int64, name string, lat, lon float64, radius *float64) models.Location {
	l, err := s.locations.CreateLocation(s.ctx, ownerID, models.NewLocation{Name: name, Latitude: &lat, Longitude: &lon, Radius: radius})
	require.NoError(s.T(), err)
	return l
}

func (s *ServiceTestSuite) TestCreateLocation() {
	alice := s.createUser("alice")
	l := s.createLocation(alice.ID, "Tokyo Station", tokyoLat, tokyoLon, nil)

	assert.Equal(s.T(), models.DefaultLocationRadius, l.Radius)
	assert.InDelta(s.T(), tokyoLat, l.Latitude, 1e-9)

	_, err := s.locations.CreateLocation(s.ctx, alice.ID, models.NewLocation{Name: "x", Latitude: ptr(91.0), Longitude: ptr(0.0)})
	assert.ErrorIs(s.T(), err, geo.ErrInvalidGeofenceInput)

	_, err = s.locations.CreateLocation(s.ctx, alice.ID, models.NewLocation{Name: "x", Latitude: ptr(0.0), Longitude: ptr(0.0), Radius: ptr(0.0)})
	assert.ErrorIs(s.T(), err, ErrValidation)

	_, err = s.locations.CreateLocation(s.ctx, alice.ID, models.NewLocation{Name: "x", Longitude: ptr(0.0)})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceTestSuite) TestUpdateLocation() {
	alice := s.createUser("alice")
	cat, err := s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "Work"})
	require.NoError(s.T(), err)
	l := s.createLocation(alice.ID, "Office", tokyoLat, tokyoLon, nil)

	updated, err := s.locations.UpdateLocation(s.ctx, alice.ID, l.ID, models.LocationUpdate{
		Radius:     models.Some(120.0),
		CategoryID: models.Some(cat.ID),
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 120.0, updated.Radius)
	assert.Equal(s.T(), cat.ID, *updated.CategoryID)
	assert.Equal(s.T(), "Office", updated.Name)

	updated, err = s.locations.UpdateLocation(s.ctx, alice.ID, l.ID, models.LocationUpdate{CategoryID: models.Null[int64]()})
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated.CategoryID)

	_, err = s.locations.UpdateLocation(s.ctx, alice.ID, l.ID, models.LocationUpdate{Latitude: models.Null[float64]()})
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.locations.UpdateLocation(s.ctx, alice.ID, l.ID, models.LocationUpdate{Longitude: models.Some(181.0)})
	assert.ErrorIs(s.T(), err, geo.ErrInvalidGeofenceInput)
}

func (s *ServiceTestSuite) TestFindNearby() {
	alice := s.createUser("alice")
	station := s.createLocation(alice.ID, "Tokyo Station", tokyoLat, tokyoLon, ptr(500.0))

	match, err := s.locations.FindNearby(s.ctx, alice.ID, metersNorth(200), tokyoLon)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), match)
	assert.Equal(s.T(), station.ID, match.ID)
	assert.InDelta(s.T(), 200, match.Distance, 1)

	match, err = s.locations.FindNearby(s.ctx, alice.ID, metersNorth(600), tokyoLon)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), match)

	_, err = s.locations.FindNearby(s.ctx, alice.ID, math.NaN(), tokyoLon)
	assert.ErrorIs(s.T(), err, geo.ErrInvalidGeofenceInput)
}

func (s *ServiceTestSuite) TestFindNearby_NearestAndTies() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	s.createLocation(alice.ID, "far", metersNorth(300), tokyoLon, nil)
	near := s.createLocation(alice.ID, "near", metersNorth(150), tokyoLon, nil)
	twin := s.createLocation(alice.ID, "near twin", metersNorth(150), tokyoLon, nil)
	s.createLocation(bob.ID, "bob's spot", tokyoLat, tokyoLon, nil)

	match, err := s.locations.FindNearby(s.ctx, alice.ID, tokyoLat, tokyoLon)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), match)
	assert.Equal(s.T(), near.ID, match.ID, "lowest id wins a tie")
	assert.Less(s.T(), near.ID, twin.ID)
}
