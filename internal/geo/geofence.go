// Package geo resolves live coordinates against a user's saved locations.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/isdelr/taskmaster-be/internal/models"
)

// EarthRadius is the mean Earth radius in meters used by Distance.
const EarthRadius = 6371000.0

// ErrInvalidGeofenceInput is returned for coordinates that are not finite or
// lie outside the WGS-84 ranges.
var ErrInvalidGeofenceInput = errors.New("invalid geofence input")

// ValidateCoordinates checks that latitude is in [-90, 90] and longitude in
// [-180, 180].
func ValidateCoordinates(latitude, longitude float64) error {
	switch {
	case math.IsNaN(latitude) || math.IsInf(latitude, 0):
		return fmt.Errorf("%w: latitude is not a finite number", ErrInvalidGeofenceInput)
	case math.IsNaN(longitude) || math.IsInf(longitude, 0):
		return fmt.Errorf("%w: longitude is not a finite number", ErrInvalidGeofenceInput)
	case latitude < -90 || latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidGeofenceInput, latitude)
	case longitude < -180 || longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidGeofenceInput, longitude)
	}
	return nil
}

// Distance returns the great-circle distance in meters between two points
// given in degrees, using the haversine formula on a spherical Earth.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadius * c
}

// Resolve returns the nearest candidate whose geofence contains the point.
// A candidate qualifies when its distance is at most its radius. On equal
// distances the earlier candidate wins, so callers pass candidates in a
// stable order.
func Resolve(latitude, longitude float64, candidates []models.Location) (models.NearbyLocation, bool) {
	var (
		best  models.NearbyLocation
		found bool
	)
	for _, loc := range candidates {
		d := Distance(latitude, longitude, loc.Latitude, loc.Longitude)
		if d > loc.Radius {
			continue
		}
		if !found || d < best.Distance {
			best = models.NearbyLocation{Location: loc, Distance: d}
			found = true
		}
	}
	return best, found
}
