package utils

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// ValidateCoordinate checks a lat/lng pair is a real WGS84 position.
func ValidateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// DistanceKm returns the great-circle distance in kilometres between two
// lat/lng pairs. Used to record how far from the customer's registered
// location a visit was actually started.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	a := orb.Point{lng1, lat1}
	b := orb.Point{lng2, lat2}
	return geo.Distance(a, b) / 1000.0
}
