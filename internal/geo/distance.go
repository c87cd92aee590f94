// Package geo provides great-circle distance calculations between airports.
package geo

import (
	"math"

	"air-demand-service/internal/domain"
)

// EarthRadiusKm is the equatorial radius of Earth used for route distances.
const EarthRadiusKm = 6378.1

// MaxDistanceKm is the antipodal maximum of GreatCircleDistance.
const MaxDistanceKm = math.Pi * EarthRadiusKm

// ToRadians converts decimal degrees to radians.
func ToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// GreatCircleDistance returns the haversine distance between a and b in kilometers.
// NaN inputs yield NaN.
func GreatCircleDistance(a, b domain.Coordinates) float64 {
	return HaversineWithRadius(a.Lat, a.Lon, b.Lat, b.Lon, EarthRadiusKm)
}

// HaversineWithRadius calculates the great-circle distance using a custom radius.
func HaversineWithRadius(lat1, lon1, lat2, lon2, radius float64) float64 {
	lat1Rad := ToRadians(lat1)
	lat2Rad := ToRadians(lat2)
	deltaLat := ToRadians(lat2 - lat1)
	deltaLon := ToRadians(lon2 - lon1)

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon
	// Rounding can push a slightly past 1 for antipodal points.
	a = math.Min(math.Max(a, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}
