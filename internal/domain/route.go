package domain

import (
	"fmt"
	"math"
)

// Route is a directed pair of airports with its great-circle distance in kilometers.
// The distance is computed once at construction.
type Route struct {
	Origin      Airport
	Destination Airport
	distanceKm  float64
}

// DistanceFunc computes the great-circle distance between two coordinates in km.
type DistanceFunc func(a, b Coordinates) float64

// NewRoute builds a route and memoizes its distance.
// It fails without returning a partial route when either endpoint has no coordinates.
func NewRoute(origin, destination Airport, distance DistanceFunc) (*Route, error) {
	if !destination.Resolved() {
		return nil, fmt.Errorf("new route: %w: no such airport with ICAO code %s", ErrUnresolvedAirport, destination.ICAO)
	}
	if !origin.Resolved() {
		return nil, fmt.Errorf("new route: %w: no such airport with ICAO code %s", ErrUnresolvedAirport, origin.ICAO)
	}

	d := distance(*origin.Coordinates, *destination.Coordinates)
	if math.IsNaN(d) || d < 0 {
		return nil, fmt.Errorf("new route %s -> %s: invalid distance %v", origin.ICAO, destination.ICAO, d)
	}

	return &Route{
		Origin:      origin,
		Destination: destination,
		distanceKm:  d,
	}, nil
}

// DistanceKm returns the memoized great-circle distance.
func (r *Route) DistanceKm() float64 { return r.distanceKm }

func (r *Route) String() string {
	return fmt.Sprintf("%s -> %s (%.2f km)", r.Origin.ICAO, r.Destination.ICAO, r.distanceKm)
}
