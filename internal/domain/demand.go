package domain

import "time"

// ClassDemand is the estimated passenger count per cabin class for a route.
type ClassDemand struct {
	First    int
	Business int
	Economy  int
}

// Total returns the passenger count across all classes.
func (d ClassDemand) Total() int {
	return d.First + d.Business + d.Economy
}

// RouteDemand is a persisted estimation result.
type RouteDemand struct {
	Origin      string
	Destination string
	DistanceKm  float64
	Demand      ClassDemand
	EstimatedAt time.Time
}
