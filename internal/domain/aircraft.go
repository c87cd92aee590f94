package domain

import "fmt"

// Aircraft describes a single airframe of the fleet.
// Capacity maps a cabin class ("first", "business", "economy") to its seat count.
type Aircraft struct {
	Registration   string
	AircraftID     int
	Model          string
	MaxRangeKm     int
	AvgSpeedKmh    int
	TurnaroundMins int
	Capacity       map[string]int
}

func (a Aircraft) String() string {
	return fmt.Sprintf("%s %s", a.Registration, a.Model)
}

// Fits reports whether the aircraft can fly the route without a stop.
func (a Aircraft) Fits(r *Route) bool {
	return r != nil && float64(a.MaxRangeKm) >= r.DistanceKm()
}

// Seats returns the total seat count across classes.
func (a Aircraft) Seats() int {
	total := 0
	for _, n := range a.Capacity {
		total += n
	}
	return total
}
