package domain

import "fmt"

// Airport is the master-data view of a single airport as seen by the demand core.
// Coordinates is nil when the airport is known but its position could not be
// resolved from the coordinate database.
type Airport struct {
	ICAO        string
	FullName    string
	Location    string
	Country     string
	TimeZone    string
	Coordinates *Coordinates
}

// Resolved reports whether the airport carries usable coordinates.
func (a Airport) Resolved() bool {
	return a.Coordinates != nil && a.Coordinates.Valid()
}

func (a Airport) String() string {
	return fmt.Sprintf("Airport: %s (%s)", a.FullName, a.ICAO)
}
