package domain

// Immutable geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether latitude is within [-90, 90] and longitude within [-180, 180].
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Return coordinates as [lat, lon] for CSV and JSON output.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lat, c.Lon} }
