package dto

type AirportResponse struct {
	ICAO     string   `json:"icao"`
	FullName string   `json:"full_name"`
	Location string   `json:"location"`
	Country  string   `json:"country"`
	TimeZone string   `json:"time_zone,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Resolved bool     `json:"resolved"`
}

type AircraftResponse struct {
	Registration   string         `json:"registration"`
	AircraftID     int            `json:"aircraft_id"`
	Model          string         `json:"model"`
	MaxRangeKm     int            `json:"max_range_km"`
	AvgSpeedKmh    int            `json:"avg_speed_kmh"`
	TurnaroundMins int            `json:"turnaround_mins"`
	Capacity       map[string]int `json:"capacity"`
	Seats          int            `json:"seats"`
}

type RouteAircraftResponse struct {
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	DistanceKm  float64            `json:"distance_km"`
	Aircraft    []AircraftResponse `json:"aircraft"`
}
