package dto

type ClassDemandResponse struct {
	First    int `json:"first"`
	Business int `json:"business"`
	Economy  int `json:"economy"`
	Total    int `json:"total"`
}

type FactorsResponse struct {
	Population  float64 `json:"population"`
	Economic    float64 `json:"economic"`
	Tourism     float64 `json:"tourism"`
	Distance    float64 `json:"distance"`
	Seasonality float64 `json:"seasonality"`
}

type DemandResponse struct {
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	DistanceKm  float64             `json:"distance_km"`
	Date        string              `json:"date"`
	Demand      ClassDemandResponse `json:"demand"`
	Factors     FactorsResponse     `json:"factors"`
}

type BatchDemandRequest struct {
	Hub          string   `json:"hub"`
	Destinations []string `json:"destinations"`
}

type BatchRouteResponse struct {
	Destination string          `json:"destination"`
	Result      *DemandResponse `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type BatchDemandResponse struct {
	Hub    string               `json:"hub"`
	Routes []BatchRouteResponse `json:"routes"`
}

type StoredDemandResponse struct {
	Destination string              `json:"destination"`
	DistanceKm  float64             `json:"distance_km"`
	Demand      ClassDemandResponse `json:"demand"`
	EstimatedAt string              `json:"estimated_at"`
}

type StoredDemandsResponse struct {
	Hub     string                 `json:"hub"`
	Routes  []StoredDemandResponse `json:"routes"`
	Missing []string               `json:"missing"`
}
