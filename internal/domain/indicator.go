package domain

import "fmt"

// Metric names a socio-economic indicator looked up per route endpoint.
type Metric string

const (
	MetricPopulation         Metric = "population"
	MetricGDPPerCapita       Metric = "gdp_per_capita"
	MetricPriceLevelIndex    Metric = "price_level_index"
	MetricTourismExpenditure Metric = "tourism_expenditure"
)

// Metrics lists every metric required to estimate a route.
var Metrics = []Metric{
	MetricPopulation,
	MetricGDPPerCapita,
	MetricPriceLevelIndex,
	MetricTourismExpenditure,
}

// ParseMetric converts a metric name into a Metric.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("parse metric: unknown metric %q", s)
}

// IndicatorPair holds the origin and destination values of one metric for a route,
// together with their sum and product.
// Values are only built through NewIndicatorPair so Sum and Product stay consistent.
type IndicatorPair struct {
	Origin      float64
	Destination float64
	Sum         float64
	Product     float64
}

func NewIndicatorPair(origin, destination float64) IndicatorPair {
	return IndicatorPair{
		Origin:      origin,
		Destination: destination,
		Sum:         origin + destination,
		Product:     origin * destination,
	}
}

// Max returns the larger of the two endpoint values.
func (p IndicatorPair) Max() float64 {
	return max(p.Origin, p.Destination)
}

// RouteIndicators bundles the four indicator pairs of a route.
type RouteIndicators struct {
	Populations         IndicatorPair
	GDPs                IndicatorPair
	PLIs                IndicatorPair
	TourismExpenditures IndicatorPair
}
