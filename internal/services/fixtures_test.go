package services

import (
	"context"
	"time"

	"air-demand-service/internal/adapters/airports"
	"air-demand-service/internal/adapters/indicators"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/ports"
)

// September: standard season.
var testDate = time.Date(2024, time.September, 15, 12, 0, 0, 0, time.UTC)

func coords(lat, lon float64) *domain.Coordinates {
	return &domain.Coordinates{Lat: lat, Lon: lon}
}

// AAAA -> BBBB is about 890 km along a meridian, inside the distance plateau.
func testAirports() *airports.Store {
	return airports.NewStore([]domain.Airport{
		{ICAO: "AAAA", FullName: "Alpha Intl", Location: "Alpha City", Country: "Alphaland", Coordinates: coords(0, 0)},
		{ICAO: "BBBB", FullName: "Beta Intl", Location: "Beta City", Country: "Betaland", Coordinates: coords(8, 0)},
		{ICAO: "CCCC", FullName: "Gamma Field", Location: "Gamma City", Country: "Gammaland", Coordinates: coords(-8, 0)},
		{ICAO: "DDDD", FullName: "Delta Strip", Location: "Delta City", Country: "Deltaland"},
		{ICAO: "EEEE", FullName: "Epsilon Field", Location: "Ghost Town", Country: "Ghostland", Coordinates: coords(0, 8)},
	})
}

func testIndicators() *indicators.StaticProvider {
	return indicators.NewStaticProvider([]indicators.StaticValue{
		{Subject: "Alpha City", Metric: domain.MetricPopulation, Value: 1000},
		{Subject: "Beta City", Metric: domain.MetricPopulation, Value: 2000},
		{Subject: "Gamma City", Metric: domain.MetricPopulation, Value: 5000},
		{Subject: "Ghost Town", Metric: domain.MetricPopulation, Value: 0},

		{Subject: "Alphaland", Metric: domain.MetricGDPPerCapita, Value: 10},
		{Subject: "Betaland", Metric: domain.MetricGDPPerCapita, Value: 30},
		{Subject: "Ghostland", Metric: domain.MetricGDPPerCapita, Value: 10},

		{Subject: "Alphaland", Metric: domain.MetricPriceLevelIndex, Value: 1.1},
		{Subject: "Betaland", Metric: domain.MetricPriceLevelIndex, Value: 1.2},
		{Subject: "Ghostland", Metric: domain.MetricPriceLevelIndex, Value: 1.1},

		{Subject: "Alphaland", Metric: domain.MetricTourismExpenditure, Value: 20},
		{Subject: "Betaland", Metric: domain.MetricTourismExpenditure, Value: 40},
		{Subject: "Ghostland", Metric: domain.MetricTourismExpenditure, Value: 20},
	})
}

func newTestEstimator(provider ports.IndicatorProvider, opts ...EstimatorOption) *Estimator {
	opts = append([]EstimatorOption{WithClock(ports.FixedClock(testDate))}, opts...)
	return NewEstimator(testAirports(), provider, opts...)
}

// overrideProvider replaces single values of a wrapped provider.
type overrideProvider struct {
	inner     ports.IndicatorProvider
	overrides map[string]float64
}

func (p overrideProvider) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	if v, ok := p.overrides[subject+"|"+string(metric)]; ok {
		return v, nil
	}
	return p.inner.LookupIndicator(ctx, subject, metric, asOf)
}

// ctxProvider fails once its context is done.
type ctxProvider struct {
	inner ports.IndicatorProvider
}

func (p ctxProvider) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.inner.LookupIndicator(ctx, subject, metric, asOf)
}
