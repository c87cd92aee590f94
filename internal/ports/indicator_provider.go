package ports

import (
	"context"
	"time"

	"air-demand-service/internal/domain"
)

// Contract for looking up socio-economic indicators.
//
// For domain.MetricPopulation the subject is the airport location (city);
// for every other metric it is the country name.
type IndicatorProvider interface {
	// Return the value of metric for subject as of the given date, or an error
	// wrapping domain.ErrIndicatorUnavailable when no value exists.
	LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error)
}
