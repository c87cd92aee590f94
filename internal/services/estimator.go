package services

import (
	"context"
	"fmt"
	"time"

	"air-demand-service/internal/demand"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/obs"
	"air-demand-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Estimation is the full outcome of one route estimation.
type Estimation struct {
	Route      *domain.Route
	Indicators domain.RouteIndicators
	Factors    demand.Factors
	Demand     domain.ClassDemand
	AsOf       time.Time
}

// RouteDemand returns the persistable view of the estimation.
func (e Estimation) RouteDemand() domain.RouteDemand {
	return domain.RouteDemand{
		Origin:      e.Route.Origin.ICAO,
		Destination: e.Route.Destination.ICAO,
		DistanceKm:  e.Route.DistanceKm(),
		Demand:      e.Demand,
		EstimatedAt: e.AsOf,
	}
}

// BatchResult is the outcome for one destination of EstimateMany.
// Exactly one of Estimation and Err is set.
type BatchResult struct {
	Destination string
	Estimation  *Estimation
	Err         error
}

type Estimator struct {
	airports    ports.AirportResolver
	indicators  ports.IndicatorProvider
	clock       ports.Clock
	cfg         demand.Config
	concurrency int
}

type EstimatorOption func(*Estimator)

func WithClock(c ports.Clock) EstimatorOption {
	return func(e *Estimator) { e.clock = c }
}

func WithDemandConfig(cfg demand.Config) EstimatorOption {
	return func(e *Estimator) { e.cfg = cfg }
}

// WithConcurrency bounds the number of routes EstimateMany runs at once.
func WithConcurrency(n int) EstimatorOption {
	return func(e *Estimator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEstimator(airports ports.AirportResolver, indicators ports.IndicatorProvider, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		airports:    airports,
		indicators:  indicators,
		clock:       ports.SystemClock{},
		cfg:         demand.DefaultConfig(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the demand model configuration in use.
func (e *Estimator) Config() demand.Config { return e.cfg }

// EstimateRouteDemand returns the class demand between two airports as of the
// estimator's clock.
func (e *Estimator) EstimateRouteDemand(ctx context.Context, origin, destination string) (domain.ClassDemand, error) {
	est, err := e.EstimateAt(ctx, origin, destination, e.clock.Now())
	if err != nil {
		return domain.ClassDemand{}, err
	}
	return est.Demand, nil
}

// Estimate is EstimateRouteDemand with the intermediate values kept.
func (e *Estimator) Estimate(ctx context.Context, origin, destination string) (*Estimation, error) {
	return e.EstimateAt(ctx, origin, destination, e.clock.Now())
}

// EstimateAt estimates a route for an explicit evaluation date.
func (e *Estimator) EstimateAt(ctx context.Context, origin, destination string, asOf time.Time) (_ *Estimation, err error) {
	defer obs.Time(ctx, "estimator.EstimateAt")(&err)

	rd, err := NewRouteDemand(ctx, e.airports, e.indicators, e.cfg, origin, destination, asOf)
	if err != nil {
		return nil, fmt.Errorf("estimate route demand: %w", err)
	}

	d, err := rd.ApproximatePaxDemand(ctx)
	if err != nil {
		return nil, fmt.Errorf("estimate route demand: %w", err)
	}

	indicators, _ := rd.Indicators()
	factors, _ := rd.Factors()

	return &Estimation{
		Route:      rd.Route(),
		Indicators: indicators,
		Factors:    factors,
		Demand:     d,
		AsOf:       asOf,
	}, nil
}

// EstimateMany estimates every route from origin to destinations concurrently.
// Results keep the order of destinations. A failed route is reported in its
// BatchResult and does not stop the others; only context cancellation does.
func (e *Estimator) EstimateMany(ctx context.Context, origin string, destinations []string) (_ []BatchResult, err error) {
	defer obs.Time(ctx, "estimator.EstimateMany")(&err)

	asOf := e.clock.Now()
	results := make([]BatchResult, len(destinations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, dest := range destinations {
		i, dest := i, dest
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			est, err := e.EstimateAt(gctx, origin, dest, asOf)
			results[i] = BatchResult{Destination: normalizeCode(dest), Estimation: est, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("estimate many from %s: %w", origin, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("estimate many from %s: %w", origin, err)
	}
	return results, nil
}
