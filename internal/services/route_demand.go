package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"air-demand-service/internal/demand"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/geo"
	"air-demand-service/internal/platform/obs"
	"air-demand-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// State is the lifecycle position of a RouteDemand.
type State int

const (
	StateUninitialized State = iota
	StateCoordinatesResolved
	StateDistanceComputed
	StateIndicatorsFetched
	StateScoresComputed
	StateDone
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCoordinatesResolved:
		return "coordinates_resolved"
	case StateDistanceComputed:
		return "distance_computed"
	case StateIndicatorsFetched:
		return "indicators_fetched"
	case StateScoresComputed:
		return "scores_computed"
	case StateDone:
		return "done"
	case StateInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RouteDemand estimates passenger demand for one route.
//
// Indicators are fetched at most once per instance; ApproximatePaxDemand is
// idempotent and returns the same triple (or the same error) on every call.
// A RouteDemand is not safe for concurrent use.
type RouteDemand struct {
	route    *domain.Route
	provider ports.IndicatorProvider
	cfg      demand.Config
	asOf     time.Time

	state   State
	err     error
	inputs  demand.Inputs
	factors demand.Factors
	result  domain.ClassDemand
}

// NewRouteDemand resolves both airports and computes the route distance.
// It returns no RouteDemand when either airport is unknown or unresolved.
func NewRouteDemand(
	ctx context.Context,
	airports ports.AirportResolver,
	provider ports.IndicatorProvider,
	cfg demand.Config,
	originCode string,
	destinationCode string,
	asOf time.Time,
) (*RouteDemand, error) {
	originCode = normalizeCode(originCode)
	destinationCode = normalizeCode(destinationCode)
	if originCode == "" || destinationCode == "" {
		return nil, errors.New("new route demand: origin and destination must be non-empty")
	}

	origin, err := airports.ResolveAirport(ctx, originCode)
	if err != nil {
		return nil, fmt.Errorf("new route demand: resolve origin %q: %w", originCode, err)
	}

	destination, err := airports.ResolveAirport(ctx, destinationCode)
	if err != nil {
		return nil, fmt.Errorf("new route demand: resolve destination %q: %w", destinationCode, err)
	}

	route, err := domain.NewRoute(origin, destination, geo.GreatCircleDistance)
	if err != nil {
		return nil, fmt.Errorf("new route demand: %w", err)
	}

	return &RouteDemand{
		route:    route,
		provider: provider,
		cfg:      cfg,
		asOf:     asOf,
		state:    StateDistanceComputed,
	}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *RouteDemand) Route() *domain.Route { return r.route }

func (r *RouteDemand) State() State { return r.state }

// Factors returns the computed factors once scores are available.
func (r *RouteDemand) Factors() (demand.Factors, bool) {
	return r.factors, r.state >= StateScoresComputed && r.state != StateInvalid
}

// Indicators returns the fetched indicator bundle once available.
func (r *RouteDemand) Indicators() (domain.RouteIndicators, bool) {
	return r.inputs.Indicators, r.state >= StateIndicatorsFetched && r.state != StateInvalid
}

// ApproximatePaxDemand returns the first, business and economy class demand.
func (r *RouteDemand) ApproximatePaxDemand(ctx context.Context) (_ domain.ClassDemand, err error) {
	switch r.state {
	case StateDone:
		return r.result, nil
	case StateInvalid:
		return domain.ClassDemand{}, r.err
	}

	defer obs.Time(ctx, "route.ApproximatePaxDemand")(&err)

	if r.state < StateIndicatorsFetched {
		indicators, err := fetchIndicators(ctx, r.provider, r.route, r.asOf)
		if err != nil {
			// Cancellation is not a property of the route; allow a retry.
			if ctx.Err() != nil {
				return domain.ClassDemand{}, err
			}
			r.state = StateInvalid
			r.err = fmt.Errorf("approximate pax demand %s -> %s: %w", r.route.Origin.ICAO, r.route.Destination.ICAO, err)
			return domain.ClassDemand{}, r.err
		}
		r.inputs = demand.Inputs{Indicators: indicators, DistanceKm: r.route.DistanceKm()}
		r.state = StateIndicatorsFetched
	}

	r.factors = demand.ComputeFactors(r.cfg, r.inputs)
	r.state = StateScoresComputed

	r.result = demand.Estimate(r.cfg, r.factors, r.asOf)
	r.state = StateDone

	return r.result, nil
}

type indicatorLookup struct {
	metric  domain.Metric
	subject string
	out     *float64
}

// fetchIndicators queries the provider for both endpoints of every metric.
// Lookups are issued concurrently; the first failure cancels the rest.
func fetchIndicators(
	ctx context.Context,
	provider ports.IndicatorProvider,
	route *domain.Route,
	asOf time.Time,
) (domain.RouteIndicators, error) {
	var values [8]float64

	origin, dest := route.Origin, route.Destination
	lookups := []indicatorLookup{
		{domain.MetricPopulation, origin.Location, &values[0]},
		{domain.MetricPopulation, dest.Location, &values[1]},
		{domain.MetricGDPPerCapita, origin.Country, &values[2]},
		{domain.MetricGDPPerCapita, dest.Country, &values[3]},
		{domain.MetricPriceLevelIndex, origin.Country, &values[4]},
		{domain.MetricPriceLevelIndex, dest.Country, &values[5]},
		{domain.MetricTourismExpenditure, origin.Country, &values[6]},
		{domain.MetricTourismExpenditure, dest.Country, &values[7]},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lookups {
		l := l
		g.Go(func() error {
			v, err := provider.LookupIndicator(gctx, l.subject, l.metric, asOf)
			if err != nil {
				return &domain.IndicatorError{Metric: l.metric, Subject: l.subject, Err: err}
			}
			if err := checkIndicator(l.metric, v); err != nil {
				return &domain.IndicatorError{Metric: l.metric, Subject: l.subject, Err: err}
			}
			*l.out = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.RouteIndicators{}, fmt.Errorf("fetch indicators: %w", err)
	}

	return domain.RouteIndicators{
		Populations:         domain.NewIndicatorPair(values[0], values[1]),
		GDPs:                domain.NewIndicatorPair(values[2], values[3]),
		PLIs:                domain.NewIndicatorPair(values[4], values[5]),
		TourismExpenditures: domain.NewIndicatorPair(values[6], values[7]),
	}, nil
}

// checkIndicator rejects values the factor model cannot use.
// GDP and PLI must be strictly positive; counts and expenditures non-negative.
func checkIndicator(metric domain.Metric, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: value %v is not finite", domain.ErrIndicatorUnavailable, v)
	}

	switch metric {
	case domain.MetricGDPPerCapita, domain.MetricPriceLevelIndex:
		if v <= 0 {
			return fmt.Errorf("%w: value %v must be positive", domain.ErrIndicatorUnavailable, v)
		}
	default:
		if v < 0 {
			return fmt.Errorf("%w: value %v must not be negative", domain.ErrIndicatorUnavailable, v)
		}
	}
	return nil
}
