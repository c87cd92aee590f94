package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAirportNotFound is returned by resolvers for codes they do not know.
	ErrAirportNotFound = errors.New("no such airport")
	// ErrUnresolvedAirport marks an airport whose coordinates are missing.
	ErrUnresolvedAirport = errors.New("airport coordinates unresolved")
	// ErrIndicatorUnavailable is returned when a provider has no value for a metric.
	ErrIndicatorUnavailable = errors.New("indicator unavailable")
)

// IndicatorError records which lookup failed while building a route's indicators.
type IndicatorError struct {
	Metric  Metric
	Subject string
	Err     error
}

func (e *IndicatorError) Error() string {
	return fmt.Sprintf("indicator %s for %q: %v", e.Metric, e.Subject, e.Err)
}

func (e *IndicatorError) Unwrap() error { return e.Err }
