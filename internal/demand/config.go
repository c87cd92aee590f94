// Package demand implements the passenger demand model: the four bounded demand
// factors, their weighted composite score, seasonality and the per-class multipliers.
package demand

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Canonical composite weights. WeightDF is derived so the set sums to one.
const (
	WeightEF = 0.4
	WeightPF = 0.3
	WeightTF = 0.2
	WeightDF = 1 - (WeightPF + WeightEF + WeightTF)
)

// DemandScalingFactor turns a composite score into a base passenger magnitude.
const DemandScalingFactor = 10_000

const (
	PeakSeasonMultiplier    = 1.5
	StdSeasonMultiplier     = 1.0
	OffPeakSeasonMultiplier = 0.5
)

// Log-normal distance factor parameters.
const (
	DistancePeakKm = 1000.0
	DistanceSigma  = 0.5
)

const weightSumTolerance = 1e-9

var ErrInvalidWeights = errors.New("invalid demand weights")

// Weights are the composite score coefficients of the four factors.
type Weights struct {
	Population float64
	Economic   float64
	Tourism    float64
	Distance   float64
}

func (w Weights) sum() float64 {
	return w.Population + w.Economic + w.Tourism + w.Distance
}

// ClassWeights are the per-class recombination coefficients.
type ClassWeights struct {
	FirstEconomic    float64
	BusinessEconomic float64
	BusinessTourism  float64
	EconomyScale     float64
}

// Seasons maps calendar months to a demand multiplier.
type Seasons struct {
	Peak          float64
	Standard      float64
	OffPeak       float64
	PeakMonths    []time.Month
	OffPeakMonths []time.Month
}

// Factor returns the multiplier for the month of t.
func (s Seasons) Factor(t time.Time) float64 {
	m := t.Month()
	for _, pm := range s.PeakMonths {
		if m == pm {
			return s.Peak
		}
	}
	for _, om := range s.OffPeakMonths {
		if m == om {
			return s.OffPeak
		}
	}
	return s.Standard
}

// Config is the full calibration of the demand model.
// Values are only obtained from DefaultConfig or NewConfig, which validate them once.
type Config struct {
	Weights        Weights
	ScalingFactor  float64
	Classes        ClassWeights
	Seasons        Seasons
	DistancePeakKm float64
	DistanceSigma  float64
}

// DefaultConfig returns the canonical calibration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Population: WeightPF,
			Economic:   WeightEF,
			Tourism:    WeightTF,
			Distance:   WeightDF,
		},
		ScalingFactor: DemandScalingFactor,
		Classes: ClassWeights{
			FirstEconomic:    0.05,
			BusinessEconomic: 0.08,
			BusinessTourism:  0.07,
			EconomyScale:     0.8,
		},
		Seasons: Seasons{
			Peak:          PeakSeasonMultiplier,
			Standard:      StdSeasonMultiplier,
			OffPeak:       OffPeakSeasonMultiplier,
			PeakMonths:    []time.Month{time.June, time.July, time.August, time.December},
			OffPeakMonths: []time.Month{time.January, time.February},
		},
		DistancePeakKm: DistancePeakKm,
		DistanceSigma:  DistanceSigma,
	}
}

// Option customizes a Config built by NewConfig.
type Option func(*Config)

// WithWeights replaces the composite weights.
func WithWeights(w Weights) Option {
	return func(c *Config) { c.Weights = w }
}

// WithScalingFactor replaces the base demand scaling factor.
func WithScalingFactor(f float64) Option {
	return func(c *Config) { c.ScalingFactor = f }
}

// WithClassWeights replaces the per-class coefficients.
func WithClassWeights(cw ClassWeights) Option {
	return func(c *Config) { c.Classes = cw }
}

// WithSeasons replaces the month to multiplier mapping.
func WithSeasons(s Seasons) Option {
	return func(c *Config) { c.Seasons = s }
}

// WithDistanceShape replaces the log-normal distance factor parameters.
func WithDistanceShape(peakKm, sigma float64) Option {
	return func(c *Config) {
		c.DistancePeakKm = peakKm
		c.DistanceSigma = sigma
	}
}

// NewConfig applies opts over DefaultConfig and validates the result.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("new demand config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"population": w.Population,
		"economic":   w.Economic,
		"tourism":    w.Tourism,
		"distance":   w.Distance,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s weight %v is negative", ErrInvalidWeights, name, v)
		}
	}
	if s := w.sum(); math.Abs(s-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeights, s)
	}

	if !(c.ScalingFactor > 0) {
		return fmt.Errorf("scaling factor must be positive, got %v", c.ScalingFactor)
	}

	cw := c.Classes
	if cw.FirstEconomic < 0 || cw.BusinessEconomic < 0 || cw.BusinessTourism < 0 || cw.EconomyScale < 0 {
		return errors.New("class weights must be non-negative")
	}

	s := c.Seasons
	if s.Peak < 0 || s.Standard < 0 || s.OffPeak < 0 {
		return errors.New("season multipliers must be non-negative")
	}
	seen := make(map[time.Month]struct{}, 12)
	for _, m := range append(append([]time.Month{}, s.PeakMonths...), s.OffPeakMonths...) {
		if m < time.January || m > time.December {
			return fmt.Errorf("invalid season month %d", m)
		}
		if _, ok := seen[m]; ok {
			return fmt.Errorf("month %s assigned to more than one season", m)
		}
		seen[m] = struct{}{}
	}

	if !(c.DistancePeakKm > 0) || !(c.DistanceSigma > 0) {
		return errors.New("distance peak and sigma must be positive")
	}

	return nil
}
