package demand

import (
	"testing"
	"time"

	"air-demand-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestClassMultipliers_Bounds(t *testing.T) {
	cw := DefaultConfig().Classes

	for _, p := range unitGrid {
		for _, e := range unitGrid {
			for _, tr := range unitGrid {
				for _, d := range unitGrid {
					f := Factors{Population: p, Economic: e, Tourism: tr, Distance: d}

					first := FirstClassMultiplier(cw, f)
					business := BusinessClassMultiplier(cw, f)
					economy := EconomyClassMultiplier(cw, f)

					assert.GreaterOrEqual(t, first, 0.0)
					assert.LessOrEqual(t, first, 0.05)
					assert.GreaterOrEqual(t, business, 0.0)
					assert.LessOrEqual(t, business, 0.15+1e-12)
					assert.GreaterOrEqual(t, economy, 0.0)
					assert.LessOrEqual(t, economy, 1.6)
				}
			}
		}
	}

	assert.InDelta(t, 0.05, FirstClassMultiplier(cw, Factors{1, 1, 1, 1}), 1e-12)
	assert.InDelta(t, 0.15, BusinessClassMultiplier(cw, Factors{1, 1, 1, 1}), 1e-12)
	assert.InDelta(t, 1.6, EconomyClassMultiplier(cw, Factors{1, 1, 1, 1}), 1e-12)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, 12, Truncate(12.9))
	assert.Equal(t, 12, Truncate(12.1))
	assert.Equal(t, 0, Truncate(0.999))
	assert.Equal(t, 13, Truncate(13))
}

func TestEstimate(t *testing.T) {
	cfg := DefaultConfig()
	f := ComputeFactors(cfg, Inputs{Indicators: sampleIndicators, DistanceKm: 1000})

	tests := []struct {
		name string
		date time.Time
		want domain.ClassDemand
	}{
		{"standard season", time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), domain.ClassDemand{First: 74, Business: 396, Economy: 7650}},
		{"peak season", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), domain.ClassDemand{First: 112, Business: 595, Economy: 11476}},
		{"off peak season", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), domain.ClassDemand{First: 37, Business: 198, Economy: 3825}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(cfg, f, tt.date))
		})
	}
}

func TestEstimate_TruncatesRawDemand(t *testing.T) {
	// Base demand of 258 with a first-class multiplier of 0.05 gives 12.9 passengers.
	cfg, err := NewConfig(WithWeights(Weights{Economic: 1}), WithScalingFactor(258))
	assert.NoError(t, err)

	got := Estimate(cfg, Factors{Economic: 1}, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 12, got.First)
}
