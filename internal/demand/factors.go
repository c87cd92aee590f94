package demand

import (
	"math"
	"time"

	"air-demand-service/internal/domain"
)

// esrEpsilon is added to the economic similarity ratio before taking its log.
const esrEpsilon = 1e-5

// Factors are the four normalized demand drivers of a route, each in [0, 1].
type Factors struct {
	Population float64
	Economic   float64
	Tourism    float64
	Distance   float64
}

// Inputs is the per-route bundle every factor and multiplier is computed from.
type Inputs struct {
	Indicators domain.RouteIndicators
	DistanceKm float64
}

// geometricOverMax returns sqrt(product)/max, or 0 when max is at or below zero.
func geometricOverMax(p domain.IndicatorPair) float64 {
	m := p.Max()
	if m <= 0 {
		return 0
	}
	if p.Product <= 0 {
		return 0
	}
	return math.Min(math.Sqrt(p.Product)/m, 1)
}

// PopulationFactor is the geometric mean of both populations over the larger one.
func PopulationFactor(populations domain.IndicatorPair) float64 {
	return geometricOverMax(populations)
}

// TourismFactor is the geometric mean of both tourism expenditures over the larger one.
func TourismFactor(expenditures domain.IndicatorPair) float64 {
	return geometricOverMax(expenditures)
}

// EconomicFactor is the logistic of the log economic similarity ratio, where the
// ratio compares PPP-adjusted GDP per capita of origin over destination.
// It is 0.5 at parity and tends to 1 as the origin dominates.
func EconomicFactor(gdps, plis domain.IndicatorPair) float64 {
	adjustedOrigin := gdps.Origin / plis.Origin
	adjustedDest := gdps.Destination / plis.Destination

	esr := adjustedOrigin / adjustedDest
	if adjustedOrigin == 0 && adjustedDest == 0 {
		esr = 1
	}

	return logistic(math.Log(esr + esrEpsilon))
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// DistanceFactor scores a route distance with the default log-normal shape.
func DistanceFactor(distanceKm float64) float64 {
	return distanceFactor(distanceKm, DistancePeakKm, DistanceSigma)
}

// distanceFactor is the ratio of the log-normal density at d to its density at
// the reference scale, capped at 1.
func distanceFactor(d, scale, sigma float64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Min(lognormPDF(d, sigma, scale)/lognormPDF(scale, sigma, scale), 1)
}

func lognormPDF(x, sigma, scale float64) float64 {
	z := math.Log(x/scale) / sigma
	return math.Exp(-z*z/2) / (x * sigma * math.Sqrt(2*math.Pi))
}

// SeasonalityFactor returns the default season multiplier for t's month.
func SeasonalityFactor(t time.Time) float64 {
	return DefaultConfig().Seasons.Factor(t)
}

// ComputeFactors evaluates the four factors of in under cfg.
func ComputeFactors(cfg Config, in Inputs) Factors {
	ind := in.Indicators
	return Factors{
		Population: PopulationFactor(ind.Populations),
		Economic:   EconomicFactor(ind.GDPs, ind.PLIs),
		Tourism:    TourismFactor(ind.TourismExpenditures),
		Distance:   distanceFactor(in.DistanceKm, cfg.DistancePeakKm, cfg.DistanceSigma),
	}
}
