package demand

import (
	"math"
	"time"

	"air-demand-service/internal/domain"
)

// FirstClassMultiplier tracks economic similarity only.
// Bounded by cw.FirstEconomic (0.05 by default).
func FirstClassMultiplier(cw ClassWeights, f Factors) float64 {
	return f.Economic * cw.FirstEconomic
}

// BusinessClassMultiplier combines economic parity and tourism connectivity.
// Bounded by cw.BusinessEconomic + cw.BusinessTourism (0.15 by default).
func BusinessClassMultiplier(cw ClassWeights, f Factors) float64 {
	return f.Economic*cw.BusinessEconomic + f.Tourism*cw.BusinessTourism
}

// EconomyClassMultiplier is driven by population and distance.
// Bounded by 2 * cw.EconomyScale (1.6 by default) since both factors are in [0, 1].
func EconomyClassMultiplier(cw ClassWeights, f Factors) float64 {
	return (f.Population + f.Distance) * cw.EconomyScale
}

// Truncate converts a raw passenger count to an integer, dropping the fraction.
func Truncate(raw float64) int {
	return int(math.Trunc(raw))
}

// Estimate computes the class demand triple for the given factors on date.
func Estimate(cfg Config, f Factors, date time.Time) domain.ClassDemand {
	seasonal := BaseDemand(cfg, f) * cfg.Seasons.Factor(date)
	return domain.ClassDemand{
		First:    Truncate(seasonal * FirstClassMultiplier(cfg.Classes, f)),
		Business: Truncate(seasonal * BusinessClassMultiplier(cfg.Classes, f)),
		Economy:  Truncate(seasonal * EconomyClassMultiplier(cfg.Classes, f)),
	}
}
