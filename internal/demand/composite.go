package demand

// CompositeScore is the weighted blend of the four factors.
// It stays in [0, 1] for factors in [0, 1] and weights summing to one.
func CompositeScore(w Weights, f Factors) float64 {
	return w.Population*f.Population +
		w.Economic*f.Economic +
		w.Tourism*f.Tourism +
		w.Distance*f.Distance
}

// BaseDemand scales the composite score into a passenger magnitude in
// [0, cfg.ScalingFactor].
func BaseDemand(cfg Config, f Factors) float64 {
	return CompositeScore(cfg.Weights, f) * cfg.ScalingFactor
}
