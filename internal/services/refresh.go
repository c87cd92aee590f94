package services

import (
	"context"
	"fmt"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/platform/obs"
	"air-demand-service/internal/ports"

	"go.uber.org/zap"
)

// RefreshResult counts the routes a refresh stored and those it could not estimate.
type RefreshResult struct {
	Stored int
	Failed int
}

// RefreshHubDemands re-estimates every known airport from hub and stores the
// successful estimations. Routes that fail are logged and left untouched in
// the repository.
func RefreshHubDemands(
	ctx context.Context,
	est *Estimator,
	airports ports.AirportLister,
	repo ports.RouteDemandRepository,
	hub string,
) (_ RefreshResult, err error) {
	defer obs.Time(ctx, "batch.RefreshHubDemands")(&err)

	hub = normalizeCode(hub)

	codes, err := airports.ListAirportCodes(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("refresh hub demands: list airports: %w", err)
	}

	destinations := make([]string, 0, len(codes))
	for _, c := range codes {
		if normalizeCode(c) != hub {
			destinations = append(destinations, c)
		}
	}

	results, err := est.EstimateMany(ctx, hub, destinations)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("refresh hub demands: %w", err)
	}

	log := logging.Named("refresh")
	var res RefreshResult
	demands := make([]domain.RouteDemand, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			log.Warn("route not refreshed", zap.String("hub", hub), zap.String("destination", r.Destination), zap.Error(r.Err))
			res.Failed++
			continue
		}
		demands = append(demands, r.Estimation.RouteDemand())
	}

	if err := repo.PutMany(ctx, hub, demands); err != nil {
		return RefreshResult{}, fmt.Errorf("refresh hub demands: store: %w", err)
	}
	res.Stored = len(demands)

	log.Info("hub demands refreshed", zap.String("hub", hub), zap.Int("stored", res.Stored), zap.Int("failed", res.Failed))
	return res, nil
}
