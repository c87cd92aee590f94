package ports

import (
	"context"

	"air-demand-service/internal/domain"
)

// Port: a boundary for persisting route demand estimations.
type RouteDemandRepository interface {
	// Return stored estimations from origin to the given destinations.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]domain.RouteDemand, error)
	// Store estimations for a single origin, replacing existing rows.
	PutMany(ctx context.Context, origin string, demands []domain.RouteDemand) error
}

// Port: read access to the operated fleet.
type FleetRepository interface {
	ListFleet(ctx context.Context) ([]domain.Aircraft, error)
}
