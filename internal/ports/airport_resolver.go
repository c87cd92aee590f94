package ports

import (
	"context"

	"air-demand-service/internal/domain"
)

// Contract for resolving airport master data by ICAO code.
type AirportResolver interface {
	// Return the airport for code, or an error wrapping domain.ErrAirportNotFound.
	// Known airports without a position are returned with nil Coordinates.
	ResolveAirport(ctx context.Context, code string) (domain.Airport, error)
}

// Optional extension of AirportResolver that can enumerate its airports.
type AirportLister interface {
	AirportResolver
	// Return every known airport code in a stable order.
	ListAirportCodes(ctx context.Context) ([]string, error)
}
