package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"air-demand-service/internal/api/dto"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/geo"
	"air-demand-service/internal/ports"

	"github.com/gin-gonic/gin"
)

type AircraftHandler struct {
	Airports ports.AirportResolver
	Fleet    ports.FleetRepository
}

// ForRoute lists the fleet aircraft whose range covers the route.
func (h *AircraftHandler) ForRoute(c *gin.Context) {
	if h.Fleet == nil {
		writeError(c, http.StatusServiceUnavailable, "fleet data is not configured")
		return
	}

	ctx := c.Request.Context()

	origin, err := h.Airports.ResolveAirport(ctx, strings.TrimSpace(c.Param("origin")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	destination, err := h.Airports.ResolveAirport(ctx, strings.TrimSpace(c.Param("destination")))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	route, err := domain.NewRoute(origin, destination, geo.GreatCircleDistance)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	fleet, err := h.Fleet.ListFleet(ctx)
	if err != nil {
		writeServiceError(c, fmt.Errorf("list fleet: %w", err))
		return
	}

	res := dto.RouteAircraftResponse{
		Origin:      origin.ICAO,
		Destination: destination.ICAO,
		DistanceKm:  route.DistanceKm(),
		Aircraft:    []dto.AircraftResponse{},
	}
	for _, a := range fleet {
		if !a.Fits(route) {
			continue
		}
		res.Aircraft = append(res.Aircraft, dto.AircraftResponse{
			Registration:   a.Registration,
			AircraftID:     a.AircraftID,
			Model:          a.Model,
			MaxRangeKm:     a.MaxRangeKm,
			AvgSpeedKmh:    a.AvgSpeedKmh,
			TurnaroundMins: a.TurnaroundMins,
			Capacity:       a.Capacity,
			Seats:          a.Seats(),
		})
	}

	c.JSON(http.StatusOK, res)
}
