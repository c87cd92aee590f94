package handlers

import (
	"net/http"
	"strings"

	"air-demand-service/internal/api/dto"
	"air-demand-service/internal/domain"
	"air-demand-service/internal/ports"

	"github.com/gin-gonic/gin"
)

type AirportHandler struct {
	Airports ports.AirportResolver
}

func toAirportResponse(a domain.Airport) dto.AirportResponse {
	res := dto.AirportResponse{
		ICAO:     a.ICAO,
		FullName: a.FullName,
		Location: a.Location,
		Country:  a.Country,
		TimeZone: a.TimeZone,
		Resolved: a.Resolved(),
	}
	if a.Coordinates != nil {
		lat, lon := a.Coordinates.Lat, a.Coordinates.Lon
		res.Lat, res.Lon = &lat, &lon
	}
	return res
}

// Get returns the master data of one airport.
func (h *AirportHandler) Get(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		writeError(c, http.StatusBadRequest, "airport code is required")
		return
	}

	a, err := h.Airports.ResolveAirport(c.Request.Context(), code)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAirportResponse(a))
}
