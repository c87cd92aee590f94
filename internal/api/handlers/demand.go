package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"air-demand-service/internal/api/dto"
	"air-demand-service/internal/services"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type DemandHandler struct {
	Estimator  *services.Estimator
	DefaultHub string
	// MaxBatch caps the destinations of one batch request.
	MaxBatch int
}

func (h *DemandHandler) toDemandResponse(e *services.Estimation) dto.DemandResponse {
	cfg := h.Estimator.Config()
	return dto.DemandResponse{
		Origin:      e.Route.Origin.ICAO,
		Destination: e.Route.Destination.ICAO,
		DistanceKm:  e.Route.DistanceKm(),
		Date:        e.AsOf.Format(dateLayout),
		Demand: dto.ClassDemandResponse{
			First:    e.Demand.First,
			Business: e.Demand.Business,
			Economy:  e.Demand.Economy,
			Total:    e.Demand.Total(),
		},
		Factors: dto.FactorsResponse{
			Population:  e.Factors.Population,
			Economic:    e.Factors.Economic,
			Tourism:     e.Factors.Tourism,
			Distance:    e.Factors.Distance,
			Seasonality: cfg.Seasons.Factor(e.AsOf),
		},
	}
}

// Route estimates the demand of a single route, optionally for ?date=YYYY-MM-DD.
func (h *DemandHandler) Route(c *gin.Context) {
	origin := strings.TrimSpace(c.Param("origin"))
	destination := strings.TrimSpace(c.Param("destination"))
	if origin == "" || destination == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}

	ctx := c.Request.Context()

	var (
		est *services.Estimation
		err error
	)
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, perr := time.Parse(dateLayout, raw)
		if perr != nil {
			writeError(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}
		est, err = h.Estimator.EstimateAt(ctx, origin, destination, date)
	} else {
		est, err = h.Estimator.Estimate(ctx, origin, destination)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toDemandResponse(est))
}

// Batch estimates the demand from one hub to many destinations. Failed routes
// are reported inline and do not fail the request.
func (h *DemandHandler) Batch(c *gin.Context) {
	var req dto.BatchDemandRequest

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	hub := strings.ToUpper(strings.TrimSpace(req.Hub))
	if hub == "" {
		hub = strings.ToUpper(strings.TrimSpace(h.DefaultHub))
	}
	if hub == "" {
		writeError(c, http.StatusBadRequest, "hub is required")
		return
	}

	if len(req.Destinations) == 0 {
		writeError(c, http.StatusBadRequest, "destinations must not be empty")
		return
	}
	if h.MaxBatch > 0 && len(req.Destinations) > h.MaxBatch {
		writeError(c, http.StatusBadRequest, "too many destinations")
		return
	}
	for _, d := range req.Destinations {
		if strings.TrimSpace(d) == "" {
			writeError(c, http.StatusBadRequest, "destinations must not contain empty codes")
			return
		}
	}

	results, err := h.Estimator.EstimateMany(c.Request.Context(), hub, req.Destinations)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	res := dto.BatchDemandResponse{Hub: hub, Routes: make([]dto.BatchRouteResponse, 0, len(results))}
	for _, r := range results {
		route := dto.BatchRouteResponse{Destination: r.Destination}
		if r.Err != nil {
			route.Error = r.Err.Error()
		} else {
			d := h.toDemandResponse(r.Estimation)
			route.Result = &d
		}
		res.Routes = append(res.Routes, route)
	}

	c.JSON(http.StatusOK, res)
}
