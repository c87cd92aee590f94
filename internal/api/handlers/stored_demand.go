package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"air-demand-service/internal/api/dto"
	"air-demand-service/internal/ports"

	"github.com/gin-gonic/gin"
)

// StoredDemandHandler serves estimations persisted by the scheduled refresh.
type StoredDemandHandler struct {
	Repo     ports.RouteDemandRepository
	MaxBatch int
}

// List returns the stored estimations from :hub to ?destinations=A,B,...
// in request order. Destinations without a stored row are listed as missing.
func (h *StoredDemandHandler) List(c *gin.Context) {
	if h.Repo == nil {
		writeError(c, http.StatusServiceUnavailable, "route demand storage is not configured")
		return
	}

	hub := strings.ToUpper(strings.TrimSpace(c.Param("hub")))
	if hub == "" {
		writeError(c, http.StatusBadRequest, "hub is required")
		return
	}

	var destinations []string
	for _, d := range strings.Split(c.Query("destinations"), ",") {
		if d = strings.ToUpper(strings.TrimSpace(d)); d != "" {
			destinations = append(destinations, d)
		}
	}
	if len(destinations) == 0 {
		writeError(c, http.StatusBadRequest, "destinations must not be empty")
		return
	}
	if h.MaxBatch > 0 && len(destinations) > h.MaxBatch {
		writeError(c, http.StatusBadRequest, "too many destinations")
		return
	}

	stored, err := h.Repo.GetMany(c.Request.Context(), hub, destinations)
	if err != nil {
		writeServiceError(c, fmt.Errorf("get stored demands: %w", err))
		return
	}

	res := dto.StoredDemandsResponse{Hub: hub, Routes: []dto.StoredDemandResponse{}, Missing: []string{}}
	for _, d := range destinations {
		rd, ok := stored[d]
		if !ok {
			res.Missing = append(res.Missing, d)
			continue
		}
		res.Routes = append(res.Routes, dto.StoredDemandResponse{
			Destination: rd.Destination,
			DistanceKm:  rd.DistanceKm,
			Demand: dto.ClassDemandResponse{
				First:    rd.Demand.First,
				Business: rd.Demand.Business,
				Economy:  rd.Demand.Economy,
				Total:    rd.Demand.Total(),
			},
			EstimatedAt: rd.EstimatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}
