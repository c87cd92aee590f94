package api

import (
	"air-demand-service/internal/api/handlers"
	"air-demand-service/internal/ports"
	"air-demand-service/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP handlers need. Fleet and RouteDemands may be nil.
type Deps struct {
	Estimator    *services.Estimator
	Airports     ports.AirportResolver
	Fleet        ports.FleetRepository
	RouteDemands ports.RouteDemandRepository
	DefaultHub   string
	MaxBatch     int
}

// NewRouter wires HTTP handlers with their dependencies.
// Handlers stay unaware of concrete adapters.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware())

	airportHandler := &handlers.AirportHandler{Airports: deps.Airports}
	demandHandler := &handlers.DemandHandler{
		Estimator:  deps.Estimator,
		DefaultHub: deps.DefaultHub,
		MaxBatch:   deps.MaxBatch,
	}
	aircraftHandler := &handlers.AircraftHandler{Airports: deps.Airports, Fleet: deps.Fleet}
	storedHandler := &handlers.StoredDemandHandler{Repo: deps.RouteDemands, MaxBatch: deps.MaxBatch}

	router.GET("/health", handlers.Health)
	router.GET("/airports/:code", airportHandler.Get)
	router.GET("/routes/:origin/:destination/demand", demandHandler.Route)
	router.GET("/routes/:origin/:destination/aircraft", aircraftHandler.ForRoute)
	router.POST("/demands", demandHandler.Batch)
	router.GET("/hubs/:hub/demands", storedHandler.List)

	return router
}
