package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"air-demand-service/internal/api"
	"air-demand-service/internal/app"
	"air-demand-service/internal/config"
	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/services"
	"air-demand-service/internal/worker"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (airport data, World Bank, GeoNames, Redis,
// Postgres) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	if err := logging.Initialize(logging.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
		Output: cfg.LoggingConfig.Output,
	}); err != nil {
		zap.NewExample().Fatal("initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	log := logging.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal("open runtime", zap.Error(err))
	}
	defer rt.Close()

	scheduler, err := startRefresh(rt)
	if err != nil {
		log.Fatal("schedule refresh", zap.Error(err))
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	router := api.NewRouter(api.Deps{
		Estimator:    rt.Estimator,
		Airports:     rt.Airports,
		Fleet:        rt.Fleet,
		RouteDemands: rt.RouteDemands,
		DefaultHub:   cfg.BatchConfig.Hub,
		MaxBatch:     cfg.BatchConfig.MaxRoutes,
	})

	// Timeouts are tuned for cold-cache batch estimation (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

// startRefresh schedules the periodic hub refresh when a schedule and a
// database are configured. It returns nil when there is nothing to schedule.
func startRefresh(rt *app.Runtime) (*worker.Scheduler, error) {
	cfg := rt.Config
	if cfg.BatchConfig.Schedule == "" {
		return nil, nil
	}
	if rt.RouteDemands == nil {
		logging.Named("server").Warn("REFRESH_SCHEDULE ignored without DATABASE_URL")
		return nil, nil
	}

	s := worker.NewScheduler(30 * time.Minute)
	err := s.Schedule("refresh-hub-demands", cfg.BatchConfig.Schedule, func(ctx context.Context) error {
		_, err := services.RefreshHubDemands(ctx, rt.Estimator, rt.Airports, rt.RouteDemands, cfg.BatchConfig.Hub)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Start()
	return s, nil
}
