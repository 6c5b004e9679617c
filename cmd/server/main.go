package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tinyplanet-server/internal/game"
	"tinyplanet-server/internal/middleware"
	"tinyplanet-server/internal/server"
	serverHandlers "tinyplanet-server/internal/server/handlers"
	"tinyplanet-server/internal/shared/config"
	"tinyplanet-server/internal/shared/logger"
	"tinyplanet-server/internal/shared/redis"
	"tinyplanet-server/internal/stream"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	if err := logger.Init(); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := loadCatalog(cfg.Simulation)
	if err != nil {
		return err
	}

	g, err := game.New(buildSettings(cfg), catalog)
	if err != nil {
		return err
	}

	summary := g.Planet().Summary()
	log.Info("Planet generated",
		"seed", summary.Config.Seed,
		"radius", summary.Config.Radius,
		"tile_places", summary.TilePlaces,
		"min_height", summary.MinHeight,
		"max_height", summary.MaxHeight,
		"points_of_interest", g.PointsOfInterest().Len())

	redisClient, err := redis.Connect()
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publishers []game.Publisher
	var redisPinger serverHandlers.Pinger
	if redisClient != nil {
		snapshots := redis.NewSnapshotPublisher(redisClient, cfg.Redis.Key, cfg.Redis.Channel)
		if last, ok, err := snapshots.Latest(ctx); err != nil {
			log.Warn("Failed to read previous snapshot", "error", err)
		} else if ok {
			log.Info("Previous session snapshot found, starting a new planet", "previous_tick", last.Tick)
		}
		publishers = append(publishers, snapshots)
		redisPinger = redisClient
	}

	var hub *stream.Hub
	service := game.NewService(g, game.ServiceConfig{
		TickHz:         cfg.Simulation.TickHz,
		CommandTimeout: cfg.Simulation.CommandTimeout,
		PublishEvery:   cfg.Stream.PublishEvery,
	}, slog.Default(), publishers...)

	if cfg.Stream.Enabled {
		hub = stream.NewHub(stream.Config{
			WriteTimeout: cfg.Stream.WriteTimeout,
			PingInterval: cfg.Stream.PingInterval,
		}, service, slog.Default())
		go hub.Run(ctx)
		service.AddPublisher(hub)
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
		TrustProxy:        cfg.Server.Environment == "production",
	})

	routes := server.NewRoutes(service, hub, redisPinger, rateLimiter, slog.Default())
	handler := middleware.RequestID(middleware.NewCORS().Middleware(routes.Setup()))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	service.Start(ctx)
	defer service.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Tiny Planet server starting", "port", cfg.Server.Port, "url", cfg.Server.URL, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped", "ticks", service.Tick())
	return nil
}
