package server

import (
	"log/slog"
	"net/http"

	"tinyplanet-server/internal/game"
	gameHandlers "tinyplanet-server/internal/game/handlers"
	"tinyplanet-server/internal/middleware"
	planetHandlers "tinyplanet-server/internal/planet/handlers"
	serverHandlers "tinyplanet-server/internal/server/handlers"
	"tinyplanet-server/internal/stream"
)

type Routes struct {
	gameService *game.Service
	hub         *stream.Hub
	redis       serverHandlers.Pinger
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// NewRoutes wires the HTTP surface. hub and redis may be nil when those features are off.
func NewRoutes(gameService *game.Service, hub *stream.Hub, redis serverHandlers.Pinger, rateLimiter *middleware.RateLimiter, logger *slog.Logger) *Routes {
	return &Routes{
		gameService: gameService,
		hub:         hub,
		redis:       redis,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	var viewers gameHandlers.ViewerCounter
	if r.hub != nil {
		viewers = r.hub
	}

	healthHandler := serverHandlers.NewHealthHandler(r.gameService, r.redis)
	gameStatusHandler := gameHandlers.NewGameStatusHandler(r.gameService, viewers)
	gameHandler := gameHandlers.NewGameHandler(r.gameService)
	planetHandler := planetHandlers.NewPlanetHandler(r.gameService)

	limited := func(h http.HandlerFunc) http.Handler {
		return r.rateLimiter.Middleware(h)
	}

	// Read endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.Handle("/api/game/status", gameStatusHandler)
	mux.HandleFunc("/api/state", gameHandler.GetState)
	mux.HandleFunc("/api/catalog", gameHandler.GetCatalog)
	mux.HandleFunc("/api/preview", gameHandler.GetPreview)
	mux.HandleFunc("/api/planet", planetHandler.GetPlanet)
	mux.HandleFunc("/api/planet/transform", planetHandler.GetTransform)
	mux.HandleFunc("/api/planet/index", planetHandler.GetIndex)

	// Command endpoints
	mux.Handle("/api/tiles", limited(gameHandler.PlaceTile))
	mux.Handle("/api/tiles/{id}", limited(gameHandler.RemoveTile))
	mux.Handle("/api/tiles/{id}/upgrade", limited(gameHandler.UpgradeTile))
	mux.Handle("/api/connections", limited(gameHandler.Connections))
	mux.Handle("/api/harvest", limited(gameHandler.Harvest))
	mux.Handle("/api/planet/config", limited(gameHandler.ReconfigurePlanet))

	streamEndpoints := []string{}
	if r.hub != nil {
		mux.HandleFunc("/ws", r.hub.ServeWS)
		streamEndpoints = append(streamEndpoints, "/ws")
	}

	logger.Info("Routes configured successfully",
		"read_endpoints", []string{"/api/server/health", "/api/game/status", "/api/state", "/api/catalog", "/api/preview", "/api/planet"},
		"command_endpoints", []string{"/api/tiles", "/api/tiles/{id}", "/api/tiles/{id}/upgrade", "/api/connections", "/api/harvest", "/api/planet/config"},
		"stream_endpoints", streamEndpoints,
	)

	return mux
}
