package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tinyplanet-server/internal/shared/response"
)

type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Simulation string `json:"simulation"`
	Tick       uint64 `json:"tick"`
	Redis      string `json:"redis"`
}

// Simulation reports whether the tick loop is alive.
type Simulation interface {
	Running() bool
	Tick() uint64
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	simulation Simulation
	redis      Pinger
}

// NewHealthHandler builds the health handler. redis is nil when snapshots are not stored.
func NewHealthHandler(simulation Simulation, redis Pinger) *HealthHandler {
	return &HealthHandler{simulation: simulation, redis: redis}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health")

	resp := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().Format(time.RFC3339),
		Simulation: "running",
		Tick:       h.simulation.Tick(),
		Redis:      "disabled",
	}

	if !h.simulation.Running() {
		resp.Status = "degraded"
		resp.Simulation = "stopped"
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.redis.Ping(ctx); err == nil {
			resp.Redis = "connected"
		} else {
			logger.Warn("Redis ping failed", "error", err)
			resp.Redis = "disconnected"
			resp.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if resp.Simulation != "running" {
		statusCode = http.StatusServiceUnavailable
	}

	response.Success(w, statusCode, resp)
}
