package handlers

import (
	"log/slog"
	"net/http"

	"tinyplanet-server/internal/game"
	"tinyplanet-server/internal/shared/errors"
	"tinyplanet-server/internal/shared/response"
)

// ViewerCounter reports how many snapshot viewers are connected.
type ViewerCounter interface {
	ClientCount() int
}

type GameStatusResponse struct {
	game.Status
	Viewers int `json:"viewers"`
}

type GameStatusHandler struct {
	service *game.Service
	viewers ViewerCounter
}

// NewGameStatusHandler builds the status handler. viewers may be nil.
func NewGameStatusHandler(service *game.Service, viewers ViewerCounter) *GameStatusHandler {
	return &GameStatusHandler{service: service, viewers: viewers}
}

func (h *GameStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "game_status")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	resp := GameStatusResponse{Status: h.service.Status()}
	if h.viewers != nil {
		resp.Viewers = h.viewers.ClientCount()
	}

	response.Success(w, http.StatusOK, resp)
}
