package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"tinyplanet-server/internal/game"
	"tinyplanet-server/internal/grid"
	"tinyplanet-server/internal/poi"
	"tinyplanet-server/internal/shared/errors"
	"tinyplanet-server/internal/shared/response"
	"tinyplanet-server/internal/surface"
	"tinyplanet-server/internal/tile"
)

const maxBodyBytes = 1 << 20

// PlaceRequest places Kind at Index, or at the slot under Angle when Index is omitted.
type PlaceRequest struct {
	Kind  tile.Kind `json:"kind"`
	Index *int      `json:"index,omitempty"`
	Angle *float32  `json:"angle,omitempty"`
}

type ConnectionRequest struct {
	A tile.ID `json:"a"`
	B tile.ID `json:"b"`
}

type HarvestRequest struct {
	Index *int     `json:"index,omitempty"`
	Angle *float32 `json:"angle,omitempty"`
	Kind  poi.Kind `json:"kind,omitempty"`
}

type GameHandler struct {
	service *game.Service
}

func NewGameHandler(service *game.Service) *GameHandler {
	return &GameHandler{service: service}
}

func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_state")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.service.Snapshot())
}

func (h *GameHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_catalog")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	response.Success(w, http.StatusOK, h.service.Catalog())
}

// GetPreview checks ?kind= at ?index= or at the slot under ?angle=.
func (h *GameHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_preview")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	query := r.URL.Query()
	var kind tile.Kind
	if err := kind.UnmarshalText([]byte(query.Get("kind"))); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid tile kind", err))
		return
	}

	if raw := query.Get("angle"); raw != "" {
		angle, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid angle format", err))
			return
		}
		response.Success(w, http.StatusOK, h.service.PreviewAngle(kind, float32(angle)))
		return
	}

	index, err := strconv.Atoi(query.Get("index"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid index format", err))
		return
	}

	response.Success(w, http.StatusOK, h.service.Preview(kind, index))
}

func (h *GameHandler) PlaceTile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "place_tile")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req PlaceRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var index int
	switch {
	case req.Index != nil:
		index = *req.Index
	case req.Angle != nil:
		index = h.service.CurrentPlanet().RadiansToIndex(*req.Angle)
	default:
		response.Error(w, r, logger, errors.Validation("index or angle is required"))
		return
	}

	result, err := h.service.Submit(ctx, game.Place{Kind: req.Kind, Index: index})
	if err != nil {
		fail(w, r, logger, err)
		return
	}

	logger.Info("Tile placed", "kind", req.Kind, "index", index, "tile_id", result.Tile.ID)
	response.Success(w, http.StatusCreated, result)
}

func (h *GameHandler) RemoveTile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "remove_tile")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := tileID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Submit(ctx, game.Remove{ID: id})
	if err != nil {
		fail(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *GameHandler) UpgradeTile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "upgrade_tile")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := tileID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Submit(ctx, game.Upgrade{ID: id})
	if err != nil {
		fail(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

// Connections adds a cable with POST and cuts it with DELETE.
func (h *GameHandler) Connections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "connections")

	var build func(ConnectionRequest) game.Command
	switch r.Method {
	case http.MethodPost:
		build = func(req ConnectionRequest) game.Command { return game.Connect{A: req.A, B: req.B} }
	case http.MethodDelete:
		build = func(req ConnectionRequest) game.Command { return game.Disconnect{A: req.A, B: req.B} }
	default:
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req ConnectionRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Submit(ctx, build(req))
	if err != nil {
		fail(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *GameHandler) Harvest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "harvest")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req HarvestRequest
	if err := decode(w, r, &req); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var index int
	switch {
	case req.Index != nil:
		index = *req.Index
	case req.Angle != nil:
		index = h.service.CurrentPlanet().RadiansToIndex(*req.Angle)
	default:
		response.Error(w, r, logger, errors.Validation("index or angle is required"))
		return
	}

	result, err := h.service.Submit(ctx, game.Harvest{Index: index, Kind: req.Kind})
	if err != nil {
		fail(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

// ReconfigurePlanet regenerates the planet. Fields left out of the body keep their current values.
func (h *GameHandler) ReconfigurePlanet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "reconfigure_planet")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	cfg := h.service.CurrentPlanet().Config()
	if err := decode(w, r, &cfg); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := cfg.Validate(); err != nil {
		fail(w, r, logger, err)
		return
	}

	result, err := h.service.Submit(ctx, game.Reconfigure{Config: cfg})
	if err != nil {
		fail(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.WrapValidation("invalid JSON in request body", err)
	}
	return nil
}

func tileID(r *http.Request) (tile.ID, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.WrapValidation("invalid tile ID format", err)
	}
	return tile.ID(id), nil
}

// fail answers a failed command. Internal failures keep their cause in the
// log only.
func fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	appErr := translate(err)
	if errors.GetType(appErr) == errors.ErrorTypeInternal {
		response.ErrorWithMessage(w, r, logger, appErr, "internal server error")
		return
	}
	response.Error(w, r, logger, appErr)
}

// translate maps simulation errors onto application errors.
func translate(err error) error {
	var (
		rejection *grid.Rejection
		unknown   *grid.UnknownTileError
		cfgErr    *surface.ConfigError
		cmdErr    *game.CommandError
	)

	switch {
	case stderrors.As(err, &rejection):
		return errors.Rejected(rejection.Error(), err, rejection)
	case stderrors.As(err, &unknown):
		return errors.NotFoundf("tile %d not found", unknown.ID)
	case stderrors.As(err, &cfgErr):
		return errors.WrapValidation(cfgErr.Error(), err)
	case stderrors.As(err, &cmdErr):
		return errors.Conflictf("%s", cmdErr.Error())
	case stderrors.Is(err, game.ErrStopped), stderrors.Is(err, game.ErrCommandTimeout):
		return errors.WrapUnavailable("simulation unavailable", err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.WrapUnavailable("request ended before the command was applied", err)
	}
	return errors.WrapInternal("command failed", err)
}
