package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"tinyplanet-server/internal/planet"
	"tinyplanet-server/internal/shared/errors"
	"tinyplanet-server/internal/shared/response"
)

// Provider hands out the planet currently being played on.
type Provider interface {
	CurrentPlanet() *planet.Planet
}

type PlanetResponse struct {
	planet.Summary
	Heightfield any `json:"heightfield,omitempty"`
}

type TransformResponse struct {
	Index     int              `json:"index"`
	Angle     float32          `json:"angle"`
	Placement planet.Placement `json:"placement"`
}

type IndexResponse struct {
	Angle float32 `json:"angle"`
	Index int     `json:"index"`
}

type PlanetHandler struct {
	provider Provider
}

func NewPlanetHandler(provider Provider) *PlanetHandler {
	return &PlanetHandler{provider: provider}
}

// GetPlanet returns the planet summary. The samples are included with ?samples=true.
func (h *PlanetHandler) GetPlanet(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	p := h.provider.CurrentPlanet()
	resp := PlanetResponse{Summary: p.Summary()}
	if r.URL.Query().Get("samples") == "true" {
		resp.Heightfield = p.Heightfield()
	}

	response.Success(w, http.StatusOK, resp)
}

// GetTransform places an object on the surface, either at ?angle= or at slot
// ?index= with ?width=. ?offset= and ?depth= are passed through.
func (h *PlanetHandler) GetTransform(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet_transform")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	query := r.URL.Query()
	offset, err := parseFloat(query.Get("offset"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid offset format", err))
		return
	}
	depth, err := parseFloat(query.Get("depth"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid depth format", err))
		return
	}

	p := h.provider.CurrentPlanet()

	if raw := query.Get("angle"); raw != "" {
		angle, err := parseFloat(raw)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid angle format", err))
			return
		}

		response.Success(w, http.StatusOK, TransformResponse{
			Index:     p.RadiansToIndex(angle),
			Angle:     planet.NormalizeAngle(angle),
			Placement: p.RadiansToTransform(angle, offset, depth),
		})
		return
	}

	index, err := strconv.Atoi(query.Get("index"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid index format", err))
		return
	}

	width := 1
	if raw := query.Get("width"); raw != "" {
		width, err = strconv.Atoi(raw)
		if err != nil || width < 1 {
			response.Error(w, r, logger, errors.Validationf("invalid width %q", raw))
			return
		}
	}

	if !p.InBounds(index) {
		response.Error(w, r, logger, errors.Validationf("index %d is outside [0, %d)", index, p.TilePlaces()))
		return
	}

	response.Success(w, http.StatusOK, TransformResponse{
		Index:     index,
		Angle:     p.IndexToRadians(index, width),
		Placement: p.IndexToTransform(index, offset, depth, width),
	})
}

// GetIndex resolves ?angle= in radians to the slot under it.
func (h *PlanetHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_planet_index")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	angle, err := strconv.ParseFloat(r.URL.Query().Get("angle"), 32)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid angle format", err))
		return
	}

	p := h.provider.CurrentPlanet()
	response.Success(w, http.StatusOK, IndexResponse{
		Angle: float32(angle),
		Index: p.RadiansToIndex(float32(angle)),
	})
}

// parseFloat reads an optional float query value; empty means zero.
func parseFloat(raw string) (float32, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	return float32(v), err
}
