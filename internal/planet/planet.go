package planet

import (
	"github.com/chewxy/math32"

	"tinyplanet-server/internal/ring"
	"tinyplanet-server/internal/surface"
)

const twoPi = 2 * math32.Pi

// Planet is an immutable generated surface together with its slot geometry.
// Reconfiguring a planet means building a new one.
type Planet struct {
	config      surface.Config
	tileSize    float32
	heightfield surface.Heightfield
	angularStep float32
	tilePlaces  int
}

// New generates the heightfield for cfg and derives the slot ring from tileSize.
func New(cfg surface.Config, tileSize float32) (*Planet, error) {
	if !(tileSize > 0) || math32.IsInf(tileSize, 0) {
		return nil, &surface.ConfigError{Field: "tile_size", Reason: "must be a positive number"}
	}

	heightfield, err := surface.Generate(cfg)
	if err != nil {
		return nil, err
	}

	angularStep := tileSize / cfg.Radius
	tilePlaces := int(math32.Floor(twoPi / angularStep))
	if tilePlaces < 1 {
		return nil, &surface.ConfigError{Field: "tile_size", Reason: "leaves no room for a single slot"}
	}

	return &Planet{
		config:      cfg,
		tileSize:    tileSize,
		heightfield: heightfield,
		angularStep: angularStep,
		tilePlaces:  tilePlaces,
	}, nil
}

func (p *Planet) Config() surface.Config { return p.config }

func (p *Planet) TileSize() float32 { return p.tileSize }

func (p *Planet) AngularStep() float32 { return p.angularStep }

func (p *Planet) TilePlaces() int { return p.tilePlaces }

// Space returns the slot ring of this planet.
func (p *Planet) Space() ring.Space { return ring.Space(p.tilePlaces) }

// Heightfield returns a copy of the generated samples.
func (p *Planet) Heightfield() surface.Heightfield {
	out := make(surface.Heightfield, len(p.heightfield))
	copy(out, p.heightfield)
	return out
}

// Summary describes the planet without its samples.
func (p *Planet) Summary() Summary {
	lo, hi := p.heightfield.Bounds()
	return Summary{
		Config:      p.config,
		TileSize:    p.tileSize,
		AngularStep: p.angularStep,
		TilePlaces:  p.tilePlaces,
		MinHeight:   lo,
		MaxHeight:   hi,
	}
}

// NumbersInRadius returns the slots within radius steps of center, wrapping round the ring.
func (p *Planet) NumbersInRadius(center, radius int) []int {
	return p.Space().Around(center, radius)
}

// NumberIsInRadius reports whether b is within radius steps of a.
func (p *Planet) NumberIsInRadius(a, radius, b int) bool {
	return p.Space().Within(a, radius, b)
}

// InBounds reports whether index names a slot of this planet.
func (p *Planet) InBounds(index int) bool {
	return index >= 0 && index < p.tilePlaces
}
