package planet

import (
	"fmt"

	"github.com/chewxy/math32"

	"tinyplanet-server/internal/surface"
)

// Vec2 is a point or direction in planet-local world space; the planet centre is the origin.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Length() float32 { return math32.Hypot(v.X, v.Y) }

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float32 { return v.Sub(o).Length() }

// Placement is where and how something sits on the surface. Objects are
// anchored bottom-centre, so Position is the point touching the ground.
type Placement struct {
	Position    Vec2    `json:"position"`
	Depth       float32 `json:"depth"`
	Orientation float32 `json:"orientation"`
}

// Summary is the public description of a planet, without the heightfield.
type Summary struct {
	Config      surface.Config `json:"config"`
	TileSize    float32        `json:"tile_size"`
	AngularStep float32        `json:"angular_step"`
	TilePlaces  int            `json:"tile_places"`
	MinHeight   float32        `json:"min_height"`
	MaxHeight   float32        `json:"max_height"`
}

// OutOfBoundsError is the panic value raised when an index-space query is
// given a slot outside [0, TilePlaces). Callers validate indices first.
type OutOfBoundsError struct {
	Index      int
	TilePlaces int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("slot index %d out of bounds (tile places %d)", e.Index, e.TilePlaces)
}
