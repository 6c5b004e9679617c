package game

import (
	"fmt"

	"tinyplanet-server/internal/grid"
	"tinyplanet-server/internal/planet"
	"tinyplanet-server/internal/poi"
	"tinyplanet-server/internal/power"
	"tinyplanet-server/internal/resources"
	"tinyplanet-server/internal/surface"
	"tinyplanet-server/internal/tile"
)

// Settings fixes everything a game needs besides the tile catalog.
type Settings struct {
	Surface           surface.Config
	TileSize          float32
	MaxCableLength    float32
	StartingResources map[resources.Resource]int
	POIRules          []poi.Rule
	POIFrequency      float64
	HandDamage        int
	// LandingIndex is where the free landed rocket is put on every new planet. Negative skips it.
	LandingIndex int
}

// Command is a player action. Commands are queued and applied at the start of the next tick.
type Command interface {
	Name() string
}

type Place struct {
	Kind  tile.Kind `json:"kind"`
	Index int       `json:"index"`
}

type Remove struct {
	ID tile.ID `json:"id"`
}

type Upgrade struct {
	ID tile.ID `json:"id"`
}

type Connect struct {
	A tile.ID `json:"a"`
	B tile.ID `json:"b"`
}

type Disconnect struct {
	A tile.ID `json:"a"`
	B tile.ID `json:"b"`
}

// Harvest hits a point of interest by hand. An empty Kind hits whatever is at the slot first.
type Harvest struct {
	Index int      `json:"index"`
	Kind  poi.Kind `json:"kind,omitempty"`
}

// Reconfigure replaces the planet. Tiles and points of interest are rebuilt; resources are kept.
type Reconfigure struct {
	Config surface.Config `json:"config"`
}

func (Place) Name() string       { return "place" }
func (Remove) Name() string      { return "remove" }
func (Upgrade) Name() string     { return "upgrade" }
func (Connect) Name() string     { return "connect" }
func (Disconnect) Name() string  { return "disconnect" }
func (Harvest) Name() string     { return "harvest" }
func (Reconfigure) Name() string { return "reconfigure" }

// CommandError is a command that cannot be carried out as asked, such as
// upgrading a tile past its last level.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// TileView is a placed tile as the renderer and UI see it.
type TileView struct {
	ID          tile.ID          `json:"id"`
	Kind        tile.Kind        `json:"kind"`
	Name        string           `json:"name"`
	Index       int              `json:"index"`
	Level       int              `json:"level"`
	MaxLevel    int              `json:"max_level"`
	Energy      float32          `json:"energy"`
	Capacity    float32          `json:"capacity"`
	Connections []tile.ID        `json:"connections"`
	Spread      []int            `json:"spread"`
	Placement   planet.Placement `json:"placement"`
}

// HarvestResult reports a hand harvest.
type HarvestResult struct {
	Hit      poi.Hit            `json:"hit"`
	Resource resources.Resource `json:"resource"`
	Dropped  int                `json:"dropped"`
}

// Result is what a successfully applied command produced.
type Result struct {
	Command string          `json:"command"`
	Tile    *TileView       `json:"tile,omitempty"`
	Removed *TileView       `json:"removed,omitempty"`
	Harvest *HarvestResult  `json:"harvest,omitempty"`
	Planet  *planet.Summary `json:"planet,omitempty"`
}

// Outcome pairs a queued command with how it went.
type Outcome struct {
	Seq    uint64
	Result Result
	Err    error
}

// MiningEvent is one unit worked out of a point of interest by a tile.
type MiningEvent struct {
	Tile     tile.ID            `json:"tile"`
	Index    int                `json:"index"`
	Kind     poi.Kind           `json:"kind"`
	Resource resources.Resource `json:"resource"`
	Depleted bool               `json:"depleted"`
}

// TickReport describes one simulation step.
type TickReport struct {
	Tick       uint64        `json:"tick"`
	Outcomes   []Outcome     `json:"-"`
	Generators int           `json:"generators"`
	Power      power.Report  `json:"power"`
	Mined      []MiningEvent `json:"mined,omitempty"`
}

// PreviewResult is what placing kind at index would do, without doing it.
type PreviewResult struct {
	Kind      tile.Kind             `json:"kind"`
	Index     int                   `json:"index"`
	Valid     bool                  `json:"valid"`
	Rejection *grid.Rejection       `json:"rejection,omitempty"`
	Spread    []int                 `json:"spread,omitempty"`
	Placement *planet.Placement     `json:"placement,omitempty"`
	Cost      []resources.Cost      `json:"cost"`
	Interacts []poi.PointOfInterest `json:"interacts,omitempty"`
}

// Snapshot is an immutable copy of the game state.
type Snapshot struct {
	Tick             uint64                     `json:"tick"`
	Planet           planet.Summary             `json:"planet"`
	Tiles            []TileView                 `json:"tiles"`
	Resources        map[resources.Resource]int `json:"resources"`
	PointsOfInterest []poi.PointOfInterest      `json:"points_of_interest"`
}
