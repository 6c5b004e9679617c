package tile

import (
	"fmt"
	"slices"

	"tinyplanet-server/internal/poi"
	"tinyplanet-server/internal/resources"
)

// ID identifies a placed tile for as long as it exists.
type ID uint64

// Kind is the closed set of tile variants.
type Kind string

const (
	KindEmpty        Kind = "empty"
	KindPowerPole    Kind = "power_pole"
	KindSolarPanel   Kind = "solar_panel"
	KindWindTurbine  Kind = "wind_turbine"
	KindBattery      Kind = "battery"
	KindDrill        Kind = "drill"
	KindLoudspeaker  Kind = "loudspeaker"
	KindLandedRocket Kind = "landed_rocket"
	KindDebug        Kind = "debug"
)

var kinds = []Kind{
	KindEmpty,
	KindPowerPole,
	KindSolarPanel,
	KindWindTurbine,
	KindBattery,
	KindDrill,
	KindLoudspeaker,
	KindLandedRocket,
	KindDebug,
}

// Kinds lists every variant.
func Kinds() []Kind {
	return slices.Clone(kinds)
}

func (k Kind) Valid() bool {
	return slices.Contains(kinds, k)
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed := Kind(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown tile kind %q", string(text))
	}
	*k = parsed
	return nil
}

// Role is how a tile takes part in the power grid.
type Role string

const (
	RoleNone      Role = "none"
	RoleGenerator Role = "generator"
	RoleReceiver  Role = "receiver"
)

func (r *Role) UnmarshalText(text []byte) error {
	switch parsed := Role(text); parsed {
	case RoleNone, RoleGenerator, RoleReceiver:
		*r = parsed
		return nil
	case "":
		*r = RoleNone
		return nil
	}
	return fmt.Errorf("unknown tile role %q", string(text))
}

// KeepDistance forbids placing a tile within Radius slots of a tile of Kind.
type KeepDistance struct {
	Radius int  `json:"radius" yaml:"radius"`
	Kind   Kind `json:"kind" yaml:"kind"`
}

// Spec is the fixed behaviour of one tile kind.
type Spec struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Name  string `json:"name" yaml:"name"`
	Width int    `json:"width" yaml:"width"`
	Role  Role   `json:"role" yaml:"role"`
	// Depth is the draw layer handed to the renderer with each placement.
	Depth float32 `json:"depth" yaml:"depth"`

	Cost []resources.Cost `json:"cost" yaml:"cost"`
	// Upgrades[l] is the price of going from level l to l+1.
	Upgrades [][]resources.Cost `json:"upgrades" yaml:"upgrades"`

	// Output and Capacity are indexed by level. Levels past the end use the last entry.
	Output   []float32 `json:"output,omitempty" yaml:"output"`
	Capacity []float32 `json:"capacity,omitempty" yaml:"capacity"`

	KeepDistance []KeepDistance `json:"keep_distance,omitempty" yaml:"keep_distance"`
	Interacts    []poi.Kind     `json:"interacts,omitempty" yaml:"interacts"`

	// WorkCost energy is spent every WorkEvery ticks to work one unit from a
	// point of interest within WorkRange slots.
	WorkCost  float32 `json:"work_cost,omitempty" yaml:"work_cost"`
	WorkRange int     `json:"work_range,omitempty" yaml:"work_range"`
	WorkEvery int     `json:"work_every,omitempty" yaml:"work_every"`
}

func (s Spec) IsGenerator() bool { return s.Role == RoleGenerator }

func (s Spec) IsReceiver() bool { return s.Role == RoleReceiver }

// Occupies reports whether the kind takes up room on the grid.
func (s Spec) Occupies() bool { return s.Kind != KindEmpty }

// Works reports whether the tile does something on its own every few ticks.
func (s Spec) Works() bool { return len(s.Interacts) > 0 && s.WorkEvery > 0 }

// MaxLevel is the highest level the kind can be upgraded to.
func (s Spec) MaxLevel() int { return len(s.Upgrades) }

// UpgradeCost returns the price of upgrading from level, or false when level is already the highest.
func (s Spec) UpgradeCost(level int) ([]resources.Cost, bool) {
	if level < 0 || level >= len(s.Upgrades) {
		return nil, false
	}
	return s.Upgrades[level], true
}

// OutputAt is the energy a generator produces per tick at level.
func (s Spec) OutputAt(level int) float32 { return atLevel(s.Output, level) }

// CapacityAt is the energy a receiver can hold at level.
func (s Spec) CapacityAt(level int) float32 { return atLevel(s.Capacity, level) }

func atLevel(values []float32, level int) float32 {
	if len(values) == 0 {
		return 0
	}
	if level < 0 {
		level = 0
	}
	if level >= len(values) {
		return values[len(values)-1]
	}
	return values[level]
}
