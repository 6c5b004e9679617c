package poi

import (
	"fmt"

	"tinyplanet-server/internal/resources"
)

// Kind is the type of an environmental feature.
type Kind string

const (
	KindStone  Kind = "stone"
	KindCopper Kind = "copper"
	KindTree   Kind = "tree"
)

// Kinds lists every kind in generation order.
func Kinds() []Kind {
	return []Kind{KindStone, KindCopper, KindTree}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindStone, KindCopper, KindTree:
		return true
	}
	return false
}

// Resource is the material the feature yields when worked or felled.
func (k Kind) Resource() resources.Resource {
	switch k {
	case KindStone:
		return resources.Stone
	case KindCopper:
		return resources.Copper
	default:
		return resources.Wood
	}
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed := Kind(text)
	if !parsed.Valid() {
		return fmt.Errorf("unknown point of interest kind %q", string(text))
	}
	*k = parsed
	return nil
}

// PointOfInterest is a deposit or plant sitting at a slot. Several may share
// a slot, and tiles may be built on top of them.
type PointOfInterest struct {
	Index  int  `json:"index"`
	Kind   Kind `json:"kind"`
	Health int  `json:"health"`
}

// Rule controls how one kind is scattered around the planet.
type Rule struct {
	Kind        Kind    `json:"kind" yaml:"kind"`
	Probability float64 `json:"probability" yaml:"probability"`
	Health      int     `json:"health" yaml:"health"`
	// DropMin and DropMax bound the bonus yield handed out when the feature is destroyed.
	DropMin int `json:"drop_min" yaml:"drop_min"`
	DropMax int `json:"drop_max" yaml:"drop_max"`
}

// Hit is the outcome of damaging a feature.
type Hit struct {
	Kind     Kind `json:"kind"`
	Taken    int  `json:"taken"`
	Depleted bool `json:"depleted"`
	Health   int  `json:"health"`
}
