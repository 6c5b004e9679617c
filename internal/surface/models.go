package surface

import "fmt"

// Config holds the shape parameters of a planet surface.
type Config struct {
	Seed        uint32  `json:"seed" yaml:"seed"`
	Radius      float32 `json:"radius" yaml:"radius"`
	Resolution  int     `json:"resolution" yaml:"resolution"`
	Amplitude   float32 `json:"amplitude" yaml:"amplitude"`
	Frequency   float64 `json:"frequency" yaml:"frequency"`
	Octaves     uint32  `json:"octaves" yaml:"octaves"`
	Persistence float32 `json:"persistence" yaml:"persistence"`
	Lacunarity  float32 `json:"lacunarity" yaml:"lacunarity"`
	WarpFactor  float32 `json:"warp_factor" yaml:"warp_factor"`
}

// Sample is one point of the heightfield: the radial distance of the surface at Angle.
type Sample struct {
	Angle  float32 `json:"angle"`
	Height float32 `json:"height"`
}

// Heightfield is a closed ring of samples; the last one is adjacent to the first.
type Heightfield []Sample

// Bounds returns the lowest and highest sample heights.
func (h Heightfield) Bounds() (float32, float32) {
	if len(h) == 0 {
		return 0, 0
	}

	lo, hi := h[0].Height, h[0].Height
	for _, s := range h[1:] {
		if s.Height < lo {
			lo = s.Height
		}
		if s.Height > hi {
			hi = s.Height
		}
	}
	return lo, hi
}

// ConfigError reports an invalid generation parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid surface config: %s %s", e.Field, e.Reason)
}
