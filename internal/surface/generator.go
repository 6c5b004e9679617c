package surface

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// warpOffset decorrelates the two warp lookups taken from the same generator.
const warpOffset = 5.2

// Generate computes the heightfield for cfg. It is a pure function of cfg:
// the same configuration always yields the same samples.
func Generate(cfg Config) (Heightfield, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	primary := opensimplex.New(int64(cfg.Seed))
	warp := opensimplex.New(int64(cfg.Seed) + 1)

	step := 2 * math.Pi / float64(cfg.Resolution)
	samples := make(Heightfield, cfg.Resolution)

	for i := range samples {
		angle := float64(i) * step

		height := float64(cfg.Radius)
		frequency := cfg.Frequency
		amplitude := float64(cfg.Amplitude)

		for octave := uint32(0); octave < cfg.Octaves; octave++ {
			height += warpedNoise(primary, warp, angle, frequency, float64(cfg.WarpFactor)) * amplitude
			frequency *= float64(cfg.Lacunarity)
			amplitude *= float64(cfg.Persistence)
		}

		samples[i] = Sample{
			Angle:  float32(angle),
			Height: float32(height),
		}
	}

	return samples, nil
}

// Validate checks the parameters Generate depends on.
func (c Config) Validate() error {
	if c.Resolution <= 0 {
		return &ConfigError{Field: "resolution", Reason: "must be greater than zero"}
	}
	if c.Amplitude < 0 {
		return &ConfigError{Field: "amplitude", Reason: "must not be negative"}
	}
	if c.Radius <= 0 {
		return &ConfigError{Field: "radius", Reason: "must be greater than zero"}
	}

	for name, v := range map[string]float64{
		"radius":      float64(c.Radius),
		"amplitude":   float64(c.Amplitude),
		"frequency":   c.Frequency,
		"persistence": float64(c.Persistence),
		"lacunarity":  float64(c.Lacunarity),
		"warp_factor": float64(c.WarpFactor),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: name, Reason: "must be finite"}
		}
	}

	return nil
}

// warpedNoise samples the primary noise on the circle of the given frequency,
// after displacing the lookup point by a second noise field. Sampling on
// (cos, sin) keeps the ring seamless at angle 0.
func warpedNoise(primary, warp opensimplex.Noise, angle, frequency, warpFactor float64) float64 {
	x := math.Cos(angle) * frequency
	y := math.Sin(angle) * frequency

	wx := warp.Eval2(x, y)
	wy := warp.Eval2(x+warpOffset, y+warpOffset)

	n := primary.Eval2(x+wx*warpFactor, y+wy*warpFactor)
	return math.Max(-1, math.Min(1, n))
}
