package planet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyplanet-server/internal/surface"
)

func flatConfig() surface.Config {
	return surface.Config{
		Seed:        11,
		Radius:      300,
		Resolution:  120,
		Amplitude:   0,
		Frequency:   1.5,
		Octaves:     1,
		Persistence: 0.5,
		Lacunarity:  2,
		WarpFactor:  0.8,
	}
}

func noisyConfig() surface.Config {
	cfg := flatConfig()
	cfg.Amplitude = 12
	cfg.Octaves = 3
	cfg.Resolution = 100
	return cfg
}

func newPlanet(t *testing.T, cfg surface.Config) *Planet {
	t.Helper()
	p, err := New(cfg, 20)
	require.NoError(t, err)
	return p
}

// angleDelta returns the unsigned difference between two angles, modulo 2π.
func angleDelta(a, b float32) float64 {
	d := math.Mod(math.Abs(float64(a)-float64(b)), 2*math.Pi)
	return math.Min(d, 2*math.Pi-d)
}

func TestNewDerivesTilePlaces(t *testing.T) {
	p := newPlanet(t, flatConfig())

	assert.InDelta(t, 20.0/300.0, p.AngularStep(), 1e-6)
	assert.Equal(t, 94, p.TilePlaces())
	assert.Equal(t, 94, int(p.Space()))
	assert.Len(t, p.Heightfield(), 120)
}

func TestNewRejectsBadTileSize(t *testing.T) {
	for _, size := range []float32{0, -1, 5000} {
		_, err := New(flatConfig(), size)
		var cfgErr *surface.ConfigError
		require.ErrorAs(t, err, &cfgErr, "tile size %v", size)
		assert.Equal(t, "tile_size", cfgErr.Field)
	}
}

func TestNewPropagatesSurfaceError(t *testing.T) {
	cfg := flatConfig()
	cfg.Resolution = 0

	p, err := New(cfg, 20)
	assert.Nil(t, p)

	var cfgErr *surface.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "resolution", cfgErr.Field)
}

func TestRadiansToRadiiOnFlatPlanet(t *testing.T) {
	p := newPlanet(t, flatConfig())
	sampleStep := 2 * math.Pi / 120

	for i := 0; i < 360; i++ {
		a := float32(i) * 2 * math.Pi / 360

		pos, tangent := p.RadiansToRadii(a, 0)
		assert.InDelta(t, 300, pos.Length(), 1e-3, "angle %v", a)
		assert.InDelta(t, 300*math.Cos(float64(a)), pos.X, 1e-2)
		assert.InDelta(t, 300*math.Sin(float64(a)), pos.Y, 1e-2)

		assert.LessOrEqual(t, angleDelta(tangent, a+math.Pi/2), sampleStep/2+1e-4, "angle %v", a)
	}
}

func TestRadiansToRadiiOffsetRaisesPoint(t *testing.T) {
	p := newPlanet(t, flatConfig())

	pos, _ := p.RadiansToRadii(1, 15)
	assert.InDelta(t, 315, pos.Length(), 1e-3)
}

func TestRadiansToRadiiIsContinuousAcrossSamples(t *testing.T) {
	p := newPlanet(t, noisyConfig())
	const eps = 1e-4

	for _, s := range p.Heightfield()[1:] {
		beforePos, beforeTangent := p.RadiansToRadii(s.Angle-eps, 0)
		afterPos, afterTangent := p.RadiansToRadii(s.Angle+eps, 0)

		assert.Less(t, beforePos.Distance(afterPos), float32(0.1), "sample at %v", s.Angle)
		assert.Less(t, angleDelta(beforeTangent, afterTangent), 0.01, "sample at %v", s.Angle)
	}
}

func TestRadiansToRadiiNormalizesAngle(t *testing.T) {
	p := newPlanet(t, noisyConfig())

	base, baseTangent := p.RadiansToRadii(1.25, 0)
	for _, a := range []float32{1.25 + 2*math.Pi, 1.25 - 2*math.Pi, 1.25 + 6*math.Pi} {
		pos, tangent := p.RadiansToRadii(a, 0)
		assert.InDelta(t, base.X, pos.X, 1e-2)
		assert.InDelta(t, base.Y, pos.Y, 1e-2)
		assert.Less(t, angleDelta(baseTangent, tangent), 1e-3)
	}

	pos, _ := p.RadiansToRadii(float32(math.NaN()), 0)
	zero, _ := p.RadiansToRadii(0, 0)
	assert.Equal(t, zero, pos)
}

func TestRadiansToTransformFacesOutward(t *testing.T) {
	p := newPlanet(t, flatConfig())

	placement := p.RadiansToTransform(math.Pi/2, 0, 3)
	assert.Equal(t, float32(3), placement.Depth)
	assert.InDelta(t, 0, placement.Position.X, 1e-3)
	assert.InDelta(t, 300, placement.Position.Y, 1e-3)
	// At the top of the planet the object stands upright.
	assert.Less(t, angleDelta(placement.Orientation, 0), 2*math.Pi/120)
}

func TestIndexToRadians(t *testing.T) {
	p := newPlanet(t, flatConfig())
	step := p.AngularStep()

	assert.Equal(t, float32(0), p.IndexToRadians(0, 1))
	assert.InDelta(t, 5*step, p.IndexToRadians(5, 3), 1e-6)
	assert.InDelta(t, 5*step+step/2, p.IndexToRadians(5, 2), 1e-6)
	assert.InDelta(t, 93*step+step/2, p.IndexToRadians(93, 4), 1e-6)
}

func TestIndexToRadiansPanicsOutOfBounds(t *testing.T) {
	p := newPlanet(t, flatConfig())

	for _, index := range []int{-1, 94, 1000} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r, "index %d", index)
				oob, ok := r.(*OutOfBoundsError)
				require.True(t, ok)
				assert.Equal(t, index, oob.Index)
				assert.Equal(t, 94, oob.TilePlaces)
			}()
			p.IndexToRadians(index, 1)
		}()
	}
}

func TestIndexToTransformMatchesRadians(t *testing.T) {
	p := newPlanet(t, noisyConfig())

	want := p.RadiansToTransform(p.IndexToRadians(17, 2), 4, 1)
	assert.Equal(t, want, p.IndexToTransform(17, 4, 1, 2))

	pos, tangent := p.IndexToRadii(17, 4, 2)
	wantPos, wantTangent := p.RadiansToRadii(p.IndexToRadians(17, 2), 4)
	assert.Equal(t, wantPos, pos)
	assert.Equal(t, wantTangent, tangent)
}

func TestRadiansToIndex(t *testing.T) {
	p := newPlanet(t, flatConfig())
	step := p.AngularStep()

	for index := 0; index < p.TilePlaces(); index++ {
		assert.Equal(t, index, p.RadiansToIndex(float32(index)*step+step/2))
	}

	assert.Equal(t, 93, p.RadiansToIndex(-step/2))
	assert.Equal(t, 93, p.RadiansToIndex(2*math.Pi-0.001))
	assert.Equal(t, 0, p.RadiansToIndex(2*math.Pi))
	assert.Equal(t, 0, p.RadiansToIndex(float32(math.Inf(1))))
}

func TestNumbersInRadiusDelegatesToRing(t *testing.T) {
	p := newPlanet(t, flatConfig())

	assert.Equal(t, []int{92, 93, 0, 1, 2}, p.NumbersInRadius(0, 2))
	assert.True(t, p.NumberIsInRadius(93, 1, 0))
	assert.False(t, p.NumberIsInRadius(10, 2, 13))
}

func TestNormalizeAngle(t *testing.T) {
	assert.Equal(t, float32(0), NormalizeAngle(0))
	assert.InDelta(t, math.Pi, NormalizeAngle(-math.Pi), 1e-5)
	assert.InDelta(t, 1, NormalizeAngle(1+4*math.Pi), 1e-5)
	assert.Equal(t, float32(0), NormalizeAngle(float32(math.Inf(-1))))
}

func TestSummary(t *testing.T) {
	p := newPlanet(t, noisyConfig())

	s := p.Summary()
	assert.Equal(t, p.TilePlaces(), s.TilePlaces)
	assert.LessOrEqual(t, s.MinHeight, s.MaxHeight)
	assert.Equal(t, noisyConfig(), s.Config)
}
