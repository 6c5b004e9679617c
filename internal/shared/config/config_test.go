package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load()
	require.NoError(t, err)
	require.NoError(t, cfg.validate())

	assert.Equal(t, uint32(11), cfg.Planet.Surface.Seed)
	assert.Equal(t, float32(300), cfg.Planet.Surface.Radius)
	assert.Equal(t, 360, cfg.Planet.Surface.Resolution)
	assert.Equal(t, float32(20), cfg.Planet.TileSize)
	assert.Equal(t, 20, cfg.Simulation.TickHz)
	assert.Equal(t, float32(200), cfg.Simulation.MaxCableLength)
	assert.Equal(t, 2*time.Second, cfg.Simulation.CommandTimeout)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PLANET_SEED", "42")
	t.Setenv("PLANET_OCTAVES", "5")
	t.Setenv("SIM_TICK_HZ", "30")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, uint32(42), cfg.Planet.Surface.Seed)
	assert.Equal(t, uint32(5), cfg.Planet.Surface.Octaves)
	assert.Equal(t, 30, cfg.Simulation.TickHz)
	assert.True(t, cfg.Logging.JSONFormat)
}

func TestLoadPlanetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\nradius: 450\nwarp_factor: 0\n"), 0o600))
	t.Setenv("PLANET_CONFIG_PATH", path)

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, uint32(7), cfg.Planet.Surface.Seed)
	assert.Equal(t, float32(450), cfg.Planet.Surface.Radius)
	assert.Equal(t, float32(0), cfg.Planet.Surface.WarpFactor)
	assert.Equal(t, 360, cfg.Planet.Surface.Resolution)
}

func TestLoadMissingPlanetFile(t *testing.T) {
	t.Setenv("PLANET_CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero resolution", map[string]string{"PLANET_RESOLUTION": "0"}},
		{"negative amplitude", map[string]string{"PLANET_AMPLITUDE": "-1"}},
		{"zero tick", map[string]string{"SIM_TICK_HZ": "0"}},
		{"probability", map[string]string{"POI_TREE_PROBABILITY": "1.5"}},
		{"tile size", map[string]string{"PLANET_TILE_SIZE": "-20"}},
		{"publish every", map[string]string{"STREAM_PUBLISH_EVERY_TICKS": "0"}},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := load()
			require.NoError(t, err)
			assert.Error(t, cfg.validate())
		})
	}
}
