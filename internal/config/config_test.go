package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/kart-engine/internal/kinematics"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 180, cfg.CountdownSteps())
	assert.Equal(t, kinematics.DefaultArcade(), cfg.Kinematics)
}

func TestLoadOverridesDefaults(t *testing.T) {
	doc := `
sim:
  tick_hz: 30
kinematics:
  max_speed: 1.5
tracks:
  default_id: bunny_hills
`
	cfg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Sim.TickHz)
	assert.Equal(t, 3.0, cfg.Sim.CountdownSeconds)
	assert.Equal(t, 90, cfg.CountdownSteps())
	assert.Equal(t, 1.5, cfg.Kinematics.MaxSpeedVal)
	assert.Equal(t, kinematics.DefaultArcade().Accel, cfg.Kinematics.Accel)
	assert.Equal(t, "bunny_hills", cfg.Tracks.DefaultID)
}

func TestLoadRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":   "sim:\n  tick_rate: 30\n",
		"zero tick":     "sim:\n  tick_hz: 0\n",
		"bad level":     "log:\n  level: loud\n",
		"bad format":    "log:\n  format: xml\n",
		"bad damping":   "kinematics:\n  collision_damping: 1.5\n",
		"empty default": "tracks:\n  default_id: \"\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	cfg := Default()
	cfg.Log.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "kart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  addr: \":9000\"\n  allowed_origins: [\"http://localhost:5173\"]\n"), 0o644))
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Feed.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Feed.AllowedOrigins)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
