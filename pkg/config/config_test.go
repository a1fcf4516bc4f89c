package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 25.0, cfg.Vessel.MaxForwardSpeed)
	assert.Equal(t, 15.0, cfg.Vessel.MaxBackwardSpeed)
	assert.InDelta(t, 55*math.Pi/180, cfg.Vessel.MaxRotationSpeed, 1e-12)
	assert.Equal(t, 5.0, cfg.HeadRadius())
	assert.Equal(t, physics.Vector2D{X: 70}, cfg.FlowVector())
	assert.Equal(t, physics.Pose{Position: physics.Vector2D{X: 0, Y: 200}}, cfg.StartPose())
	assert.Equal(t, PenaltyConfig{Touch: 2, OutOfOrder: 50, Missed: 50}, cfg.Penalties)
	assert.Equal(t, ClockWall, cfg.Scoring.Clock)
	assert.Len(t, cfg.Course.Gates, 5)

	hull, err := cfg.VesselHull()
	require.NoError(t, err)
	b := hull.Bounds()
	assert.InDelta(t, 50, b.Width, 1e-9)
	assert.InDelta(t, 12, b.Height, 1e-9)

	assert.Equal(t, time.Second/60, cfg.TickInterval())
	assert.InDelta(t, 1.0/60, cfg.TickDelta(), 1e-15)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slalom.json")
	data := `{
		"penalties": { "touch": 5 },
		"scoring": { "clock": "simulated" },
		"course": {
			"gates": [ { "x": 100, "y": 50, "width": 20, "polarity": "up" } ],
			"finishLineX": 400
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Penalties.Touch)
	assert.Equal(t, 50.0, cfg.Penalties.OutOfOrder)
	assert.Equal(t, ClockSimulated, cfg.Scoring.Clock)
	require.Len(t, cfg.Course.Gates, 1)
	assert.Equal(t, course.GateDef{X: 100, Y: 50, Width: 20, Polarity: "up"}, cfg.Course.Gates[0])
	assert.Equal(t, 400.0, cfg.Course.FinishLineX)
	assert.Equal(t, 5.0, cfg.Course.PostRadius)
	assert.Len(t, cfg.Course.Obstacles, 2)
	assert.Equal(t, DefaultHull(), cfg.Vessel.Hull)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SLALOM_PENALTIES_OBSTACLE", "7.5")
	t.Setenv("SLALOM_SIMULATION_TICKRATE", "120")
	t.Setenv("SLALOM_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7.5, cfg.Penalties.Obstacle)
	assert.Equal(t, 120, cfg.Simulation.TickRate)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvironmentBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slalom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"flow": {"x": 10}}`), 0o644))
	t.Setenv("SLALOM_FLOW_X", "90")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90.0, cfg.Flow.X)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"penalties": {`), 0o644))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"scoring": {"clock": "sundial"}}`), 0o644))

	tests := []struct {
		name    string
		path    string
		invalid bool
	}{
		{name: "missing_file", path: filepath.Join(dir, "nope.json")},
		{name: "malformed_json", path: bad},
		{name: "invalid_value", path: invalid, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero_drag", mutate: func(c *Config) { c.Vessel.DragAlong = 0 }},
		{name: "degenerate_hull", mutate: func(c *Config) { c.Vessel.Hull = [][2]float64{{0, 0}, {1, 1}} }},
		{name: "negative_speed", mutate: func(c *Config) { c.Vessel.MaxForwardSpeed = -1 }},
		{name: "nan_rotation", mutate: func(c *Config) { c.Vessel.MaxRotationSpeed = math.NaN() }},
		{name: "zero_head", mutate: func(c *Config) { c.Vessel.HeadDiameter = 0 }},
		{name: "infinite_start", mutate: func(c *Config) { c.Vessel.StartY = math.Inf(-1) }},
		{name: "infinite_flow", mutate: func(c *Config) { c.Flow.Y = math.Inf(1) }},
		{name: "negative_penalty", mutate: func(c *Config) { c.Penalties.Missed = -50 }},
		{name: "zero_tick_rate", mutate: func(c *Config) { c.Simulation.TickRate = 0 }},
		{name: "zero_max_step", mutate: func(c *Config) { c.Simulation.MaxStep = 0 }},
		{name: "unknown_clock", mutate: func(c *Config) { c.Scoring.Clock = "lunar" }},
		{name: "bad_course", mutate: func(c *Config) { c.Course.Gates[0].Width = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Penalties.Obstacle = 1.5
	cfg.Log.File = "run.log"

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_InvalidPath(t *testing.T) {
	err := Save(DefaultConfig(), filepath.Join(t.TempDir(), "missing", "dir", "cfg.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write config file")
}
