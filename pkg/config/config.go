// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

// EnvPrefix is prepended to every environment override, e.g.
// SLALOM_PENALTIES_TOUCH=3 or SLALOM_SCORING_CLOCK=simulated.
const EnvPrefix = "SLALOM"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// ScoreClock selects what "elapsed time" means for the score.
type ScoreClock string

const (
	// ClockWall measures elapsed real time between Start and finish.
	ClockWall ScoreClock = "wall"
	// ClockSimulated sums the dt values passed to Advance.
	ClockSimulated ScoreClock = "simulated"
)

// Config contains everything needed to run a slalom simulation.
type Config struct {
	Vessel     VesselConfig      `json:"vessel" mapstructure:"vessel"`
	Course     course.Definition `json:"course" mapstructure:"course"`
	Flow       FlowConfig        `json:"flow" mapstructure:"flow"`
	Penalties  PenaltyConfig     `json:"penalties" mapstructure:"penalties"`
	Simulation SimulationConfig  `json:"simulation" mapstructure:"simulation"`
	Scoring    ScoringConfig     `json:"scoring" mapstructure:"scoring"`
	Log        LogConfig         `json:"log" mapstructure:"log"`
}

// VesselConfig describes the boat. Hull points are in body coordinates with
// the bow toward +x and the origin at the paddler.
type VesselConfig struct {
	Hull             [][2]float64 `json:"hull" mapstructure:"hull"`
	DragAlong        float64      `json:"dragAlong" mapstructure:"dragAlong"`
	DragAcross       float64      `json:"dragAcross" mapstructure:"dragAcross"`
	StartX           float64      `json:"startX" mapstructure:"startX"`
	StartY           float64      `json:"startY" mapstructure:"startY"`
	StartHeading     float64      `json:"startHeading" mapstructure:"startHeading"`
	MaxForwardSpeed  float64      `json:"maxForwardSpeed" mapstructure:"maxForwardSpeed"`
	MaxBackwardSpeed float64      `json:"maxBackwardSpeed" mapstructure:"maxBackwardSpeed"`
	// MaxRotationSpeed is in radians per second.
	MaxRotationSpeed float64 `json:"maxRotationSpeed" mapstructure:"maxRotationSpeed"`
	HeadDiameter     float64 `json:"headDiameter" mapstructure:"headDiameter"`
}

// FlowConfig is the constant current in course units per second.
type FlowConfig struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// PenaltyConfig holds the seconds added per infraction.
type PenaltyConfig struct {
	Touch      float64 `json:"touch" mapstructure:"touch"`
	OutOfOrder float64 `json:"outOfOrder" mapstructure:"outOfOrder"`
	Missed     float64 `json:"missed" mapstructure:"missed"`
	// Obstacle is charged once per rock contact. Zero keeps rocks diagnostic only.
	Obstacle float64 `json:"obstacle" mapstructure:"obstacle"`
}

// SimulationConfig controls the tick loop.
type SimulationConfig struct {
	TickRate int `json:"tickRate" mapstructure:"tickRate"`
	// MaxStep caps a single Advance in seconds; larger dt values are split.
	MaxStep float64 `json:"maxStep" mapstructure:"maxStep"`
}

// ScoringConfig controls how the score clock runs.
type ScoringConfig struct {
	Clock ScoreClock `json:"clock" mapstructure:"clock"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	// File receives log output when set. The terminal UI logs nowhere else.
	File string `json:"file" mapstructure:"file"`
}

// DefaultHull is the kayak outline, 50 long and 12 wide, centred on the origin.
func DefaultHull() [][2]float64 {
	return [][2]float64{
		{-25, 0},
		{-5.06031363, 5.62191781},
		{-1.62243667, 6},
		{6.45958987, 5.55616438},
		{19.53558504, 2.59726027},
		{25, 0},
		{19.53558504, -2.59726027},
		{6.45958987, -5.55616438},
		{-1.62243667, -6},
		{-5.06031363, -5.62191781},
	}
}

// DefaultConfig returns the standard course and kayak.
func DefaultConfig() *Config {
	return &Config{
		Vessel: VesselConfig{
			Hull:             DefaultHull(),
			DragAlong:        0.2,
			DragAcross:       0.4,
			StartX:           0,
			StartY:           200,
			StartHeading:     0,
			MaxForwardSpeed:  25,
			MaxBackwardSpeed: 15,
			MaxRotationSpeed: 55 * math.Pi / 180,
			HeadDiameter:     10,
		},
		Course: course.DefaultDefinition(),
		Flow:   FlowConfig{X: 70, Y: 0},
		Penalties: PenaltyConfig{
			Touch:      2,
			OutOfOrder: 50,
			Missed:     50,
			Obstacle:   0,
		},
		Simulation: SimulationConfig{
			TickRate: 60,
			MaxStep:  0.1,
		},
		Scoring: ScoringConfig{Clock: ClockWall},
		Log:     LogConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("vessel.hull", d.Vessel.Hull)
	v.SetDefault("vessel.dragAlong", d.Vessel.DragAlong)
	v.SetDefault("vessel.dragAcross", d.Vessel.DragAcross)
	v.SetDefault("vessel.startX", d.Vessel.StartX)
	v.SetDefault("vessel.startY", d.Vessel.StartY)
	v.SetDefault("vessel.startHeading", d.Vessel.StartHeading)
	v.SetDefault("vessel.maxForwardSpeed", d.Vessel.MaxForwardSpeed)
	v.SetDefault("vessel.maxBackwardSpeed", d.Vessel.MaxBackwardSpeed)
	v.SetDefault("vessel.maxRotationSpeed", d.Vessel.MaxRotationSpeed)
	v.SetDefault("vessel.headDiameter", d.Vessel.HeadDiameter)

	v.SetDefault("course.gates", d.Course.Gates)
	v.SetDefault("course.obstacles", d.Course.Obstacles)
	v.SetDefault("course.finishLineX", d.Course.FinishLineX)
	v.SetDefault("course.postRadius", d.Course.PostRadius)

	v.SetDefault("flow.x", d.Flow.X)
	v.SetDefault("flow.y", d.Flow.Y)

	v.SetDefault("penalties.touch", d.Penalties.Touch)
	v.SetDefault("penalties.outOfOrder", d.Penalties.OutOfOrder)
	v.SetDefault("penalties.missed", d.Penalties.Missed)
	v.SetDefault("penalties.obstacle", d.Penalties.Obstacle)

	v.SetDefault("simulation.tickRate", d.Simulation.TickRate)
	v.SetDefault("simulation.maxStep", d.Simulation.MaxStep)

	v.SetDefault("scoring.clock", string(d.Scoring.Clock))

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Load builds a Config from the defaults, the optional JSON file at path and
// SLALOM_* environment variables, in increasing order of precedence. An empty
// path skips the file. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path as indented JSON that Load accepts.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every section, building the course and hull to catch bad
// geometry before a run starts.
func (c *Config) Validate() error {
	if _, err := c.VesselHull(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Drag(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !c.StartPose().IsFinite() {
		return fmt.Errorf("%w: start pose must be finite", ErrInvalidConfig)
	}

	speeds := map[string]float64{
		"vessel.maxForwardSpeed":  c.Vessel.MaxForwardSpeed,
		"vessel.maxBackwardSpeed": c.Vessel.MaxBackwardSpeed,
		"vessel.maxRotationSpeed": c.Vessel.MaxRotationSpeed,
		"penalties.touch":         c.Penalties.Touch,
		"penalties.outOfOrder":    c.Penalties.OutOfOrder,
		"penalties.missed":        c.Penalties.Missed,
		"penalties.obstacle":      c.Penalties.Obstacle,
	}
	for key, value := range speeds {
		if !isFinite(value) || value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidConfig, key, value)
		}
	}

	if !isFinite(c.Vessel.HeadDiameter) || c.Vessel.HeadDiameter <= 0 {
		return fmt.Errorf("%w: vessel.headDiameter must be positive, got %g", ErrInvalidConfig, c.Vessel.HeadDiameter)
	}
	if !isFinite(c.Flow.X) || !isFinite(c.Flow.Y) {
		return fmt.Errorf("%w: flow must be finite", ErrInvalidConfig)
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("%w: simulation.tickRate must be positive, got %d", ErrInvalidConfig, c.Simulation.TickRate)
	}
	if !isFinite(c.Simulation.MaxStep) || c.Simulation.MaxStep <= 0 {
		return fmt.Errorf("%w: simulation.maxStep must be positive, got %g", ErrInvalidConfig, c.Simulation.MaxStep)
	}
	switch c.Scoring.Clock {
	case ClockWall, ClockSimulated:
	default:
		return fmt.Errorf("%w: scoring.clock must be %q or %q, got %q", ErrInvalidConfig, ClockWall, ClockSimulated, c.Scoring.Clock)
	}

	if _, err := course.New(c.Course); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// VesselHull returns the validated body-frame hull.
func (c *Config) VesselHull() (physics.Polygon, error) {
	return physics.NewPolygon(physics.PolygonFromPoints(c.Vessel.Hull))
}

// Drag returns the body-frame drag tensor.
func (c *Config) Drag() (physics.DragTensor, error) {
	return physics.NewDragTensor(c.Vessel.DragAlong, c.Vessel.DragAcross)
}

// StartPose is the vessel pose at run start.
func (c *Config) StartPose() physics.Pose {
	return physics.Pose{
		Position: physics.Vector2D{X: c.Vessel.StartX, Y: c.Vessel.StartY},
		Heading:  c.Vessel.StartHeading,
	}
}

// FlowVector is the current as a course-frame vector.
func (c *Config) FlowVector() physics.Vector2D {
	return physics.Vector2D{X: c.Flow.X, Y: c.Flow.Y}
}

// HeadRadius is half the head diameter.
func (c *Config) HeadRadius() float64 {
	return c.Vessel.HeadDiameter / 2
}

// TickInterval is the wall-clock spacing of ticks at TickRate.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.TickRate)
}

// TickDelta is the simulated seconds per tick at TickRate.
func (c *Config) TickDelta() float64 {
	return 1 / float64(c.Simulation.TickRate)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
