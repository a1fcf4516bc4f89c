// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/go-slalom/pkg/config"
	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/event"
	"github.com/opd-ai/go-slalom/pkg/logging"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

// ErrNotStarted is returned by Advance before Start has been called.
var ErrNotStarted = errors.New("simulation not started")

// MaxSubSteps bounds the sub-steps a single Advance may take. A larger dt is
// rejected rather than integrated.
const MaxSubSteps = 100000

// simulatedEpoch anchors the simulated score clock.
var simulatedEpoch = time.Unix(0, 0).UTC()

// Option customises a Simulation.
type Option func(*Simulation)

// WithClock replaces time.Now for the wall score clock.
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) { s.wallClock = now }
}

// WithEventBus publishes run events on bus instead of a private one.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Simulation) { s.bus = bus }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithRunID fixes the id of the first run instead of generating one.
func WithRunID(id string) Option {
	return func(s *Simulation) { s.runID = id }
}

// Simulation drives one vessel down one course. Each Advance integrates the
// vessel, then evaluates gate crossings, post strikes, rock contacts and the
// finish line in that order. Event handlers run on the caller's goroutine
// after the simulation lock is released, so they may call Snapshot.
type Simulation struct {
	cfg       *config.Config
	course    *course.Course
	vessel    *physics.Vessel
	evaluator *Evaluator
	flow      physics.Vector2D
	penalties Penalties

	bus       *event.Bus
	logger    *logging.Logger
	metrics   *instruments
	wallClock func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	runID   string
	run     *RunState
	tick    uint64
	simTime float64
	err     error
	pending []event.Event
}

// NewSimulation validates cfg and builds the course, vessel and evaluator.
func NewSimulation(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := course.New(cfg.Course)
	if err != nil {
		return nil, logging.WrapError(err, "building course")
	}
	hull, err := cfg.VesselHull()
	if err != nil {
		return nil, logging.WrapError(err, "building hull")
	}
	drag, err := cfg.Drag()
	if err != nil {
		return nil, logging.WrapError(err, "building drag tensor")
	}
	vessel, err := physics.NewVessel(cfg.StartPose(), drag, hull)
	if err != nil {
		return nil, logging.WrapError(err, "building vessel")
	}
	metrics, err := newInstruments()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:       cfg,
		course:    c,
		vessel:    vessel,
		evaluator: NewEvaluator(c, cfg.HeadRadius()),
		flow:      cfg.FlowVector(),
		penalties: Penalties{
			Touch:      cfg.Penalties.Touch,
			OutOfOrder: cfg.Penalties.OutOfOrder,
			Missed:     cfg.Penalties.Missed,
			Obstacle:   cfg.Penalties.Obstacle,
		},
		metrics:   metrics,
		wallClock: time.Now,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = event.NewEventBus()
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s, nil
}

// Start begins a run, or restarts one: the vessel returns to the start pose
// at rest and all progress is cleared.
func (s *Simulation) Start() {
	s.mu.Lock()
	if s.run != nil || s.runID == "" {
		s.runID = logging.GenerateRunID()
	}
	s.ctx = logging.WithRunID(context.Background(), s.runID)
	s.tick = 0
	s.simTime = 0
	s.err = nil
	if err := s.vessel.Reset(s.cfg.StartPose()); err != nil {
		s.err = err
		s.logger.Error(s.ctx, "vessel reset failed", err, "tick", s.tick)
	}
	s.run = NewRunState(s.now(), s.penalties)

	s.logger.Info(s.ctx, "run started",
		"gates", s.course.GateCount(),
		"obstacles", len(s.course.Obstacles()),
		"clock", string(s.cfg.Scoring.Clock))
	s.emit(event.NewRunEvent(event.RunStarted, s, s.runID, 0, 0, 0))
	s.mu.Unlock()

	s.flush()
}

// Apply executes a control command and reports whether it asks to quit.
// Speeds are clamped to the configured limits; non-finite values and unknown
// kinds are ignored.
func (s *Simulation) Apply(cmd Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Kind {
	case CommandForward:
		if !isFinite(cmd.Value) {
			s.logger.Warn(s.ctx, "ignoring non-finite forward command", "value", cmd.Value)
			return false
		}
		s.vessel.SetForwardCommand(clamp(cmd.Value, -s.cfg.Vessel.MaxBackwardSpeed, s.cfg.Vessel.MaxForwardSpeed))
	case CommandAngular:
		if !isFinite(cmd.Value) {
			s.logger.Warn(s.ctx, "ignoring non-finite angular command", "value", cmd.Value)
			return false
		}
		limit := s.cfg.Vessel.MaxRotationSpeed
		s.vessel.SetAngularCommand(clamp(cmd.Value, -limit, limit))
	case CommandQuit:
		s.logger.Info(s.ctx, "quit requested", "tick", s.tick)
		return true
	default:
		s.logger.Debug(s.ctx, "ignoring command", "kind", cmd.Kind.String())
	}
	return false
}

// Advance moves the run forward by dt seconds. A dt above the configured
// maximum step is split into equal sub-steps. Advancing a finished run does
// nothing. A non-finite vessel state ends the run with an error that every
// later call repeats.
func (s *Simulation) Advance(dt float64) error {
	defer s.flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		return ErrNotStarted
	}
	if s.err != nil {
		return s.err
	}
	if !isFinite(dt) || dt <= 0 {
		return fmt.Errorf("%w: %g", physics.ErrInvalidTimeStep, dt)
	}
	if s.run.Finished() {
		return nil
	}

	n := math.Ceil(dt / s.cfg.Simulation.MaxStep)
	if n > MaxSubSteps {
		return fmt.Errorf("%w: %g needs %g sub-steps, limit %d", physics.ErrInvalidTimeStep, dt, n, MaxSubSteps)
	}
	steps := max(int(n), 1)
	step := dt / float64(steps)
	for i := 0; i < steps && !s.run.Finished(); i++ {
		if err := s.stepLocked(step); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) stepLocked(dt float64) error {
	if err := s.vessel.Step(s.flow, dt); err != nil {
		if errors.Is(err, physics.ErrNonFiniteState) {
			s.err = err
			s.logger.Error(s.ctx, "vessel state diverged", err, "tick", s.tick)
		}
		return err
	}
	s.tick++
	s.simTime += dt
	s.metrics.ticks.Add(s.ctx, 1)

	last, cur := s.vessel.LastPose(), s.vessel.Pose()

	for _, gate := range s.evaluator.CrossedGates(last, cur) {
		expected := s.run.NextGate()
		charged := s.run.OnGateCrossed(gate)
		s.metrics.crossing(s.ctx, gate, gate == expected)
		s.logger.Debug(s.ctx, "gate crossed", "gate", gate, "expected", expected, "tick", s.tick)
		s.emit(event.NewGateEvent(event.GateCrossed, s, gate, expected, s.tick))
		s.penalize(PenaltyOutOfOrder, charged)
	}

	if gate, hit := s.evaluator.HeadStrike(cur.Position); hit && !s.run.Touched(gate) {
		charged := s.run.OnHeadStrike(gate)
		s.logger.Debug(s.ctx, "gate post touched", "gate", gate, "tick", s.tick)
		s.emit(event.NewGateEvent(event.GateTouched, s, gate, s.run.NextGate(), s.tick))
		s.penalize(PenaltyTouch, charged)
	}

	hits := s.evaluator.ObstacleStrikes(s.vessel.HullPolygon())
	indices := make([]int, len(hits))
	for i, h := range hits {
		indices[i] = h.Index
	}
	fresh := s.run.OnObstacleContacts(indices)
	for _, idx := range fresh {
		hit := hitFor(hits, idx)
		offset := hit.Overlap.Centroid.Sub(cur.Position)
		s.metrics.obstacle(s.ctx, hit.Name)
		s.logger.Warn(s.ctx, "obstacle contact",
			"obstacle", hit.Name,
			"overlap_area", hit.Overlap.Area,
			"offset_x", offset.X,
			"offset_y", offset.Y,
			"tick", s.tick)
		s.emit(event.NewObstacleEvent(s, idx, hit.Name, hit.Overlap.Area, offset.X, offset.Y, s.tick))
		s.penalize(PenaltyObstacle, s.penalties.Obstacle)
	}

	before := s.run.Penalty()
	if s.run.CheckFinish(cur.Position.X, s.course.FinishLineX(), s.course.GateCount(), s.now()) {
		s.penalize(PenaltyMissed, s.run.Penalty()-before)
		result := s.run.Result(s.now())
		s.logger.Info(s.ctx, "run finished",
			"score", result.Score,
			"elapsed", result.Elapsed,
			"penalty", result.Penalty,
			"gates_done", result.GatesDone,
			"tick", s.tick)
		s.emit(event.NewRunEvent(event.RunFinished, s, s.runID, result.Score, result.Penalty, s.tick))
	}
	return nil
}

func (s *Simulation) penalize(kind PenaltyKind, seconds float64) {
	if seconds <= 0 {
		return
	}
	s.metrics.penalty(s.ctx, kind, seconds)
	s.logger.Info(s.ctx, "penalty", "kind", string(kind), "seconds", seconds, "total", s.run.Penalty())
	s.emit(event.NewPenaltyEvent(s, string(kind), seconds, s.run.Penalty(), s.tick))
}

func (s *Simulation) emit(e event.Event) {
	s.pending = append(s.pending, e)
}

// flush publishes queued events without holding the lock.
func (s *Simulation) flush() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, e := range pending {
		s.bus.Publish(e)
	}
}

// now returns the score clock reading.
func (s *Simulation) now() time.Time {
	if s.cfg.Scoring.Clock == config.ClockSimulated {
		return simulatedEpoch.Add(time.Duration(s.simTime * float64(time.Second)))
	}
	return s.wallClock()
}

// Snapshot copies the state a renderer needs.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Tick:        s.tick,
		SimTime:     s.simTime,
		Pose:        s.vessel.Pose(),
		Velocity:    s.vessel.Velocity(),
		Hull:        s.vessel.HullPolygon(),
		HeadRadius:  s.cfg.HeadRadius(),
		FinishLineX: s.course.FinishLineX(),
	}

	var run *RunState
	if s.run != nil {
		run = s.run
		now := s.now()
		snap.Score = run.Score(now)
		snap.Penalty = run.Penalty()
		snap.NextGate = run.NextGate()
		snap.Finished = run.Finished()
	}

	for _, g := range s.course.Gates() {
		view := GateView{
			Index:     g.Index,
			Center:    g.Center,
			LeftPost:  g.LeftPost,
			RightPost: g.RightPost,
			Radius:    s.course.PostRadius(),
			Polarity:  g.Polarity,
			Next:      g.Index == snap.NextGate,
		}
		if run != nil {
			view.Passed = run.Passed(g.Index)
			view.Touched = run.Touched(g.Index)
		}
		snap.Gates = append(snap.Gates, view)
	}
	for _, o := range s.course.Obstacles() {
		view := ObstacleView{Index: o.Index, Name: o.Name, Outline: o.Outline}
		if run != nil {
			view.Contact = run.InContact(o.Index)
		}
		snap.Obstacles = append(snap.Obstacles, view)
	}
	return snap
}

// Finished reports whether the current run has crossed the finish line.
func (s *Simulation) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil && s.run.Finished()
}

// Result returns the run outcome. Before Start it is the zero Result.
func (s *Simulation) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return Result{Tally: map[PenaltyKind]float64{}}
	}
	return s.run.Result(s.now())
}

// RunID identifies the current run in logs and events.
func (s *Simulation) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Course returns the course being run.
func (s *Simulation) Course() *course.Course { return s.course }

// Config returns the configuration the simulation was built from.
func (s *Simulation) Config() *config.Config { return s.cfg }

// EventBus returns the bus run events are published on.
func (s *Simulation) EventBus() *event.Bus { return s.bus }

func hitFor(hits []ObstacleHit, index int) ObstacleHit {
	for _, h := range hits {
		if h.Index == index {
			return h
		}
	}
	return ObstacleHit{Index: index}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
