// Package pilot steers a vessel through the course without a human at the
// keys. Headless runs and soak tests use it.
//
// The current always pushes the vessel downstream, so downstream gates are
// taken by trimming the heading to close the lateral gap before the gate
// line arrives. Upstream gates are overshot by a set-back distance, then
// approached bow first against the current.
package pilot

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-slalom/pkg/config"
	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/engine"
	"github.com/opd-ai/go-slalom/pkg/logging"
)

const (
	// DefaultSetback is how far past an upstream gate the pilot turns round.
	DefaultSetback = 60.0
	// DefaultGain scales heading error into a turn rate.
	DefaultGain = 4.0

	// maxSlip limits the sideways share of paddling while going upstream so
	// some of it still beats the current.
	maxSlip = 0.5
	// maxTrim limits the sideways share of paddling downstream.
	maxTrim = 0.95
	// minClosing stops the time-to-gate estimate blowing up near zero speed.
	minClosing = 1.0
	// missMargin is how far past a gate line the pilot gives up on it.
	missMargin = 20.0
)

type phase int

const (
	phaseApproach phase = iota
	phaseTurnBack
)

// Pilot decides paddling commands from snapshots. It keeps a little state
// between calls and must not be shared between runs.
type Pilot struct {
	vessel  config.VesselConfig
	gain    float64
	setback float64
	logger  *logging.Logger

	target int
	phase  phase
}

// New creates a Pilot bound by the vessel's speed limits. A nil logger
// discards everything.
func New(v config.VesselConfig, logger *logging.Logger) *Pilot {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pilot{
		vessel:  v,
		gain:    DefaultGain,
		setback: DefaultSetback,
		logger:  logger,
	}
}

// Target returns the gate the pilot is steering for. It equals the gate
// count once only the finish line is left.
func (p *Pilot) Target() int {
	return p.target
}

// Decide returns the forward and angular commands for the next tick.
func (p *Pilot) Decide(snap engine.Snapshot) []engine.Command {
	if snap.Finished {
		return []engine.Command{engine.Forward(0), engine.Angular(0)}
	}
	p.retarget(snap)

	pos := snap.Pose.Position
	var heading, forward float64

	if p.target >= len(snap.Gates) {
		heading = p.trim(snap, snap.FinishLineX+missMargin, pos.Y)
		forward = p.vessel.MaxForwardSpeed
	} else {
		g := snap.Gates[p.target]
		switch {
		case g.Polarity == course.Downstream:
			heading = p.trim(snap, g.Center.X, g.Center.Y)
			forward = p.vessel.MaxForwardSpeed
		case p.phase == phaseApproach:
			// Pass wide of the posts on the way down.
			wide := g.Center.Y + (g.RightPost.Y - g.LeftPost.Y)
			heading = p.trim(snap, g.Center.X+p.setback, wide)
			forward = p.vessel.MaxForwardSpeed
		default:
			heading = p.against(snap, g.Center.X, g.Center.Y)
			forward = p.vessel.MaxForwardSpeed
		}
	}

	errHeading := math.Remainder(heading-snap.Pose.Heading, 2*math.Pi)
	if math.Abs(errHeading) > math.Pi/2 {
		// Turning round; paddling now would only carry us the wrong way.
		forward = 0
	}
	angular := clamp(p.gain*errHeading, -p.vessel.MaxRotationSpeed, p.vessel.MaxRotationSpeed)

	return []engine.Command{engine.Forward(forward), engine.Angular(angular)}
}

// retarget follows the run's expected gate and gives up on gates that have
// been left behind.
func (p *Pilot) retarget(snap engine.Snapshot) {
	if snap.NextGate > p.target {
		p.setTarget(snap.NextGate, "gate passed")
	}
	for p.target < len(snap.Gates) {
		g := snap.Gates[p.target]
		x := snap.Pose.Position.X

		if g.Polarity == course.Downstream {
			if x > g.Center.X+missMargin {
				p.setTarget(p.target+1, "gate missed")
				continue
			}
			return
		}

		switch p.phase {
		case phaseApproach:
			if x >= g.Center.X+p.setback {
				p.phase = phaseTurnBack
				p.logger.Debug(context.Background(), "Turning back for upstream gate", "gate", p.target, "x", x)
			}
			return
		default:
			if x < g.Center.X-missMargin {
				p.setTarget(p.target+1, "gate missed")
				continue
			}
			return
		}
	}
}

func (p *Pilot) setTarget(i int, reason string) {
	p.logger.Debug(context.Background(), "Pilot retargeted", "from", p.target, "to", i, "reason", reason)
	p.target = i
	p.phase = phaseApproach
}

// trim picks a downstream heading that closes the lateral gap to y by the
// time the vessel reaches x.
func (p *Pilot) trim(snap engine.Snapshot, x, y float64) float64 {
	pos := snap.Pose.Position
	closing := math.Max(snap.Velocity.X, minClosing)
	t := math.Max(x-pos.X, minClosing) / closing
	s := p.slip(y-pos.Y, t, maxTrim)
	// The forward vector is (cos h, -sin h), so a sideways share s needs
	// sin h = -s.
	return math.Asin(-s)
}

// against picks an upstream heading that closes the lateral gap to y before
// the vessel climbs back to x.
func (p *Pilot) against(snap engine.Snapshot, x, y float64) float64 {
	pos := snap.Pose.Position
	closing := math.Max(-snap.Velocity.X, minClosing)
	t := math.Max(pos.X-x, minClosing) / closing
	s := p.slip(y-pos.Y, t, maxSlip)
	return math.Pi + math.Asin(s)
}

// slip is the sideways share of paddling needed to cover dy in t seconds.
func (p *Pilot) slip(dy, t, limit float64) float64 {
	if p.vessel.MaxForwardSpeed <= 0 {
		return 0
	}
	return clamp(dy/t/p.vessel.MaxForwardSpeed, -limit, limit)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ErrTimeout is returned by Fly when the run has not finished in time.
var ErrTimeout = errors.New("run did not finish")

// Fly drives sim with p in steps of dt until the run finishes or limit
// simulated seconds pass. onTick, if set, sees every snapshot.
func Fly(sim *engine.Simulation, p *Pilot, dt, limit float64, onTick func(engine.Snapshot)) (engine.Result, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return engine.Result{}, fmt.Errorf("invalid step %g", dt)
	}
	for elapsed := 0.0; elapsed < limit; elapsed += dt {
		snap := sim.Snapshot()
		if onTick != nil {
			onTick(snap)
		}
		if snap.Finished {
			return sim.Result(), nil
		}
		for _, cmd := range p.Decide(snap) {
			sim.Apply(cmd)
		}
		if err := sim.Advance(dt); err != nil {
			return sim.Result(), err
		}
	}
	if sim.Finished() {
		return sim.Result(), nil
	}
	return sim.Result(), fmt.Errorf("%w after %gs", ErrTimeout, limit)
}
