package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeStep is returned by Step for dt <= 0 or non-finite dt.
	ErrInvalidTimeStep = errors.New("time step must be positive and finite")
	// ErrNonFiniteState signals that integration produced NaN or Inf. It is fatal
	// for the run; the vessel keeps its previous pose.
	ErrNonFiniteState = errors.New("vessel state is not finite")
)

// Pose is a position in course coordinates plus a heading in radians.
// The heading is never wrapped; only its sine and cosine are used.
type Pose struct {
	Position Vector2D
	Heading  float64
}

// IsFinite reports whether every component of the pose is finite.
func (p Pose) IsFinite() bool {
	return p.Position.IsFinite() && isFinite(p.Heading)
}

// Velocity is the course-frame translational velocity plus angular rate.
type Velocity struct {
	X       float64
	Y       float64
	Angular float64
}

// Linear returns the translational part.
func (v Velocity) Linear() Vector2D {
	return Vector2D{X: v.X, Y: v.Y}
}

// Vessel tracks the pose and commanded motion of the boat.
type Vessel struct {
	pose     Pose
	lastPose Pose
	velocity Velocity
	drag     DragTensor
	hull     Polygon

	forward float64
	angular float64
}

// NewVessel creates a vessel at pose. hull is given in body coordinates with
// the bow toward +x and is copied.
func NewVessel(pose Pose, drag DragTensor, hull Polygon) (*Vessel, error) {
	if !pose.IsFinite() {
		return nil, fmt.Errorf("%w: initial pose", ErrNonFiniteState)
	}
	if _, err := NewDragTensor(drag.Along, drag.Across); err != nil {
		return nil, err
	}
	shape, err := NewPolygon(hull)
	if err != nil {
		return nil, fmt.Errorf("vessel hull: %w", err)
	}
	return &Vessel{
		pose:     pose,
		lastPose: pose,
		drag:     drag,
		hull:     shape,
	}, nil
}

// Reset places the vessel at pose, at rest, with both commands zeroed.
func (v *Vessel) Reset(pose Pose) error {
	if !pose.IsFinite() {
		return fmt.Errorf("%w: reset pose", ErrNonFiniteState)
	}
	v.pose = pose
	v.lastPose = pose
	v.velocity = Velocity{}
	v.forward = 0
	v.angular = 0
	return nil
}

// SetForwardCommand overwrites the commanded forward speed. Callers keep it
// within [-MaxBackwardSpeed, MaxForwardSpeed].
func (v *Vessel) SetForwardCommand(speed float64) {
	v.forward = speed
}

// SetAngularCommand overwrites the commanded angular rate. Callers keep it
// within [-MaxRotationSpeed, MaxRotationSpeed].
func (v *Vessel) SetAngularCommand(rate float64) {
	v.angular = rate
}

// ForwardCommand returns the current commanded forward speed.
func (v *Vessel) ForwardCommand() float64 { return v.forward }

// AngularCommand returns the current commanded angular rate.
func (v *Vessel) AngularCommand() float64 { return v.angular }

// Pose returns the current pose.
func (v *Vessel) Pose() Pose { return v.pose }

// LastPose returns the pose before the most recent Step.
func (v *Vessel) LastPose() Pose { return v.lastPose }

// Velocity returns the velocity used by the most recent Step.
func (v *Vessel) Velocity() Velocity { return v.velocity }

// Drag returns the body-frame drag tensor.
func (v *Vessel) Drag() DragTensor { return v.drag }

// Hull returns a copy of the body-frame hull.
func (v *Vessel) Hull() Polygon {
	out := make(Polygon, len(v.hull))
	copy(out, v.hull)
	return out
}

// HullPolygon returns the hull placed at the current pose.
func (v *Vessel) HullPolygon() Polygon {
	return v.hull.Transform(v.pose)
}

// VelocityFor recomputes the velocity from flow and the current commands.
// Only the diagonal of the rotated drag tensor scales the flow.
func (v *Vessel) VelocityFor(flow Vector2D) Velocity {
	drag := v.drag.Rotated(v.pose.Heading).Diagonal()
	push := flow.Mul(drag)
	paddle := FromHeading(v.pose.Heading).Scale(v.forward)
	return Velocity{
		X:       push.X + paddle.X,
		Y:       push.Y + paddle.Y,
		Angular: v.angular,
	}
}

// Step recomputes the velocity and integrates the pose with explicit Euler.
func (v *Vessel) Step(flow Vector2D, dt float64) error {
	if !isFinite(dt) || dt <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidTimeStep, dt)
	}

	velocity := v.VelocityFor(flow)
	next := Pose{
		Position: v.pose.Position.Add(velocity.Linear().Scale(dt)),
		Heading:  v.pose.Heading + velocity.Angular*dt,
	}
	if !next.IsFinite() {
		return fmt.Errorf("%w: pose %+v", ErrNonFiniteState, next)
	}

	v.velocity = velocity
	v.lastPose = v.pose
	v.pose = next
	return nil
}
