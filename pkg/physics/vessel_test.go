package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHull() Polygon {
	return Polygon{{X: -25, Y: 0}, {X: 0, Y: -6}, {X: 25, Y: 0}, {X: 0, Y: 6}}
}

func newTestVessel(t *testing.T, pose Pose) *Vessel {
	t.Helper()
	drag, err := NewDragTensor(0.2, 0.4)
	require.NoError(t, err)
	v, err := NewVessel(pose, drag, testHull())
	require.NoError(t, err)
	return v
}

func TestNewVessel_Validation(t *testing.T) {
	drag, err := NewDragTensor(0.2, 0.4)
	require.NoError(t, err)

	_, err = NewVessel(Pose{}, DragTensor{Along: 0, Across: 1}, testHull())
	assert.ErrorIs(t, err, ErrInvalidDragTensor)

	_, err = NewVessel(Pose{}, drag, Polygon{{X: 0, Y: 0}, {X: 1, Y: 0}})
	assert.ErrorIs(t, err, ErrInvalidPolygon)

	_, err = NewVessel(Pose{Heading: math.Inf(1)}, drag, testHull())
	assert.ErrorIs(t, err, ErrNonFiniteState)
}

func TestVessel_StepIdleIsStationary(t *testing.T) {
	start := Pose{Position: Vector2D{X: 10, Y: 200}, Heading: 0.4}
	v := newTestVessel(t, start)

	for _, dt := range []float64{1.0 / 60, 0.5, 3, 1e-6} {
		require.NoError(t, v.Step(Vector2D{}, dt))
		assert.Equal(t, start, v.Pose())
	}
}

func TestVessel_StepForwardCommand(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		speed   float64
	}{
		{name: "east", heading: 0, speed: 25},
		{name: "north_east", heading: math.Pi / 4, speed: 25},
		{name: "reverse", heading: 1.1, speed: -15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := Pose{Position: Vector2D{X: 0, Y: 200}, Heading: tt.heading}
			v := newTestVessel(t, start)
			v.SetForwardCommand(tt.speed)

			const n = 120
			const dt = 1.0 / 60
			for i := 0; i < n; i++ {
				require.NoError(t, v.Step(Vector2D{}, dt))
			}

			pose := v.Pose()
			assert.InDelta(t, tt.speed*math.Cos(tt.heading)*n*dt, pose.Position.X-start.Position.X, 1e-9)
			assert.InDelta(t, -tt.speed*math.Sin(tt.heading)*n*dt, pose.Position.Y-start.Position.Y, 1e-9)
			assert.Equal(t, tt.heading, pose.Heading)
		})
	}
}

func TestVessel_StepFlowUsesRotatedDiagonal(t *testing.T) {
	flow := Vector2D{X: 70, Y: 0}

	t.Run("aligned_with_flow", func(t *testing.T) {
		v := newTestVessel(t, Pose{Position: Vector2D{X: 0, Y: 200}})
		require.NoError(t, v.Step(flow, 1))
		assert.InDelta(t, 14, v.Velocity().X, 1e-12)
		assert.InDelta(t, 0, v.Velocity().Y, 1e-12)
		assert.InDelta(t, 14, v.Pose().Position.X, 1e-12)
	})

	t.Run("broadside_to_flow", func(t *testing.T) {
		v := newTestVessel(t, Pose{Position: Vector2D{X: 0, Y: 200}, Heading: math.Pi / 2})
		require.NoError(t, v.Step(flow, 1))
		assert.InDelta(t, 28, v.Velocity().X, 1e-9)
	})

	t.Run("cross_flow_ignores_off_diagonal", func(t *testing.T) {
		h := 0.6
		v := newTestVessel(t, Pose{Heading: h})
		vel := v.VelocityFor(Vector2D{X: 0, Y: 10})
		c, s := math.Cos(h), math.Sin(h)
		assert.InDelta(t, 0, vel.X, 1e-12)
		assert.InDelta(t, 10*(0.2*s*s+0.4*c*c), vel.Y, 1e-12)
	})
}

func TestVessel_StepAngularCommand(t *testing.T) {
	v := newTestVessel(t, Pose{})
	rate := 55 * math.Pi / 180
	v.SetAngularCommand(rate)

	for i := 0; i < 60; i++ {
		require.NoError(t, v.Step(Vector2D{}, 1.0/60))
	}
	assert.InDelta(t, rate, v.Pose().Heading, 1e-12)
	assert.Equal(t, Vector2D{}, v.Pose().Position)

	// Commands overwrite, never accumulate.
	v.SetAngularCommand(0)
	v.SetAngularCommand(0)
	require.NoError(t, v.Step(Vector2D{}, 1))
	assert.InDelta(t, rate, v.Pose().Heading, 1e-12)
}

func TestVessel_LastPose(t *testing.T) {
	v := newTestVessel(t, Pose{Position: Vector2D{X: 140, Y: 150}})
	v.SetForwardCommand(20)

	require.NoError(t, v.Step(Vector2D{}, 1))
	assert.Equal(t, Vector2D{X: 140, Y: 150}, v.LastPose().Position)
	assert.Equal(t, Vector2D{X: 160, Y: 150}, v.Pose().Position)
}

func TestVessel_StepRejectsBadInput(t *testing.T) {
	start := Pose{Position: Vector2D{X: 1, Y: 2}}
	v := newTestVessel(t, start)

	for _, dt := range []float64{0, -1.0 / 60, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, v.Step(Vector2D{}, dt), ErrInvalidTimeStep)
	}

	v.SetForwardCommand(math.Inf(1))
	assert.ErrorIs(t, v.Step(Vector2D{}, 1.0/60), ErrNonFiniteState)
	assert.Equal(t, start, v.Pose(), "pose is left untouched")
}

func TestVessel_HullPolygon(t *testing.T) {
	v := newTestVessel(t, Pose{Position: Vector2D{X: 100, Y: 100}, Heading: math.Pi})
	hull := v.HullPolygon()

	require.Len(t, hull, 4)
	assert.InDelta(t, 75, hull[2].X, 1e-9, "bow points west")
	assert.InDelta(t, 100, hull[2].Y, 1e-9)
	assert.Equal(t, testHull(), v.Hull(), "body hull is never mutated")
}

func TestVessel_Reset(t *testing.T) {
	v := newTestVessel(t, Pose{})
	v.SetForwardCommand(10)
	v.SetAngularCommand(1)
	require.NoError(t, v.Step(Vector2D{X: 70}, 0.5))

	home := Pose{Position: Vector2D{X: 0, Y: 200}}
	require.NoError(t, v.Reset(home))
	assert.Equal(t, home, v.Pose())
	assert.Equal(t, home, v.LastPose())
	assert.Equal(t, Velocity{}, v.Velocity())
	assert.Zero(t, v.ForwardCommand())
	assert.Zero(t, v.AngularCommand())

	assert.ErrorIs(t, v.Reset(Pose{Heading: math.NaN()}), ErrNonFiniteState)
	assert.Equal(t, home, v.Pose())
}
