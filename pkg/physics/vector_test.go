// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector2D_Arithmetic(t *testing.T) {
	a := Vector2D{X: 3, Y: 4}
	b := Vector2D{X: -1, Y: 2}

	assert.Equal(t, Vector2D{X: 2, Y: 6}, a.Add(b))
	assert.Equal(t, Vector2D{X: 4, Y: 2}, a.Sub(b))
	assert.Equal(t, Vector2D{X: 6, Y: 8}, a.Scale(2))
	assert.Equal(t, Vector2D{X: -3, Y: 8}, a.Mul(b))
	assert.Equal(t, 5.0, a.Dot(b))
	assert.Equal(t, 10.0, a.Cross(b))
	assert.Equal(t, 5.0, a.Length())
	assert.Equal(t, 25.0, a.LengthSquared())
	assert.Equal(t, Vector2D{X: 1, Y: 3}, a.Midpoint(b))
}

func TestVector2D_IsFinite(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		expected bool
	}{
		{name: "finite", v: Vector2D{X: 1, Y: -2}, expected: true},
		{name: "nan_x", v: Vector2D{X: math.NaN(), Y: 0}, expected: false},
		{name: "inf_y", v: Vector2D{X: 0, Y: math.Inf(-1)}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.v.IsFinite())
		})
	}
}

func TestFromHeading(t *testing.T) {
	tests := []struct {
		name     string
		heading  float64
		expected Vector2D
	}{
		{name: "east", heading: 0, expected: Vector2D{X: 1, Y: 0}},
		{name: "up_screen", heading: math.Pi / 2, expected: Vector2D{X: 0, Y: -1}},
		{name: "west", heading: math.Pi, expected: Vector2D{X: -1, Y: 0}},
		{name: "down_screen", heading: -math.Pi / 2, expected: Vector2D{X: 0, Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromHeading(tt.heading)
			assert.InDelta(t, tt.expected.X, got.X, 1e-12)
			assert.InDelta(t, tt.expected.Y, got.Y, 1e-12)
		})
	}
}

func TestVector2D_ToCourse(t *testing.T) {
	for _, heading := range []float64{0, 0.3, 1.2, -2.5, 7.9} {
		bow := Vector2D{X: 1, Y: 0}.ToCourse(heading)
		expected := FromHeading(heading)
		assert.InDelta(t, expected.X, bow.X, 1e-12)
		assert.InDelta(t, expected.Y, bow.Y, 1e-12)

		// Rotation preserves length.
		v := Vector2D{X: 3, Y: -4}
		assert.InDelta(t, 5.0, v.ToCourse(heading).Length(), 1e-12)
	}
}
