// pkg/physics/collision_test.go
package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircleIntersectsCircle(t *testing.T) {
	tests := []struct {
		name     string
		circle1  Circle
		circle2  Circle
		expected bool
	}{
		{
			name:     "circles_touching",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			circle2:  Circle{Center: Vector2D{X: 10, Y: 0}, Radius: 5},
			expected: true, // distance equals the radius sum
		},
		{
			name:     "circles_overlapping",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			circle2:  Circle{Center: Vector2D{X: 5, Y: 0}, Radius: 5},
			expected: true,
		},
		{
			name:     "circles_not_touching",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 5},
			circle2:  Circle{Center: Vector2D{X: 15, Y: 0}, Radius: 5},
			expected: false,
		},
		{
			name:     "circles_same_position",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 3},
			circle2:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 2},
			expected: true,
		},
		{
			name:     "coincident_points",
			circle1:  Circle{Center: Vector2D{X: 4, Y: 4}, Radius: 0},
			circle2:  Circle{Center: Vector2D{X: 4, Y: 4}, Radius: 0},
			expected: true,
		},
		{
			name:     "nan_center",
			circle1:  Circle{Center: Vector2D{X: math.NaN(), Y: 0}, Radius: 3},
			circle2:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 3},
			expected: false,
		},
		{
			name:     "negative_radius",
			circle1:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: -1},
			circle2:  Circle{Center: Vector2D{X: 0, Y: 0}, Radius: 3},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.circle1.Intersects(tt.circle2))
			assert.Equal(t, tt.expected, tt.circle2.Intersects(tt.circle1))
		})
	}
}

func TestPointInRange(t *testing.T) {
	tests := []struct {
		name          string
		value, lo, hi float64
		expected      bool
	}{
		{name: "inside", value: 5, lo: 0, hi: 10, expected: true},
		{name: "on_lower_bound", value: 0, lo: 0, hi: 10, expected: false},
		{name: "on_upper_bound", value: 10, lo: 0, hi: 10, expected: false},
		{name: "outside", value: 11, lo: 0, hi: 10, expected: false},
		{name: "empty_range", value: 5, lo: 5, hi: 5, expected: false},
		{name: "inverted_range", value: 5, lo: 10, hi: 0, expected: false},
		{name: "nan", value: math.NaN(), lo: 0, hi: 10, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PointInRange(tt.value, tt.lo, tt.hi))
		})
	}
}

func TestCircleUnion_IntersectsCircle(t *testing.T) {
	posts := CircleUnion{
		{Center: Vector2D{X: 150, Y: 132.5}, Radius: 5},
		{Center: Vector2D{X: 150, Y: 167.5}, Radius: 5},
	}

	idx, ok := posts.IntersectsCircle(Circle{Center: Vector2D{X: 150, Y: 170}, Radius: 5})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = posts.IntersectsCircle(Circle{Center: Vector2D{X: 150, Y: 150}, Radius: 5})
	assert.False(t, ok, "gate center is clear of both posts")

	bounds := posts.Bounds()
	assert.InDelta(t, 150, bounds.Center.X, 1e-12)
	assert.InDelta(t, 150, bounds.Center.Y, 1e-12)
	assert.InDelta(t, 10, bounds.Width, 1e-12)
	assert.InDelta(t, 45, bounds.Height, 1e-12)
}

func TestPolygonIntersectsCircles(t *testing.T) {
	square := Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	tests := []struct {
		name     string
		shape    CircleUnion
		expected bool
		index    int
	}{
		{
			name:     "center_inside",
			shape:    CircleUnion{{Center: Vector2D{X: 5, Y: 5}, Radius: 1}},
			expected: true,
		},
		{
			name:     "edge_within_radius",
			shape:    CircleUnion{{Center: Vector2D{X: 13, Y: 5}, Radius: 3}},
			expected: true,
		},
		{
			name:     "near_corner_but_clear",
			shape:    CircleUnion{{Center: Vector2D{X: 13, Y: 13}, Radius: 4}},
			expected: false,
		},
		{
			name: "second_disk_hits",
			shape: CircleUnion{
				{Center: Vector2D{X: 50, Y: 50}, Radius: 1},
				{Center: Vector2D{X: -2, Y: 5}, Radius: 2.5},
			},
			expected: true,
			index:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := PolygonIntersectsCircles(square, tt.shape)
			assert.Equal(t, tt.expected, ok)
			if tt.expected {
				assert.Equal(t, tt.index, idx)
			}
		})
	}

	_, ok := PolygonIntersectsCircles(Polygon{{X: 0, Y: 0}, {X: 1, Y: 1}}, CircleUnion{{Radius: 10}})
	assert.False(t, ok, "degenerate polygon never intersects")
}

func TestRect(t *testing.T) {
	rect := Rect{Center: Vector2D{X: 10, Y: 10}, Width: 20, Height: 20}

	assert.True(t, rect.Contains(Vector2D{X: 0, Y: 10}), "min edge is inside")
	assert.False(t, rect.Contains(Vector2D{X: 20, Y: 10}), "max edge is outside")

	other := Rect{Center: Vector2D{X: 30, Y: 10}, Width: 20, Height: 20}
	assert.True(t, rect.Intersects(other), "shared edge counts")
	assert.False(t, rect.Intersects(Rect{Center: Vector2D{X: 50, Y: 10}, Width: 5, Height: 5}))

	u := rect.Union(other)
	assert.Equal(t, Vector2D{X: 20, Y: 10}, u.Center)
	assert.Equal(t, 40.0, u.Width)

	e := rect.Expand(5)
	assert.Equal(t, 30.0, e.Width)
	assert.Equal(t, 30.0, e.Height)
}
