package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) Polygon {
	return Polygon{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func TestNewPolygon(t *testing.T) {
	tests := []struct {
		name    string
		points  []Vector2D
		wantErr bool
		wantLen int
	}{
		{name: "square", points: square(0, 0, 10), wantLen: 4},
		{name: "closed_ring_is_opened", points: append(square(0, 0, 10), Vector2D{X: 0, Y: 0}), wantLen: 4},
		{name: "too_few_vertices", points: []Vector2D{{X: 0, Y: 0}, {X: 1, Y: 0}}, wantErr: true},
		{name: "collinear", points: []Vector2D{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}, wantErr: true},
		{
			name:    "self_intersecting",
			points:  []Vector2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 20, Y: 10}},
			wantErr: true,
		},
		{name: "non_finite", points: []Vector2D{{X: 0, Y: 0}, {X: math.NaN(), Y: 0}, {X: 0, Y: 10}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolygon(tt.points)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolygon)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p, tt.wantLen)
		})
	}
}

func TestPolygon_AreaAndCentroid(t *testing.T) {
	p := square(2, 4, 10)
	assert.InDelta(t, 100, p.Area(), 1e-12)

	c := p.Centroid()
	assert.InDelta(t, 7, c.X, 1e-12)
	assert.InDelta(t, 9, c.Y, 1e-12)

	tri := Polygon{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 0, Y: 3}}
	assert.InDelta(t, 9, tri.Area(), 1e-12)
	assert.InDelta(t, 2, tri.Centroid().X, 1e-12)
	assert.InDelta(t, 1, tri.Centroid().Y, 1e-12)
}

func TestPolygon_Contains(t *testing.T) {
	p := square(0, 0, 10)
	assert.True(t, p.Contains(Vector2D{X: 5, Y: 5}))
	assert.False(t, p.Contains(Vector2D{X: 15, Y: 5}))
	assert.False(t, p.Contains(Vector2D{X: -1, Y: -1}))
}

func TestPolygon_Transform(t *testing.T) {
	body := Polygon{{X: 10, Y: 0}, {X: -10, Y: 2}, {X: -10, Y: -2}}

	t.Run("identity_heading_translates", func(t *testing.T) {
		world := body.Transform(Pose{Position: Vector2D{X: 100, Y: 50}})
		assert.Equal(t, Vector2D{X: 110, Y: 50}, world[0])
		assert.Equal(t, Vector2D{X: 90, Y: 52}, world[1])
	})

	t.Run("bow_follows_heading", func(t *testing.T) {
		pose := Pose{Position: Vector2D{X: 0, Y: 0}, Heading: math.Pi / 2}
		world := body.Transform(pose)
		assert.InDelta(t, 0, world[0].X, 1e-12)
		assert.InDelta(t, -10, world[0].Y, 1e-12)
	})

	t.Run("receiver_untouched", func(t *testing.T) {
		before := append(Polygon(nil), body...)
		_ = body.Transform(Pose{Position: Vector2D{X: 5, Y: 5}, Heading: 1})
		assert.Equal(t, before, body)
	})

	t.Run("area_preserved", func(t *testing.T) {
		world := body.Transform(Pose{Position: Vector2D{X: 3, Y: 7}, Heading: 2.2})
		assert.InDelta(t, body.Area(), world.Area(), 1e-9)
	})
}

func TestPolygonIntersectsPolygon(t *testing.T) {
	t.Run("partial_overlap_is_exact", func(t *testing.T) {
		overlap, ok := PolygonIntersectsPolygon(square(0, 0, 10), square(5, 5, 10))
		require.True(t, ok)
		assert.InDelta(t, 25, overlap.Area, 1e-9)
		assert.InDelta(t, 7.5, overlap.Centroid.X, 1e-9)
		assert.InDelta(t, 7.5, overlap.Centroid.Y, 1e-9)
		assert.False(t, overlap.Region.IsEmpty())
	})

	t.Run("containment", func(t *testing.T) {
		overlap, ok := PolygonIntersectsPolygon(square(0, 0, 10), square(2, 2, 2))
		require.True(t, ok)
		assert.InDelta(t, 4, overlap.Area, 1e-9)
	})

	t.Run("disjoint", func(t *testing.T) {
		_, ok := PolygonIntersectsPolygon(square(0, 0, 10), square(20, 20, 5))
		assert.False(t, ok)
	})

	t.Run("shared_edge_is_zero_area", func(t *testing.T) {
		_, ok := PolygonIntersectsPolygon(square(0, 0, 10), square(10, 0, 10))
		assert.False(t, ok)
	})

	t.Run("shared_corner_is_zero_area", func(t *testing.T) {
		_, ok := PolygonIntersectsPolygon(square(0, 0, 10), square(10, 10, 10))
		assert.False(t, ok)
	})

	t.Run("degenerate_input", func(t *testing.T) {
		line := Polygon{{X: 0, Y: 5}, {X: 5, Y: 5}, {X: 10, Y: 5}}
		_, ok := PolygonIntersectsPolygon(square(0, 0, 10), line)
		assert.False(t, ok)
	})

	t.Run("self_intersecting_input", func(t *testing.T) {
		bowTie := PolygonFromPoints([][2]float64{{0, 0}, {10, 0}, {0, 10}, {20, 10}})
		require.NotZero(t, bowTie.Area(), "must reach the ring constructors, not the area check")
		_, err := bowTie.geometry()
		require.Error(t, err)

		_, ok := PolygonIntersectsPolygon(square(0, 0, 20), bowTie)
		assert.False(t, ok)
		assert.ErrorIs(t, bowTie.Validate(), ErrInvalidPolygon)
	})

	t.Run("rotated_hull_against_rock", func(t *testing.T) {
		hull := Polygon{{X: -25, Y: -6}, {X: 25, Y: -6}, {X: 25, Y: 6}, {X: -25, Y: 6}}
		placed := hull.Transform(Pose{Position: Vector2D{X: 100, Y: 100}, Heading: math.Pi / 2})
		// Rotated a quarter turn the hull spans x 94..106, y 75..125.
		overlap, ok := PolygonIntersectsPolygon(placed, square(104, 120, 10))
		require.True(t, ok)
		assert.InDelta(t, 2*5, overlap.Area, 1e-6)
	})
}
