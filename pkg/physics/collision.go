// pkg/physics/collision.go
package physics

import "math"

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Intersects reports whether the two disks touch or overlap.
func (c Circle) Intersects(other Circle) bool {
	return CircleIntersectsCircle(c.Center, c.Radius, other.Center, other.Radius)
}

// CircleIntersectsCircle is true iff the center distance is at most r1+r2.
// Non-finite input never intersects.
func CircleIntersectsCircle(c1 Vector2D, r1 float64, c2 Vector2D, r2 float64) bool {
	if !c1.IsFinite() || !c2.IsFinite() || !isFinite(r1) || !isFinite(r2) || r1 < 0 || r2 < 0 {
		return false
	}
	sum := r1 + r2
	return c1.Sub(c2).LengthSquared() <= sum*sum
}

// CircleUnion is a shape made of several disks, such as a gate's two posts.
type CircleUnion []Circle

// IntersectsCircle returns the index of the first disk that touches c.
func (u CircleUnion) IntersectsCircle(c Circle) (int, bool) {
	for i, disk := range u {
		if disk.Intersects(c) {
			return i, true
		}
	}
	return -1, false
}

// Bounds returns the bounding rectangle of all disks.
func (u CircleUnion) Bounds() Rect {
	if len(u) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range u {
		minX = math.Min(minX, c.Center.X-c.Radius)
		minY = math.Min(minY, c.Center.Y-c.Radius)
		maxX = math.Max(maxX, c.Center.X+c.Radius)
		maxY = math.Max(maxY, c.Center.Y+c.Radius)
	}
	return RectFromCorners(Vector2D{X: minX, Y: minY}, Vector2D{X: maxX, Y: maxY})
}

// PointInRange reports lo < value < hi. An empty or inverted range holds nothing.
func PointInRange(value, lo, hi float64) bool {
	return lo < value && value < hi
}

// PolygonIntersectsCircles tests a polygon against every disk of a union and
// returns the index of the first disk it touches. A disk touches the polygon if
// its center lies inside or any edge passes within its radius.
func PolygonIntersectsCircles(p Polygon, shape CircleUnion) (int, bool) {
	if len(p) < 3 {
		return -1, false
	}
	for i, disk := range shape {
		if polygonTouchesCircle(p, disk) {
			return i, true
		}
	}
	return -1, false
}

func polygonTouchesCircle(p Polygon, c Circle) bool {
	if !c.Center.IsFinite() || !isFinite(c.Radius) || c.Radius < 0 {
		return false
	}
	if p.Contains(c.Center) {
		return true
	}
	r2 := c.Radius * c.Radius
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		if segmentDistanceSquared(c.Center, a, b) <= r2 {
			return true
		}
	}
	return false
}

// segmentDistanceSquared returns the squared distance from pt to segment ab.
// A zero-length segment degenerates to a point.
func segmentDistanceSquared(pt, a, b Vector2D) float64 {
	ab := b.Sub(a)
	denom := ab.LengthSquared()
	if denom == 0 {
		return pt.Sub(a).LengthSquared()
	}
	t := pt.Sub(a).Dot(ab) / denom
	t = math.Max(0, math.Min(1, t))
	closest := a.Add(ab.Scale(t))
	return pt.Sub(closest).LengthSquared()
}

// Rect represents a rectangular area
type Rect struct {
	Center Vector2D
	Width  float64
	Height float64
}

// RectFromCorners builds a Rect from its min and max corners.
func RectFromCorners(min, max Vector2D) Rect {
	return Rect{
		Center: min.Midpoint(max),
		Width:  max.X - min.X,
		Height: max.Y - min.Y,
	}
}

// Contains is half-open: the min edges are inside, the max edges are not.
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Intersects reports whether two rectangles overlap, edges included.
func (r Rect) Intersects(other Rect) bool {
	return !(other.Center.X-other.Width/2 > r.Center.X+r.Width/2 ||
		other.Center.X+other.Width/2 < r.Center.X-r.Width/2 ||
		other.Center.Y-other.Height/2 > r.Center.Y+r.Height/2 ||
		other.Center.Y+other.Height/2 < r.Center.Y-r.Height/2)
}

// Expand grows the rectangle by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{Center: r.Center, Width: r.Width + 2*margin, Height: r.Height + 2*margin}
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(other Rect) Rect {
	min := Vector2D{
		X: math.Min(r.Center.X-r.Width/2, other.Center.X-other.Width/2),
		Y: math.Min(r.Center.Y-r.Height/2, other.Center.Y-other.Height/2),
	}
	max := Vector2D{
		X: math.Max(r.Center.X+r.Width/2, other.Center.X+other.Width/2),
		Y: math.Max(r.Center.Y+r.Height/2, other.Center.Y+other.Height/2),
	}
	return RectFromCorners(min, max)
}
