package physics

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrInvalidPolygon is returned for polygons that are degenerate or not simple.
var ErrInvalidPolygon = errors.New("invalid polygon")

// areaEpsilon is the smallest overlap area still counted as a collision.
const areaEpsilon = 1e-9

// Polygon is a simple polygon stored as an open ring of vertices.
type Polygon []Vector2D

// Overlap describes the region shared by two polygons.
type Overlap struct {
	Area     float64
	Centroid Vector2D
	Region   geom.Geometry
}

// NewPolygon copies points into a Polygon and validates it.
func NewPolygon(points []Vector2D) (Polygon, error) {
	p := make(Polygon, len(points))
	copy(p, points)
	if len(p) > 1 && p[0] == p[len(p)-1] {
		p = p[:len(p)-1]
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks for at least three finite vertices, non-zero area and a
// simple (non self-intersecting) ring.
func (p Polygon) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidPolygon, len(p))
	}
	for i, v := range p {
		if !v.IsFinite() {
			return fmt.Errorf("%w: vertex %d is not finite", ErrInvalidPolygon, i)
		}
	}
	if math.Abs(p.SignedArea()) <= areaEpsilon {
		return fmt.Errorf("%w: zero area", ErrInvalidPolygon)
	}
	if _, err := p.geometry(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPolygon, err)
	}
	return nil
}

// SignedArea is positive for rings that wind counter-clockwise in a y-up frame.
func (p Polygon) SignedArea() float64 {
	var sum float64
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		sum += a.Cross(b)
	}
	return sum / 2
}

// Area returns the unsigned area.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the area centroid, or the vertex mean for degenerate rings.
func (p Polygon) Centroid() Vector2D {
	if len(p) == 0 {
		return Vector2D{}
	}
	a := p.SignedArea()
	if math.Abs(a) <= areaEpsilon {
		var sum Vector2D
		for _, v := range p {
			sum = sum.Add(v)
		}
		return sum.Scale(1 / float64(len(p)))
	}
	var cx, cy float64
	for i := range p {
		v0 := p[i]
		v1 := p[(i+1)%len(p)]
		f := v0.Cross(v1)
		cx += (v0.X + v1.X) * f
		cy += (v0.Y + v1.Y) * f
	}
	return Vector2D{X: cx / (6 * a), Y: cy / (6 * a)}
}

// Transform rotates the body-frame polygon by pose.Heading and moves it to
// pose.Position. The receiver is not modified.
func (p Polygon) Transform(pose Pose) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.ToCourse(pose.Heading).Add(pose.Position)
	}
	return out
}

// Translate returns a copy of p moved by offset.
func (p Polygon) Translate(offset Vector2D) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(offset)
	}
	return out
}

// Bounds returns the axis-aligned bounding rectangle.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	min, max := p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return RectFromCorners(min, max)
}

// Contains reports whether pt lies strictly inside the polygon (even-odd rule).
func (p Polygon) Contains(pt Vector2D) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Points returns the vertices as [x, y] pairs.
func (p Polygon) Points() [][2]float64 {
	out := make([][2]float64, len(p))
	for i, v := range p {
		out[i] = [2]float64{v.X, v.Y}
	}
	return out
}

// PolygonFromPoints builds a Polygon from [x, y] pairs without validating it.
func PolygonFromPoints(points [][2]float64) Polygon {
	p := make(Polygon, len(points))
	for i, pt := range points {
		p[i] = Vector2D{X: pt[0], Y: pt[1]}
	}
	return p
}

// geometry converts to a closed simplefeatures polygon. The constructors
// reject rings that are not simple.
func (p Polygon) geometry() (geom.Polygon, error) {
	flat := make([]float64, 0, 2*(len(p)+1))
	for _, v := range p {
		flat = append(flat, v.X, v.Y)
	}
	if len(p) > 0 {
		flat = append(flat, p[0].X, p[0].Y)
	}
	ring, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, err
	}
	return geom.NewPolygon([]geom.LineString{ring})
}

// PolygonIntersectsPolygon computes the exact overlap of two polygons.
// Touching edges, zero-area overlaps and invalid input report no intersection.
func PolygonIntersectsPolygon(a, b Polygon) (Overlap, bool) {
	if len(a) < 3 || len(b) < 3 {
		return Overlap{}, false
	}
	if !a.Bounds().Intersects(b.Bounds()) {
		return Overlap{}, false
	}
	ga, err := a.geometry()
	if err != nil {
		return Overlap{}, false
	}
	gb, err := b.geometry()
	if err != nil {
		return Overlap{}, false
	}
	region, err := geom.Intersection(ga.AsGeometry(), gb.AsGeometry())
	if err != nil || region.IsEmpty() {
		return Overlap{}, false
	}
	area := region.Area()
	if !isFinite(area) || area <= areaEpsilon {
		return Overlap{}, false
	}
	xy, ok := region.Centroid().XY()
	if !ok {
		return Overlap{}, false
	}
	return Overlap{
		Area:     area,
		Centroid: Vector2D{X: xy.X, Y: xy.Y},
		Region:   region,
	}, true
}
