// pkg/engine/evaluator.go
package engine

import (
	"math"
	"sort"

	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

// quadTreeCapacity is the number of entries a node holds before splitting.
const quadTreeCapacity = 4

// ObstacleHit is one rock touched by the hull this tick.
type ObstacleHit struct {
	Index   int
	Name    string
	Overlap physics.Overlap
}

// Evaluator answers the per-tick collision questions against a fixed course.
// It never mutates the course or the vessel.
type Evaluator struct {
	gates      []course.Gate
	obstacles  []course.Obstacle
	headRadius float64

	gateIndex     *physics.QuadTree
	gateReach     float64
	obstacleIndex *physics.QuadTree
	obstacleReach float64
}

// NewEvaluator indexes the course gates and rocks. headRadius is the radius of
// the disk placed at the vessel position for post strikes.
func NewEvaluator(c *course.Course, headRadius float64) *Evaluator {
	e := &Evaluator{
		gates:      c.Gates(),
		obstacles:  c.Obstacles(),
		headRadius: headRadius,
	}

	bounds := c.Bounds().Expand(1)
	e.gateIndex = physics.NewQuadTree(bounds, quadTreeCapacity)
	for i, g := range e.gates {
		b := g.Bounds()
		e.gateIndex.Insert(b.Center, i)
		e.gateReach = math.Max(e.gateReach, halfDiagonal(b))
	}

	e.obstacleIndex = physics.NewQuadTree(bounds, quadTreeCapacity)
	for i, o := range e.obstacles {
		b := o.Outline.Bounds()
		e.obstacleIndex.Insert(b.Center, i)
		e.obstacleReach = math.Max(e.obstacleReach, halfDiagonal(b))
	}

	return e
}

// CrossedGates returns every gate crossed between last and cur, in ascending
// index order. The lateral test uses the midpoint of the two y values rather
// than the exact intersection with the gate line.
func (e *Evaluator) CrossedGates(last, cur physics.Pose) []int {
	a, b := last.Position.X, cur.Position.X
	lo, hi := math.Min(a, b), math.Max(a, b)
	midY := (last.Position.Y + cur.Position.Y) / 2
	dir := b - a

	var crossed []int
	for i, g := range e.gates {
		if !physics.PointInRange(g.Center.X, lo, hi) {
			continue
		}
		if !physics.PointInRange(midY, g.LeftPost.Y, g.RightPost.Y) {
			continue
		}
		if dir*g.Polarity.Sign() <= 0 {
			continue
		}
		crossed = append(crossed, i)
	}
	return crossed
}

// HeadStrike reports the lowest-index gate whose posts touch the head disk at
// pos, whatever the direction of travel or expected gate.
func (e *Evaluator) HeadStrike(pos physics.Vector2D) (int, bool) {
	head := physics.Circle{Center: pos, Radius: e.headRadius}
	area := physics.Rect{Center: pos, Width: 0, Height: 0}.Expand(e.headRadius + e.gateReach)

	candidates := e.gateIndex.Query(area)
	sort.Ints(candidates)
	for _, i := range candidates {
		if _, hit := e.gates[i].Shape.IntersectsCircle(head); hit {
			return i, true
		}
	}
	return -1, false
}

// ObstacleStrikes returns every rock the hull overlaps with positive area, in
// ascending index order.
func (e *Evaluator) ObstacleStrikes(hull physics.Polygon) []ObstacleHit {
	if len(e.obstacles) == 0 || len(hull) < 3 {
		return nil
	}
	hb := hull.Bounds()
	area := hb.Expand(e.obstacleReach)

	candidates := e.obstacleIndex.Query(area)
	sort.Ints(candidates)

	var hits []ObstacleHit
	for _, i := range candidates {
		o := e.obstacles[i]
		if !hb.Intersects(o.Outline.Bounds()) {
			continue
		}
		overlap, ok := physics.PolygonIntersectsPolygon(hull, o.Outline)
		if !ok {
			continue
		}
		hits = append(hits, ObstacleHit{Index: i, Name: o.Name, Overlap: overlap})
	}
	return hits
}

// GateCount returns the number of gates on the course.
func (e *Evaluator) GateCount() int {
	return len(e.gates)
}

func halfDiagonal(r physics.Rect) float64 {
	return math.Hypot(r.Width, r.Height) / 2
}
