// Package course holds the immutable description of a slalom course: the
// ordered gates, the rocks, and the finish line.
package course

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-slalom/pkg/physics"
)

// ErrInvalidCourse is wrapped by every course construction error.
var ErrInvalidCourse = errors.New("invalid course")

// Gate is a directional checkpoint between two posts.
type Gate struct {
	Index     int
	Center    physics.Vector2D
	Width     float64
	Polarity  Polarity
	LeftPost  physics.Vector2D
	RightPost physics.Vector2D
	Shape     physics.CircleUnion
}

// Bounds covers both post disks.
func (g Gate) Bounds() physics.Rect {
	return g.Shape.Bounds()
}

// Obstacle is a rock: any hull contact is a strike, whatever the direction.
type Obstacle struct {
	Index   int
	Name    string
	Outline physics.Polygon
}

// Course is built once and never mutated; accessors return copies.
type Course struct {
	gates       []Gate
	obstacles   []Obstacle
	finishLineX float64
	postRadius  float64
}

// New validates def and precomputes gate posts and collision shapes.
func New(def Definition) (*Course, error) {
	if !finite(def.FinishLineX) {
		return nil, fmt.Errorf("%w: finish line must be finite", ErrInvalidCourse)
	}
	if !finite(def.PostRadius) || def.PostRadius <= 0 {
		return nil, fmt.Errorf("%w: post radius must be positive, got %g", ErrInvalidCourse, def.PostRadius)
	}

	c := &Course{
		gates:       make([]Gate, 0, len(def.Gates)),
		obstacles:   make([]Obstacle, 0, len(def.Obstacles)),
		finishLineX: def.FinishLineX,
		postRadius:  def.PostRadius,
	}

	for i, gd := range def.Gates {
		gate, err := newGate(i, gd, def.PostRadius)
		if err != nil {
			return nil, err
		}
		c.gates = append(c.gates, gate)
	}

	for i, od := range def.Obstacles {
		outline, err := physics.NewPolygon(physics.PolygonFromPoints(od.Points))
		if err != nil {
			return nil, fmt.Errorf("%w: obstacle %d (%s): %v", ErrInvalidCourse, i, od.Name, err)
		}
		c.obstacles = append(c.obstacles, Obstacle{Index: i, Name: od.Name, Outline: outline})
	}

	return c, nil
}

func newGate(index int, gd GateDef, postRadius float64) (Gate, error) {
	if !finite(gd.X) || !finite(gd.Y) {
		return Gate{}, fmt.Errorf("%w: gate %d position is not finite", ErrInvalidCourse, index)
	}
	if !finite(gd.Width) || gd.Width <= 0 {
		return Gate{}, fmt.Errorf("%w: gate %d width must be positive, got %g", ErrInvalidCourse, index, gd.Width)
	}
	polarity, err := ParsePolarity(string(gd.Polarity))
	if err != nil {
		return Gate{}, fmt.Errorf("gate %d: %w", index, err)
	}

	center := physics.Vector2D{X: gd.X, Y: gd.Y}
	half := physics.Vector2D{Y: gd.Width / 2}
	left := center.Sub(half)
	right := center.Add(half)

	return Gate{
		Index:     index,
		Center:    center,
		Width:     gd.Width,
		Polarity:  polarity,
		LeftPost:  left,
		RightPost: right,
		Shape: physics.CircleUnion{
			{Center: left, Radius: postRadius},
			{Center: right, Radius: postRadius},
		},
	}, nil
}

// Gates returns the gates in traversal order.
func (c *Course) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	for i, g := range c.gates {
		g.Shape = append(physics.CircleUnion(nil), g.Shape...)
		out[i] = g
	}
	return out
}

// Gate returns gate i.
func (c *Course) Gate(i int) (Gate, bool) {
	if i < 0 || i >= len(c.gates) {
		return Gate{}, false
	}
	g := c.gates[i]
	g.Shape = append(physics.CircleUnion(nil), g.Shape...)
	return g, true
}

// GateCount returns the number of gates.
func (c *Course) GateCount() int {
	return len(c.gates)
}

// Obstacles returns the rocks.
func (c *Course) Obstacles() []Obstacle {
	out := make([]Obstacle, len(c.obstacles))
	for i, o := range c.obstacles {
		o.Outline = append(physics.Polygon(nil), o.Outline...)
		out[i] = o
	}
	return out
}

// FinishLineX is the x coordinate the vessel must exceed to finish.
func (c *Course) FinishLineX() float64 {
	return c.finishLineX
}

// PostRadius is the radius of every gate post disk.
func (c *Course) PostRadius() float64 {
	return c.postRadius
}

// Bounds covers every gate, every rock and the finish line.
func (c *Course) Bounds() physics.Rect {
	b := physics.RectFromCorners(
		physics.Vector2D{X: math.Min(0, c.finishLineX), Y: 0},
		physics.Vector2D{X: math.Max(0, c.finishLineX), Y: 0},
	)
	for _, g := range c.gates {
		b = b.Union(g.Bounds())
	}
	for _, o := range c.obstacles {
		b = b.Union(o.Outline.Bounds())
	}
	return b
}

// Definition rebuilds the serialisable form. New(c.Definition()) yields an
// equivalent course.
func (c *Course) Definition() Definition {
	def := Definition{
		Gates:       make([]GateDef, len(c.gates)),
		Obstacles:   make([]ObstacleDef, len(c.obstacles)),
		FinishLineX: c.finishLineX,
		PostRadius:  c.postRadius,
	}
	for i, g := range c.gates {
		def.Gates[i] = GateDef{X: g.Center.X, Y: g.Center.Y, Width: g.Width, Polarity: g.Polarity}
	}
	for i, o := range c.obstacles {
		def.Obstacles[i] = ObstacleDef{Name: o.Name, Points: o.Outline.Points()}
	}
	return def
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
