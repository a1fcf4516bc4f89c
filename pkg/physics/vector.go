// pkg/physics/vector.go
package physics

import "math"

// Vector2D is a point or displacement in course coordinates.
// The course frame is a screen frame: +x runs downstream, +y runs downward.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + other
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns v - other
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale multiplies both components by factor
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{X: v.X * factor, Y: v.Y * factor}
}

// Mul multiplies the vectors component by component.
func (v Vector2D) Mul(other Vector2D) Vector2D {
	return Vector2D{X: v.X * other.X, Y: v.Y * other.Y}
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product.
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the distance between two points
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Length()
}

// Midpoint returns the point halfway between v and other.
func (v Vector2D) Midpoint(other Vector2D) Vector2D {
	return Vector2D{X: (v.X + other.X) / 2, Y: (v.Y + other.Y) / 2}
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vector2D) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// FromHeading returns the unit vector a vessel with the given heading faces.
// Heading 0 faces +x; positive headings turn toward -y (up the screen).
func FromHeading(heading float64) Vector2D {
	return Vector2D{X: math.Cos(heading), Y: -math.Sin(heading)}
}

// ToCourse maps a body-frame vector into the course frame for the given heading.
// The body +x axis maps onto FromHeading(heading).
func (v Vector2D) ToCourse(heading float64) Vector2D {
	cos := math.Cos(heading)
	sin := math.Sin(heading)
	return Vector2D{
		X: v.X*cos + v.Y*sin,
		Y: -v.X*sin + v.Y*cos,
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
