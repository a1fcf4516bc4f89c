package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDragTensor is returned for drag tensors that are not diagonal positive-definite.
var ErrInvalidDragTensor = errors.New("invalid drag tensor")

// Mat2 is a row-major 2x2 matrix:
//
//	| A B |
//	| C D |
type Mat2 struct {
	A, B, C, D float64
}

// Rotation returns R(theta) = [[cos, -sin], [sin, cos]].
func Rotation(theta float64) Mat2 {
	cos := math.Cos(theta)
	sin := math.Sin(theta)
	return Mat2{A: cos, B: -sin, C: sin, D: cos}
}

// Mul returns m * other.
func (m Mat2) Mul(other Mat2) Mat2 {
	return Mat2{
		A: m.A*other.A + m.B*other.C,
		B: m.A*other.B + m.B*other.D,
		C: m.C*other.A + m.D*other.C,
		D: m.C*other.B + m.D*other.D,
	}
}

// Transpose returns the transposed matrix.
func (m Mat2) Transpose() Mat2 {
	return Mat2{A: m.A, B: m.C, C: m.B, D: m.D}
}

// Apply returns m * v.
func (m Mat2) Apply(v Vector2D) Vector2D {
	return Vector2D{X: m.A*v.X + m.B*v.Y, Y: m.C*v.X + m.D*v.Y}
}

// Diagonal returns (A, D).
func (m Mat2) Diagonal() Vector2D {
	return Vector2D{X: m.A, Y: m.D}
}

// Trace returns A + D.
func (m Mat2) Trace() float64 {
	return m.A + m.D
}

// Determinant returns AD - BC.
func (m Mat2) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// IsSymmetric reports whether B and C agree within tol.
func (m Mat2) IsSymmetric(tol float64) bool {
	return math.Abs(m.B-m.C) <= tol
}

// Eigenvalues returns the eigenvalues of a symmetric matrix in ascending order.
func (m Mat2) Eigenvalues() (float64, float64) {
	half := m.Trace() / 2
	disc := math.Sqrt(math.Max(0, half*half-m.Determinant()))
	return half - disc, half + disc
}

// DragTensor is the vessel's body-frame resistance matrix. Along is the
// coefficient on the long (heading) axis, Across the lateral one.
type DragTensor struct {
	Along  float64
	Across float64
}

// NewDragTensor validates the coefficients of a diagonal drag tensor.
func NewDragTensor(along, across float64) (DragTensor, error) {
	if !isFinite(along) || !isFinite(across) || along <= 0 || across <= 0 {
		return DragTensor{}, fmt.Errorf("%w: coefficients must be positive, got (%g, %g)",
			ErrInvalidDragTensor, along, across)
	}
	return DragTensor{Along: along, Across: across}, nil
}

// Body returns the tensor in the vessel frame.
func (d DragTensor) Body() Mat2 {
	return Mat2{A: d.Along, D: d.Across}
}

// Rotated returns the tensor in the course frame for the given heading: Rᵗ·D·R.
func (d DragTensor) Rotated(heading float64) Mat2 {
	r := Rotation(heading)
	return r.Transpose().Mul(d.Body().Mul(r))
}
