package physics

// QuadTree for spatial partitioning. Each entry is a point tagged with an
// integer id; callers index extended shapes by their bounds center and widen
// queries by the largest shape extent.
type QuadTree struct {
	Boundary  Rect
	Capacity  int
	Points    []Vector2D
	IDs       []int
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree
}

// NewQuadTree creates a new quad tree with the given boundary and capacity
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		Points:   make([]Vector2D, 0, capacity),
		IDs:      make([]int, 0, capacity),
	}
}

// Insert adds id at point. It returns false when point lies outside the tree.
func (qt *QuadTree) Insert(point Vector2D, id int) bool {
	if !qt.Boundary.Contains(point) {
		return false
	}

	if len(qt.Points) < qt.Capacity && !qt.Divided {
		qt.Points = append(qt.Points, point)
		qt.IDs = append(qt.IDs, id)
		return true
	}

	if !qt.Divided {
		qt.Subdivide()
	}

	return qt.NorthWest.Insert(point, id) ||
		qt.NorthEast.Insert(point, id) ||
		qt.SouthWest.Insert(point, id) ||
		qt.SouthEast.Insert(point, id)
}

// Subdivide splits the quadtree into four quadrants
func (qt *QuadTree) Subdivide() {
	x := qt.Boundary.Center.X
	y := qt.Boundary.Center.Y
	w := qt.Boundary.Width / 2
	h := qt.Boundary.Height / 2

	// y grows downward, so "north" is the smaller y half.
	qt.NorthWest = NewQuadTree(Rect{Center: Vector2D{X: x - w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.NorthEast = NewQuadTree(Rect{Center: Vector2D{X: x + w/2, Y: y - h/2}, Width: w, Height: h}, qt.Capacity)
	qt.SouthWest = NewQuadTree(Rect{Center: Vector2D{X: x - w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.SouthEast = NewQuadTree(Rect{Center: Vector2D{X: x + w/2, Y: y + h/2}, Width: w, Height: h}, qt.Capacity)
	qt.Divided = true
}

// Query returns the ids of all points inside area, in no particular order.
func (qt *QuadTree) Query(area Rect) []int {
	var found []int
	qt.query(area, &found)
	return found
}

func (qt *QuadTree) query(area Rect, found *[]int) {
	if !qt.Boundary.Intersects(area) {
		return
	}
	for i, point := range qt.Points {
		if area.Contains(point) {
			*found = append(*found, qt.IDs[i])
		}
	}
	if !qt.Divided {
		return
	}
	qt.NorthWest.query(area, found)
	qt.NorthEast.query(area, found)
	qt.SouthWest.query(area, found)
	qt.SouthEast.query(area, found)
}

// Clear drops all entries and children.
func (qt *QuadTree) Clear() {
	qt.Points = qt.Points[:0]
	qt.IDs = qt.IDs[:0]
	qt.Divided = false
	qt.NorthWest = nil
	qt.NorthEast = nil
	qt.SouthWest = nil
	qt.SouthEast = nil
}

// Len returns the number of entries in the tree.
func (qt *QuadTree) Len() int {
	n := len(qt.Points)
	if qt.Divided {
		n += qt.NorthWest.Len() + qt.NorthEast.Len() + qt.SouthWest.Len() + qt.SouthEast.Len()
	}
	return n
}
