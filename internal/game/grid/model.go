// Package grid provides the read-only tile grid: terrain lookup, bounds
// checking, floor segmentation and pixel/cell conversion.
package grid

import "fmt"

// Terrain classifies a single cell of the tile grid.
type Terrain int

// Terrain kinds. Only Floor cells can be walked on.
const (
	Empty Terrain = iota
	Wall
	Floor
)

// String returns the lowercase name of the terrain kind.
func (t Terrain) String() string {
	switch t {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Floor:
		return "floor"
	default:
		return fmt.Sprintf("terrain(%d)", int(t))
	}
}

// Cell is an integer grid coordinate.
type Cell struct {
	X int
	Y int
}

// Add returns the cell offset by dx, dy.
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// String formats the cell as "(x, y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Vec is a continuous position in map pixel space.
type Vec struct {
	X float64
	Y float64
}

// Rect is an axis-aligned integer rectangle, used both for cell regions and
// for pixel regions.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Left returns the minimum x edge.
func (r Rect) Left() int { return r.X }

// Right returns the exclusive maximum x edge.
func (r Rect) Right() int { return r.X + r.W }

// Top returns the minimum y edge.
func (r Rect) Top() int { return r.Y }

// Bottom returns the exclusive maximum y edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsCell reports whether c lies inside the rectangle.
func (r Rect) ContainsCell(c Cell) bool {
	return r.Contains(c.X, c.Y)
}

// Centre returns the geometric centre of the rectangle.
func (r Rect) Centre() Vec {
	return Vec{X: float64(r.X) + float64(r.W)/2, Y: float64(r.Y) + float64(r.H)/2}
}

// Overlaps reports whether two rectangles share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}
