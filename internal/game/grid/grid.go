package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned when a floor index or cell lies outside the grid.
var ErrOutOfBounds = errors.New("out of bounds")

// Grid is an immutable tile grid partitioned along the x axis into floors of
// FloorTiles columns each.
//
// Invariant: every in-bounds cell belongs to exactly one floor in [0, FloorCount()).
type Grid struct {
	width      int
	height     int
	tileWidth  int
	tileHeight int
	floorTiles int
	terrain    []Terrain
}

// New creates a Grid from row-major terrain data.
//
// Floors are column strips floorTiles wide and height tall; they need not be
// square.
//
// Precondition: width, height, tile sizes and floorTiles must be > 0;
// width must be a multiple of floorTiles; len(terrain) must equal width*height.
// Postcondition: Returns a Grid or a non-nil error describing the violation.
func New(width, height, tileWidth, tileHeight, floorTiles int, terrain []Terrain) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", width, height)
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %dx%d", tileWidth, tileHeight)
	}
	if floorTiles <= 0 {
		return nil, fmt.Errorf("floor_tiles must be positive, got %d", floorTiles)
	}
	if width%floorTiles != 0 {
		return nil, fmt.Errorf("grid width %d is not a multiple of floor_tiles %d", width, floorTiles)
	}
	if len(terrain) != width*height {
		return nil, fmt.Errorf("terrain has %d cells, want %d", len(terrain), width*height)
	}
	cells := make([]Terrain, len(terrain))
	copy(cells, terrain)
	return &Grid{
		width:      width,
		height:     height,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		floorTiles: floorTiles,
		terrain:    cells,
	}, nil
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// TileWidth returns the width of one cell in pixels.
func (g *Grid) TileWidth() int { return g.tileWidth }

// TileHeight returns the height of one cell in pixels.
func (g *Grid) TileHeight() int { return g.tileHeight }

// FloorTiles returns the number of columns in each floor.
func (g *Grid) FloorTiles() int { return g.floorTiles }

// FloorCount returns the number of floors.
func (g *Grid) FloorCount() int { return g.width / g.floorTiles }

// PixelBounds returns the whole map in pixel space.
func (g *Grid) PixelBounds() Rect {
	return Rect{W: g.width * g.tileWidth, H: g.height * g.tileHeight}
}

// InBounds reports whether c is inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

// TerrainAt returns the terrain kind of c.
//
// Postcondition: Returns (Empty, false) for out-of-bounds cells, which callers
// treat as impassable.
func (g *Grid) TerrainAt(c Cell) (Terrain, bool) {
	if !g.InBounds(c) {
		return Empty, false
	}
	return g.terrain[c.Y*g.width+c.X], true
}

// IsFloor reports whether c is an in-bounds Floor cell.
func (g *Grid) IsFloor(c Cell) bool {
	t, ok := g.TerrainAt(c)
	return ok && t == Floor
}

// IsWall reports whether c is an in-bounds Wall cell.
func (g *Grid) IsWall(c Cell) bool {
	t, ok := g.TerrainAt(c)
	return ok && t == Wall
}

// FloorOf returns the floor index containing c.
func (g *Grid) FloorOf(c Cell) int {
	return floorDiv(c.X, g.floorTiles)
}

// FloorBounds returns the cell region of floor.
func (g *Grid) FloorBounds(floor int) (Rect, error) {
	if floor < 0 || floor >= g.FloorCount() {
		return Rect{}, fmt.Errorf("floor %d: %w", floor, ErrOutOfBounds)
	}
	return Rect{X: floor * g.floorTiles, Y: 0, W: g.floorTiles, H: g.height}, nil
}

// FloorPixelBounds returns the pixel region of floor.
func (g *Grid) FloorPixelBounds(floor int) (Rect, error) {
	r, err := g.FloorBounds(floor)
	if err != nil {
		return Rect{}, err
	}
	return Rect{
		X: r.X * g.tileWidth,
		Y: r.Y * g.tileHeight,
		W: r.W * g.tileWidth,
		H: r.H * g.tileHeight,
	}, nil
}

// PixelCentre returns the pixel centre of c. Half tile sizes are truncated so
// centres land on whole pixels.
func (g *Grid) PixelCentre(c Cell) Vec {
	return Vec{
		X: float64(c.X*g.tileWidth + g.tileWidth/2),
		Y: float64(c.Y*g.tileHeight + g.tileHeight/2),
	}
}

// CellAt returns the cell containing the pixel position v.
func (g *Grid) CellAt(v Vec) Cell {
	return Cell{
		X: int(math.Floor(v.X / float64(g.tileWidth))),
		Y: int(math.Floor(v.Y / float64(g.tileHeight))),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
