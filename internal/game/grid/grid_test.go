package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustGrid(t *testing.T, floorTiles int, rows ...string) *Grid {
	t.Helper()
	w, h, terrain, err := ParseRows(rows)
	require.NoError(t, err)
	g, err := New(w, h, 16, 16, floorTiles, terrain)
	require.NoError(t, err)
	return g
}

func genGrid(t *rapid.T) *Grid {
	floorTiles := rapid.IntRange(1, 8).Draw(t, "floor_tiles")
	floors := rapid.IntRange(1, 4).Draw(t, "floors")
	height := rapid.IntRange(1, 10).Draw(t, "height")
	width := floorTiles * floors
	terrain := make([]Terrain, width*height)
	for i := range terrain {
		terrain[i] = Terrain(rapid.IntRange(0, 2).Draw(t, "terrain"))
	}
	g, err := New(width, height, 16, 16, floorTiles, terrain)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNew_Validation(t *testing.T) {
	_, err := New(0, 5, 16, 16, 5, nil)
	assert.Error(t, err)

	_, err = New(6, 5, 16, 16, 5, make([]Terrain, 30))
	assert.ErrorContains(t, err, "not a multiple")

	_, err = New(5, 5, 0, 16, 5, make([]Terrain, 25))
	assert.ErrorContains(t, err, "tile size")

	_, err = New(5, 5, 16, 16, 5, make([]Terrain, 24))
	assert.ErrorContains(t, err, "terrain has")
}

func TestTerrainAt(t *testing.T) {
	g := mustGrid(t, 3,
		"#.#",
		"._.",
	)
	kind, ok := g.TerrainAt(Cell{0, 0})
	assert.True(t, ok)
	assert.Equal(t, Wall, kind)

	kind, ok = g.TerrainAt(Cell{1, 0})
	assert.True(t, ok)
	assert.Equal(t, Floor, kind)

	kind, ok = g.TerrainAt(Cell{1, 1})
	assert.True(t, ok)
	assert.Equal(t, Empty, kind)

	_, ok = g.TerrainAt(Cell{3, 0})
	assert.False(t, ok)
	_, ok = g.TerrainAt(Cell{-1, 0})
	assert.False(t, ok)
	assert.False(t, g.IsFloor(Cell{0, 2}))
}

func TestPropertyOutOfBoundsHasNoTerrain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid(t)
		c := Cell{
			X: rapid.IntRange(-5, g.Width()+5).Draw(t, "x"),
			Y: rapid.IntRange(-5, g.Height()+5).Draw(t, "y"),
		}
		kind, ok := g.TerrainAt(c)
		inside := c.X >= 0 && c.Y >= 0 && c.X < g.Width() && c.Y < g.Height()
		if ok != inside {
			t.Fatalf("TerrainAt(%s) ok=%v, want %v", c, ok, inside)
		}
		if ok && (kind < Empty || kind > Floor) {
			t.Fatalf("TerrainAt(%s) returned undefined terrain %d", c, kind)
		}
	})
}

func TestPropertyFloorPartition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid(t)
		c := Cell{
			X: rapid.IntRange(0, g.Width()-1).Draw(t, "x"),
			Y: rapid.IntRange(0, g.Height()-1).Draw(t, "y"),
		}
		floor := g.FloorOf(c)
		if floor < 0 || floor >= g.FloorCount() {
			t.Fatalf("FloorOf(%s) = %d, outside [0, %d)", c, floor, g.FloorCount())
		}
		bounds, err := g.FloorBounds(floor)
		if err != nil {
			t.Fatalf("FloorBounds(%d): %v", floor, err)
		}
		if !bounds.ContainsCell(c) {
			t.Fatalf("floor %d bounds %+v do not contain %s", floor, bounds, c)
		}
		for other := 0; other < g.FloorCount(); other++ {
			if other == floor {
				continue
			}
			ob, _ := g.FloorBounds(other)
			if ob.ContainsCell(c) {
				t.Fatalf("cell %s is in floors %d and %d", c, floor, other)
			}
		}
	})
}

func TestFloorBounds(t *testing.T) {
	g := mustGrid(t, 2,
		"....",
		"....",
	)
	assert.Equal(t, 2, g.FloorCount())
	r, err := g.FloorBounds(1)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 2, Y: 0, W: 2, H: 2}, r)

	px, err := g.FloorPixelBounds(1)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 32, Y: 0, W: 32, H: 32}, px)

	_, err = g.FloorBounds(2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = g.FloorBounds(-1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestFloorBounds_NonSquareFloors(t *testing.T) {
	g := mustGrid(t, 2,
		"....",
		"....",
		"....",
	)
	r, err := g.FloorBounds(0)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 2, H: 3}, r, "a floor spans every row")
	assert.True(t, r.ContainsCell(Cell{1, 2}))
	assert.Equal(t, 0, g.FloorOf(Cell{1, 2}))
	assert.Equal(t, 1, g.FloorOf(Cell{2, 2}))
}

func TestPixelConversion(t *testing.T) {
	g := mustGrid(t, 4, "....", "....")
	assert.Equal(t, Vec{X: 8, Y: 8}, g.PixelCentre(Cell{0, 0}))
	assert.Equal(t, Vec{X: 56, Y: 24}, g.PixelCentre(Cell{3, 1}))
	assert.Equal(t, Cell{3, 1}, g.CellAt(Vec{X: 63.9, Y: 16}))
	assert.Equal(t, Cell{-1, 0}, g.CellAt(Vec{X: -0.5, Y: 0}))
}

func TestPropertyPixelCentreRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGrid(t)
		c := Cell{
			X: rapid.IntRange(0, g.Width()-1).Draw(t, "x"),
			Y: rapid.IntRange(0, g.Height()-1).Draw(t, "y"),
		}
		if got := g.CellAt(g.PixelCentre(c)); got != c {
			t.Fatalf("CellAt(PixelCentre(%s)) = %s", c, got)
		}
	})
}

func TestRect_Overlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 16, H: 16}
	assert.True(t, a.Overlaps(Rect{X: 15, Y: 15, W: 16, H: 16}))
	assert.False(t, a.Overlaps(Rect{X: 16, Y: 0, W: 16, H: 16}))
	assert.Equal(t, Vec{X: 8, Y: 8}, a.Centre())
}
