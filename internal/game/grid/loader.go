package grid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Terrain glyphs used in map rows.
const (
	GlyphWall  = '#'
	GlyphFloor = '.'
	GlyphEmpty = '_'
)

// Teleporter describes one directional teleporter pad placed by the map.
type Teleporter struct {
	// From is the cell holding the pad.
	From Cell
	// To is the cell an entity arrives at after using the pad.
	To Cell
	// Graphic is "up" or "down".
	Graphic string
}

// Map is a loaded map: the terrain grid plus its teleporter layout.
type Map struct {
	Name        string
	Grid        *Grid
	Teleporters []Teleporter
}

// yamlMapFile is the top-level YAML structure for map files.
type yamlMapFile struct {
	Map yamlMap `yaml:"map"`
}

type yamlMap struct {
	Name        string           `yaml:"name"`
	TileWidth   int              `yaml:"tile_width"`
	TileHeight  int              `yaml:"tile_height"`
	FloorTiles  int              `yaml:"floor_tiles"`
	Rows        []string         `yaml:"rows"`
	Teleporters []yamlTeleporter `yaml:"teleporters"`
}

type yamlTeleporter struct {
	From    []int  `yaml:"from"`
	To      []int  `yaml:"to"`
	Graphic string `yaml:"graphic"`
}

// LoadMapFromFile reads and validates a YAML map file.
//
// Precondition: path must point to a valid YAML map file.
// Postcondition: Returns a validated Map or a non-nil error.
func LoadMapFromFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return LoadMapFromBytes(data)
}

// LoadMapFromBytes parses and validates a map from YAML bytes.
//
// Postcondition: Returns a validated Map or a non-nil error.
func LoadMapFromBytes(data []byte) (*Map, error) {
	var file yamlMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing map YAML: %w", err)
	}
	m, err := convertYAMLMap(file.Map)
	if err != nil {
		return nil, fmt.Errorf("validating map %q: %w", file.Map.Name, err)
	}
	return m, nil
}

// ParseRows converts glyph rows into row-major terrain.
//
// Postcondition: Returns width, height and terrain, or an error on ragged rows
// or unknown glyphs.
func ParseRows(rows []string) (int, int, []Terrain, error) {
	if len(rows) == 0 {
		return 0, 0, nil, fmt.Errorf("map has no rows")
	}
	width := len(rows[0])
	terrain := make([]Terrain, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return 0, 0, nil, fmt.Errorf("row %d has width %d, want %d", y, len(row), width)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case GlyphWall:
				terrain = append(terrain, Wall)
			case GlyphFloor:
				terrain = append(terrain, Floor)
			case GlyphEmpty, ' ':
				terrain = append(terrain, Empty)
			default:
				return 0, 0, nil, fmt.Errorf("unknown glyph %q at (%d, %d)", row[x], x, y)
			}
		}
	}
	return width, len(rows), terrain, nil
}

func convertYAMLMap(ym yamlMap) (*Map, error) {
	width, height, terrain, err := ParseRows(ym.Rows)
	if err != nil {
		return nil, err
	}
	g, err := New(width, height, ym.TileWidth, ym.TileHeight, ym.FloorTiles, terrain)
	if err != nil {
		return nil, err
	}

	m := &Map{Name: ym.Name, Grid: g}
	seen := make(map[Cell]bool, len(ym.Teleporters))
	for i, yt := range ym.Teleporters {
		from, err := yamlCell(yt.From)
		if err != nil {
			return nil, fmt.Errorf("teleporter %d: from: %w", i, err)
		}
		to, err := yamlCell(yt.To)
		if err != nil {
			return nil, fmt.Errorf("teleporter %d: to: %w", i, err)
		}
		if !g.IsFloor(from) {
			return nil, fmt.Errorf("teleporter %d: from %s is not a floor cell", i, from)
		}
		if !g.IsFloor(to) {
			return nil, fmt.Errorf("teleporter %d: to %s is not a floor cell", i, to)
		}
		if from == to {
			return nil, fmt.Errorf("teleporter %d: from and to are both %s", i, from)
		}
		if seen[from] {
			return nil, fmt.Errorf("teleporter %d: duplicate pad at %s", i, from)
		}
		seen[from] = true

		graphic := yt.Graphic
		switch graphic {
		case "up", "down":
		case "":
			graphic = "down"
			if g.FloorOf(to) > g.FloorOf(from) {
				graphic = "up"
			}
		default:
			return nil, fmt.Errorf("teleporter %d: graphic must be up or down, got %q", i, graphic)
		}
		m.Teleporters = append(m.Teleporters, Teleporter{From: from, To: to, Graphic: graphic})
	}
	return m, nil
}

func yamlCell(v []int) (Cell, error) {
	if len(v) != 2 {
		return Cell{}, fmt.Errorf("cell must be [x, y], got %v", v)
	}
	return Cell{X: v[0], Y: v[1]}, nil
}
