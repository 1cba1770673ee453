package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/floorsim/internal/config"
	"github.com/cory-johannsen/floorsim/internal/game/dice"
	"github.com/cory-johannsen/floorsim/internal/game/entity"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
)

// twoFloorMap has two 8x8 floors, each a walled 6x6 room, joined by a
// teleporter pair at (6, 6) <-> (14, 6).
const twoFloorMap = `
map:
  name: two-floor
  tile_width: 16
  tile_height: 16
  floor_tiles: 8
  rows:
    - "################"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "################"
  teleporters:
    - from: [6, 6]
      to: [14, 6]
    - from: [14, 6]
      to: [6, 6]
`

// isolatedMap is twoFloorMap with no teleporters.
const isolatedMap = `
map:
  name: isolated
  tile_width: 16
  tile_height: 16
  floor_tiles: 8
  rows:
    - "################"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "#......##......#"
    - "################"
`

type recordingGUI struct {
	contexts []string
	floors   []int
}

func (g *recordingGUI) SwitchContext(name string) { g.contexts = append(g.contexts, name) }
func (g *recordingGUI) SelectFloor(floor int) { g.floors = append(g.floors, floor) }

func (g *recordingGUI) lastContext() string {
	if len(g.contexts) == 0 {
		return ""
	}
	return g.contexts[len(g.contexts)-1]
}

type fakeHooks struct {
	population map[int]map[string]int
	respawn    int
	respawnOK  bool
	respawned  []int
}

func (h *fakeHooks) Population(floor int) (map[string]int, bool) {
	counts, ok := h.population[floor]
	return counts, ok
}

func (h *fakeHooks) RespawnFloor(from, floors int) (int, bool) {
	h.respawned = append(h.respawned, from)
	return h.respawn, h.respawnOK
}

func testWorldConfig(pop config.PopulationConfig) config.WorldConfig {
	return config.WorldConfig{
		PlacementAttempts: 2000,
		Population:        pop,
		AgentSpeed:        64,
		AvatarSpeed:       64,
		AnimationInterval: 0.2,
		ZoomLevels:        []float64{1, 2, 4},
	}
}

func newTestDomain(t testing.TB, yamlMap string, pop config.PopulationConfig, mutate ...func(*Options)) (*Manager, *recordingGUI) {
	t.Helper()
	m, err := grid.LoadMapFromBytes([]byte(yamlMap))
	require.NoError(t, err)
	gui := &recordingGUI{}
	opts := Options{
		World:  testWorldConfig(pop),
		View:   config.ViewConfig{Width: 64, Height: 64},
		Source: dice.NewSeededSource(7),
		GUI:    gui,
		Logger: zaptest.NewLogger(t),
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	d, err := NewManager(m, opts)
	require.NoError(t, err)
	return d, gui
}

// place adds a new entity of kind at c to group.
func place(d *Manager, group string, kind entity.Kind, c grid.Cell) *entity.Entity {
	e := entity.New(d.spec(kind), d, c)
	d.objects.Add(group, e)
	return e
}

// runUntil steps the world until done reports true, failing after limit ticks.
func runUntil(t *testing.T, d *Manager, limit int, done func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		require.NoError(t, d.Update(0.05))
		if done() {
			return
		}
	}
	t.Fatalf("condition not reached within %d ticks", limit)
}

func TestNewManager_Populates(t *testing.T) {
	d, gui := newTestDomain(t, twoFloorMap, config.PopulationConfig{Generic: 3, Pickups: 1, Agents: 2})

	assert.Len(t, d.Objects().Objects(entity.GroupGeneric), 6)
	assert.Len(t, d.Objects().Objects(entity.GroupPickups), 2)
	assert.Len(t, d.Objects().Objects(entity.GroupAgents), 4)
	assert.Len(t, d.Objects().Objects(entity.GroupTeleporters), 2)
	assert.Equal(t, []*entity.Entity{d.Avatar()}, d.Objects().Objects(entity.GroupAvatar))

	for _, group := range []string{entity.GroupGeneric, entity.GroupPickups, entity.GroupAgents} {
		perFloor := map[int]int{}
		for _, e := range d.Objects().Objects(group) {
			perFloor[d.FloorOf(e.Coord())]++
		}
		assert.Equal(t, perFloor[0], perFloor[1], "group %s split evenly", group)
	}

	assert.Equal(t, 0, d.FloorOf(d.Avatar().Coord()))
	assert.Equal(t, 0, d.Floor())
	assert.Equal(t, []int{0}, gui.floors)
	assert.Equal(t, d.Avatar().Position(), d.Viewport())

	dest, ok := d.TeleporterAt(grid.Cell{X: 6, Y: 6})
	require.True(t, ok)
	assert.Equal(t, grid.Cell{X: 14, Y: 6}, dest)
	_, ok = d.TeleporterAt(grid.Cell{X: 5, Y: 6})
	assert.False(t, ok)

	pads := d.Objects().Objects(entity.GroupTeleporters)
	assert.Equal(t, "up", pads[0].Graphic())
	assert.Equal(t, "down", pads[1].Graphic())
}

func TestPropertyPopulationPlacement(t *testing.T) {
	m, err := grid.LoadMapFromBytes([]byte(twoFloorMap))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		pop := config.PopulationConfig{
			Generic: rapid.IntRange(0, 8).Draw(rt, "generic"),
			Pickups: rapid.IntRange(0, 3).Draw(rt, "pickups"),
			Agents:  rapid.IntRange(0, 4).Draw(rt, "agents"),
		}
		d, err := NewManager(m, Options{
			World:  testWorldConfig(pop),
			View:   config.ViewConfig{Width: 64, Height: 64},
			Source: dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")),
			Logger: zaptest.NewLogger(t),
		})
		if err != nil {
			rt.Fatalf("NewManager: %v", err)
		}
		seen := map[grid.Cell]bool{}
		for _, e := range d.Objects().Drawable() {
			if !d.Grid().IsFloor(e.Coord()) {
				rt.Fatalf("%s placed on non-floor %s", e.Kind(), e.Coord())
			}
			if seen[e.Coord()] {
				rt.Fatalf("two entities placed on %s", e.Coord())
			}
			seen[e.Coord()] = true
		}
	})
}

func TestNewManager_NoPlacement(t *testing.T) {
	m, err := grid.LoadMapFromBytes([]byte(twoFloorMap))
	require.NoError(t, err)
	_, err = NewManager(m, Options{
		World:  testWorldConfig(config.PopulationConfig{Generic: 40}),
		View:   config.ViewConfig{Width: 64, Height: 64},
		Source: dice.NewSeededSource(1),
		Logger: zaptest.NewLogger(t),
	})
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestNewManager_RequiresCollaborators(t *testing.T) {
	m, err := grid.LoadMapFromBytes([]byte(twoFloorMap))
	require.NoError(t, err)
	base := Options{
		World:  testWorldConfig(config.PopulationConfig{}),
		View:   config.ViewConfig{Width: 64, Height: 64},
		Source: dice.NewSeededSource(1),
		Logger: zaptest.NewLogger(t),
	}

	_, err = NewManager(nil, base)
	assert.Error(t, err)

	noSource := base
	noSource.Source = nil
	_, err = NewManager(m, noSource)
	assert.Error(t, err)

	noLogger := base
	noLogger.Logger = nil
	_, err = NewManager(m, noLogger)
	assert.Error(t, err)

	badZoom := base
	badZoom.World.ZoomIndex = 5
	_, err = NewManager(m, badZoom)
	assert.Error(t, err)
}

func TestNewManager_PopulationHook(t *testing.T) {
	hooks := &fakeHooks{population: map[int]map[string]int{
		0: {entity.GroupGeneric: 2},
		1: {entity.GroupAgents: 1, "bogus": 5},
	}}
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{Generic: 1, Pickups: 1},
		func(o *Options) { o.Hooks = hooks })

	assert.Len(t, d.Objects().Objects(entity.GroupGeneric), 3)
	assert.Len(t, d.Objects().Objects(entity.GroupPickups), 2)
	agents := d.Objects().Objects(entity.GroupAgents)
	require.Len(t, agents, 1)
	assert.Equal(t, 1, d.FloorOf(agents[0].Coord()))
}

func TestCheckWin(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	assert.True(t, d.CheckWin(), "no pickups is trivially gathered")

	c := grid.Cell{X: 5, Y: 5}
	p1 := place(d, entity.GroupPickups, entity.Pickup, c)
	place(d, entity.GroupPickups, entity.Pickup, c)
	place(d, entity.GroupPickups, entity.Pickup, c)
	assert.True(t, d.CheckWin())

	p1.SyncCell(d, grid.Cell{X: 5, Y: 6})
	assert.False(t, d.CheckWin())
	p1.SyncCell(d, c)
	assert.True(t, d.CheckWin())

	// A carried item keeps its stale coordinate and never matches.
	d.Avatar().SyncCell(d, c)
	require.NoError(t, d.PickUp())
	held := d.Avatar().Inventory()
	require.NotNil(t, held)
	assert.Equal(t, c, held.Coord())
	assert.False(t, d.CheckWin())

	require.NoError(t, d.PutDown())
	assert.True(t, d.CheckWin())
}

func TestUpdate_OverlapFlags(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	d.Avatar().SyncCell(d, grid.Cell{X: 1, Y: 5})
	a := place(d, entity.GroupGeneric, entity.Generic, grid.Cell{X: 2, Y: 2})
	b := place(d, entity.GroupGeneric, entity.Generic, grid.Cell{X: 2, Y: 2})
	lone := place(d, entity.GroupGeneric, entity.Generic, grid.Cell{X: 3, Y: 2})

	require.NoError(t, d.Update(0.05))
	assert.True(t, a.Overlapping())
	assert.True(t, b.Overlapping())
	assert.False(t, lone.Overlapping(), "touching edges do not overlap")
	assert.False(t, d.Avatar().Overlapping())
}

func TestUpdate_AnimatesEntities(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	sheet, frame := d.Avatar().Image()
	assert.Equal(t, "avatar", sheet)
	assert.Equal(t, 0, frame)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Update(0.05))
	}
	_, frame = d.Avatar().Image()
	assert.Equal(t, 1, frame)
}

func TestRandomPosition_RespectsRegionAndOccupancy(t *testing.T) {
	d, _ := newTestDomain(t, twoFloorMap, config.PopulationConfig{})
	region := grid.Rect{X: 1, Y: 1, W: 2, H: 1}
	d.Avatar().SyncCell(d, grid.Cell{X: 5, Y: 5})
	place(d, entity.GroupGeneric, entity.Generic, grid.Cell{X: 1, Y: 1})

	for i := 0; i < 20; i++ {
		c, err := d.RandomPosition(region)
		require.NoError(t, err)
		assert.Equal(t, grid.Cell{X: 2, Y: 1}, c)
	}

	place(d, entity.GroupGeneric, entity.Generic, grid.Cell{X: 2, Y: 1})
	_, err := d.RandomPosition(region)
	assert.ErrorIs(t, err, ErrNoPlacement)

	_, err = d.RandomPositionFloor(9)
	assert.ErrorIs(t, err, ErrInvalidFloor)
}
