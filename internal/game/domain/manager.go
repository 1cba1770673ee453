// Package domain orchestrates a running world: it builds the population from a
// map, owns the camera and floor state, routes path searches, and exposes the
// avatar controls the GUI layer calls into.
package domain

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/floorsim/internal/config"
	"github.com/cory-johannsen/floorsim/internal/game/dice"
	"github.com/cory-johannsen/floorsim/internal/game/entity"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
	"github.com/cory-johannsen/floorsim/internal/game/path"
	"github.com/cory-johannsen/floorsim/internal/observability"
)

// Sentinel errors returned by domain operations.
var (
	ErrNoPlacement     = errors.New("no valid placement")
	ErrNotFloor        = errors.New("cell is not floor")
	ErrNothingToPickUp = errors.New("nothing to pick up")
	ErrAlreadyHolding  = errors.New("already holding an item")
	ErrNothingHeld     = errors.New("nothing held")
	ErrOnTeleporter    = errors.New("cannot put down on a teleporter")
	ErrInvalidFloor    = errors.New("invalid floor")
)

// Draw layers, higher draws on top.
const (
	LayerGeneric    = 1
	LayerPickup     = 2
	LayerTeleporter = 3
	LayerAgent      = 4
	LayerAvatar     = 5
)

// Hooks supplies scripted overrides for world construction and respawn.
type Hooks interface {
	// Population returns per-group counts for floor, keyed by group name.
	Population(floor int) (map[string]int, bool)
	// RespawnFloor returns the floor a delivered item reappears on.
	RespawnFloor(from, floors int) (int, bool)
}

// Options carries a Manager's collaborators.
type Options struct {
	World config.WorldConfig
	View  config.ViewConfig
	// Source drives placement; required.
	Source dice.Source
	// GUI receives context and floor-select updates; nil uses NopGUI.
	GUI GUI
	// Hooks overrides population and respawn; nil uses the configured counts.
	Hooks  Hooks
	Logger *zap.Logger
}

// Manager is the world orchestrator. It implements entity.World for every
// entity it creates and path.Teleporters for its solver.
//
// Manager is not safe for concurrent use; the simulation loop owns it.
type Manager struct {
	grid    *grid.Grid
	solver  *path.Solver
	objects *entity.Manager
	pads    map[grid.Cell]*entity.Entity

	cfg    config.WorldConfig
	view   config.ViewConfig
	rng    dice.Source
	gui    GUI
	hooks  Hooks
	logger *zap.Logger

	floor      int
	floorPorts []grid.Rect
	viewport   grid.Vec
	zoomIndex  int

	avatar *entity.Entity
}

// NewManager builds a world on m: teleporter pads from the map, then for each
// floor the generic items, pickups and agents at random free floor cells,
// then the avatar on floor 0. The active floor becomes the avatar's and the
// camera centres on it.
//
// Precondition: m, opts.Source and opts.Logger must be non-nil; opts.World
// must have passed config validation.
// Postcondition: Returns a populated Manager or an error wrapping
// ErrNoPlacement when a floor has no room for its population.
func NewManager(m *grid.Map, opts Options) (*Manager, error) {
	if m == nil || m.Grid == nil {
		return nil, errors.New("domain: map must not be nil")
	}
	if opts.Source == nil {
		return nil, errors.New("domain: random source must not be nil")
	}
	if opts.Logger == nil {
		return nil, errors.New("domain: logger must not be nil")
	}
	if len(opts.World.ZoomLevels) == 0 {
		return nil, errors.New("domain: zoom levels must not be empty")
	}
	if opts.World.ZoomIndex < 0 || opts.World.ZoomIndex >= len(opts.World.ZoomLevels) {
		return nil, fmt.Errorf("domain: zoom index %d out of range", opts.World.ZoomIndex)
	}
	gui := opts.GUI
	if gui == nil {
		gui = NopGUI{}
	}

	d := &Manager{
		grid:      m.Grid,
		objects:   entity.NewManager(),
		pads:      make(map[grid.Cell]*entity.Entity),
		cfg:       opts.World,
		view:      opts.View,
		rng:       opts.Source,
		gui:       gui,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		floor:     -1,
		zoomIndex: opts.World.ZoomIndex,
	}
	d.solver = path.NewSolver(d.grid, d)

	for f := 0; f < d.grid.FloorCount(); f++ {
		port, err := d.grid.FloorPixelBounds(f)
		if err != nil {
			return nil, err
		}
		d.floorPorts = append(d.floorPorts, port)
	}

	for _, tp := range m.Teleporters {
		pad := entity.NewTeleporter(d.spec(entity.Teleporter), d, tp.From, tp.To, tp.Graphic)
		d.objects.Add(entity.GroupTeleporters, pad)
		d.pads[tp.From] = pad
	}

	if err := d.populate(); err != nil {
		return nil, err
	}

	cell, err := d.RandomPositionFloor(0)
	if err != nil {
		return nil, fmt.Errorf("placing avatar: %w", err)
	}
	d.avatar = entity.New(d.spec(entity.Avatar), d, cell)
	d.objects.Add(entity.GroupAvatar, d.avatar)

	if err := d.SwitchFloor(d.grid.FloorOf(cell)); err != nil {
		return nil, err
	}
	d.CentreView(d.avatar)

	d.logger.Info("world built",
		zap.String("map", m.Name),
		zap.Int("floors", d.grid.FloorCount()),
		zap.Int("teleporters", len(d.pads)),
		zap.Int("generic", len(d.objects.Objects(entity.GroupGeneric))),
		zap.Int("pickups", len(d.objects.Objects(entity.GroupPickups))),
		zap.Int("agents", len(d.objects.Objects(entity.GroupAgents))),
		observability.Cell("avatar", cell),
	)
	return d, nil
}

func (d *Manager) populate() error {
	type batch struct {
		group string
		kind  entity.Kind
		count int
	}
	for f := 0; f < d.grid.FloorCount(); f++ {
		counts := map[string]int{
			entity.GroupGeneric: d.cfg.Population.Generic,
			entity.GroupPickups: d.cfg.Population.Pickups,
			entity.GroupAgents:  d.cfg.Population.Agents,
		}
		if d.hooks != nil {
			if scripted, ok := d.hooks.Population(f); ok {
				for group, n := range scripted {
					if _, known := counts[group]; known {
						counts[group] = n
					}
				}
			}
		}
		for _, b := range []batch{
			{entity.GroupGeneric, entity.Generic, counts[entity.GroupGeneric]},
			{entity.GroupPickups, entity.Pickup, counts[entity.GroupPickups]},
			{entity.GroupAgents, entity.Agent, counts[entity.GroupAgents]},
		} {
			for i := 0; i < b.count; i++ {
				cell, err := d.RandomPositionFloor(f)
				if err != nil {
					return fmt.Errorf("populating %s on floor %d: %w", b.group, f, err)
				}
				d.objects.Add(b.group, entity.New(d.spec(b.kind), d, cell))
			}
		}
	}
	return nil
}

// spec returns the construction parameters for kind.
func (d *Manager) spec(kind entity.Kind) entity.Spec {
	s := entity.Spec{
		Kind:     kind,
		Width:    d.grid.TileWidth(),
		Height:   d.grid.TileHeight(),
		Frames:   1,
		Interval: d.cfg.AnimationInterval,
		Behavior: entity.StallBehavior,
	}
	switch kind {
	case entity.Generic:
		s.Layer, s.Sheet = LayerGeneric, "item_generic"
	case entity.Pickup:
		s.Layer, s.Sheet = LayerPickup, "pickup"
	case entity.Teleporter:
		s.Layer, s.Sheet = LayerTeleporter, "teleporter"
	case entity.Agent:
		s.Layer, s.Sheet, s.Frames = LayerAgent, "agent", 2
		s.Speed = d.cfg.AgentSpeed
		s.Behavior = &agentBehavior{d: d}
	case entity.Avatar:
		s.Layer, s.Sheet, s.Frames = LayerAvatar, "avatar", 2
		s.Speed = d.cfg.AvatarSpeed
		s.Behavior = entity.BehaviorFunc(d.avatarProcess)
	}
	return s
}

// Grid returns the world's terrain grid.
func (d *Manager) Grid() *grid.Grid { return d.grid }

// Objects returns the entity manager.
func (d *Manager) Objects() *entity.Manager { return d.objects }

// Avatar returns the player's avatar.
func (d *Manager) Avatar() *entity.Entity { return d.avatar }

// Floor returns the active floor.
func (d *Manager) Floor() int { return d.floor }

// PixelCentre implements entity.World.
func (d *Manager) PixelCentre(c grid.Cell) grid.Vec { return d.grid.PixelCentre(c) }

// CellAt implements entity.World.
func (d *Manager) CellAt(v grid.Vec) grid.Cell { return d.grid.CellAt(v) }

// FloorOf implements entity.World.
func (d *Manager) FloorOf(c grid.Cell) int { return d.grid.FloorOf(c) }

// Follows implements entity.World; the camera tracks the avatar.
func (d *Manager) Follows(e *entity.Entity) bool { return e != nil && e == d.avatar }

// TeleporterAt implements path.Teleporters.
func (d *Manager) TeleporterAt(c grid.Cell) (grid.Cell, bool) {
	pad, ok := d.pads[c]
	if !ok {
		return grid.Cell{}, false
	}
	return pad.Destination(), true
}

// FindPath searches from start to the nearest of targets. The path runs goal
// to start; idx indexes the matched target.
//
// Postcondition: ok is false when no target is reachable.
func (d *Manager) FindPath(start grid.Cell, targets []grid.Cell) (path.Path, int, bool) {
	return d.solver.FindPath(start, targets)
}

// FindNearest searches from start to the nearest of es.
//
// Postcondition: Returns the matched entity, or nil with ok false.
func (d *Manager) FindNearest(start grid.Cell, es []*entity.Entity) (path.Path, *entity.Entity, bool) {
	steps, idx, ok := d.solver.FindPath(start, entity.Coords(es))
	if !ok {
		return nil, nil, false
	}
	return steps, es[idx], true
}

// RandomPosition returns a random Floor cell inside the cell region r that no
// drawable entity occupies.
//
// Postcondition: Returns an error wrapping ErrNoPlacement after
// placement_attempts misses.
func (d *Manager) RandomPosition(r grid.Rect) (grid.Cell, error) {
	if r.W > 0 && r.H > 0 {
		for i := 0; i < d.cfg.PlacementAttempts; i++ {
			c := grid.Cell{X: r.X + d.rng.Intn(r.W), Y: r.Y + d.rng.Intn(r.H)}
			if d.grid.IsFloor(c) && !d.objects.Occupied(c) {
				return c, nil
			}
		}
	}
	d.logger.Error("placement failed",
		zap.Int("x", r.X), zap.Int("y", r.Y), zap.Int("w", r.W), zap.Int("h", r.H),
		zap.Int("attempts", d.cfg.PlacementAttempts),
	)
	return grid.Cell{}, fmt.Errorf("region %dx%d at (%d, %d): %w", r.W, r.H, r.X, r.Y, ErrNoPlacement)
}

// RandomPositionFloor is RandomPosition over the whole of floor.
func (d *Manager) RandomPositionFloor(floor int) (grid.Cell, error) {
	r, err := d.grid.FloorBounds(floor)
	if err != nil {
		return grid.Cell{}, fmt.Errorf("floor %d: %w", floor, ErrInvalidFloor)
	}
	return d.RandomPosition(r)
}

// CheckWin reports whether every pickup shares one cell. An item in the
// avatar's inventory keeps the coordinate it had when picked up and never
// counts as matching, so the game cannot be won while an item is carried.
func (d *Manager) CheckWin() bool {
	if d.avatar != nil && d.avatar.Inventory() != nil {
		return false
	}
	var last *entity.Entity
	for _, item := range d.objects.Objects(entity.GroupPickups) {
		if last != nil && item.Coord() != last.Coord() {
			return false
		}
		last = item
	}
	return true
}

// Update advances the world one tick: refreshes overlap flags, then updates
// every drawable entity in insertion order, then clamps the camera. Entities
// deleted earlier in the same tick are skipped.
func (d *Manager) Update(elapsed float64) error {
	drawable := d.objects.Drawable()
	for i, e := range drawable {
		overlapping := false
		for j, o := range drawable {
			if i != j && e.Rect().Overlaps(o.Rect()) {
				overlapping = true
				break
			}
		}
		e.SetOverlapping(overlapping)
	}

	for _, e := range drawable {
		if !d.objects.IsDrawable(e) {
			continue
		}
		if err := e.Update(d, elapsed); err != nil {
			return fmt.Errorf("updating world: %w", err)
		}
	}
	d.View()
	return nil
}
