// Package entity provides grid entities, their per-tick command queue engine,
// and the group/drawable Manager that owns them.
package entity

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/floorsim/internal/game/grid"
	"github.com/cory-johannsen/floorsim/internal/game/path"
)

// Kind identifies what an entity is.
type Kind int

// Entity kinds.
const (
	Generic Kind = iota
	Pickup
	Agent
	Avatar
	Teleporter
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Pickup:
		return "pickup"
	case Agent:
		return "agent"
	case Avatar:
		return "avatar"
	case Teleporter:
		return "teleporter"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// World is the simulation context an entity's commands act through. It is
// passed explicitly on every Update rather than shared through globals.
type World interface {
	// PixelCentre returns the pixel centre of a cell.
	PixelCentre(c grid.Cell) grid.Vec
	// CellAt returns the cell under a pixel position.
	CellAt(v grid.Vec) grid.Cell
	// FloorOf returns the floor index of a cell.
	FloorOf(c grid.Cell) int
	// FindPath searches from start to the nearest of targets.
	FindPath(start grid.Cell, targets []grid.Cell) (path.Path, int, bool)
	// Follows reports whether the camera tracks e.
	Follows(e *Entity) bool
	// SwitchFloor makes floor the active floor.
	SwitchFloor(floor int) error
	// CentreView centres the camera on e.
	CentreView(e *Entity)
}

// Behavior decides what an idle entity does next. Process is called on a tick
// where the entity's queue is empty and may append commands to it.
type Behavior interface {
	Process(e *Entity) error
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(e *Entity) error

// Process implements Behavior.
func (f BehaviorFunc) Process(e *Entity) error { return f(e) }

// StallBehavior parks an idle entity on a Stall.
var StallBehavior = BehaviorFunc(func(e *Entity) error {
	e.Command(Stall{})
	return nil
})

// Spec holds the construction parameters of an entity.
type Spec struct {
	Kind Kind
	// Layer orders drawing; higher draws on top.
	Layer int
	// Speed is in map pixels per second.
	Speed float64
	// Width and Height size the entity's rectangle in pixels.
	Width  int
	Height int
	// Sheet names the sprite sheet; Frames and Interval drive animation.
	Sheet    string
	Frames   int
	Interval float64
	Behavior Behavior
}

// Entity is any object placed on the grid.
type Entity struct {
	id       string
	kind     Kind
	layer    int
	speed    float64
	width    int
	height   int
	coord    grid.Cell
	pos      grid.Vec
	queue    Queue
	anim     Animation
	behavior Behavior

	overlapping bool

	// Teleporter data.
	destination grid.Cell
	graphic     string

	// Avatar data.
	inventory *Entity
}

// New creates an entity of spec placed at the centre of cell.
//
// Precondition: w must be non-nil.
// Postcondition: Returns an entity with a unique ID and an empty queue.
func New(spec Spec, w World, cell grid.Cell) *Entity {
	e := &Entity{
		id:       uuid.New().String(),
		kind:     spec.Kind,
		layer:    spec.Layer,
		speed:    spec.Speed,
		width:    spec.Width,
		height:   spec.Height,
		behavior: spec.Behavior,
		anim:     Animation{Sheet: spec.Sheet, Frames: spec.Frames, Interval: spec.Interval},
	}
	e.SyncCell(w, cell)
	return e
}

// NewTeleporter creates a teleporter pad at cell leading to dest.
func NewTeleporter(spec Spec, w World, cell, dest grid.Cell, graphic string) *Entity {
	spec.Kind = Teleporter
	e := New(spec, w, cell)
	e.destination = dest
	e.graphic = graphic
	return e
}

// ID returns the entity's unique identifier.
func (e *Entity) ID() string { return e.id }

// Kind returns the entity's kind.
func (e *Entity) Kind() Kind { return e.kind }

// Layer returns the draw layer.
func (e *Entity) Layer() int { return e.layer }

// Speed returns the movement speed in pixels per second.
func (e *Entity) Speed() float64 { return e.speed }

// Coord returns the entity's current cell.
func (e *Entity) Coord() grid.Cell { return e.coord }

// Position returns the entity's continuous pixel centre.
func (e *Entity) Position() grid.Vec { return e.pos }

// Rect returns the entity's rectangle centred on its whole-pixel position.
func (e *Entity) Rect() grid.Rect {
	cx, cy := int(e.pos.X), int(e.pos.Y)
	return grid.Rect{X: cx - e.width/2, Y: cy - e.height/2, W: e.width, H: e.height}
}

// Image returns the sprite sheet name and current animation frame.
func (e *Entity) Image() (string, int) { return e.anim.Sheet, e.anim.Frame() }

// Destination returns a teleporter's destination cell.
func (e *Entity) Destination() grid.Cell { return e.destination }

// Graphic returns a teleporter's "up" or "down" graphic.
func (e *Entity) Graphic() string { return e.graphic }

// Inventory returns the entity held by an avatar, or nil.
func (e *Entity) Inventory() *Entity { return e.inventory }

// SetInventory sets the entity held by an avatar.
func (e *Entity) SetInventory(item *Entity) { e.inventory = item }

// Overlapping reports whether the last overlap pass found another entity
// sharing this entity's rectangle.
func (e *Entity) Overlapping() bool { return e.overlapping }

// SetOverlapping records the overlap state.
func (e *Entity) SetOverlapping(v bool) { e.overlapping = v }

// Queue returns the entity's command queue.
func (e *Entity) Queue() *Queue { return &e.queue }

// Command appends cmd to the queue.
func (e *Entity) Command(cmd Command) { e.queue.PushBack(cmd) }

// SyncCell places the entity at the centre of c.
func (e *Entity) SyncCell(w World, c grid.Cell) {
	e.pos = w.PixelCentre(c)
	e.coord = c
}

// SyncPosition places the entity at pixel position v and derives its cell
// from the whole-pixel centre.
func (e *Entity) SyncPosition(w World, v grid.Vec) {
	e.pos = v
	e.coord = w.CellAt(grid.Vec{X: math.Trunc(v.X), Y: math.Trunc(v.Y)})
}

// Distance returns the pixel distance from the entity to v.
func (e *Entity) Distance(v grid.Vec) float64 {
	return math.Hypot(v.X-e.pos.X, v.Y-e.pos.Y)
}

// ResetQueue discards pending commands so the entity can be redirected. An
// in-flight MoveTo at the front is kept so the current hop finishes.
//
// Postcondition: Returns true if the queue is now empty, false if a MoveTo
// was preserved.
func (e *Entity) ResetQueue() bool {
	if front, ok := e.queue.Front(); ok {
		if _, moving := front.(MoveTo); moving {
			e.queue.Clear()
			e.queue.PushBack(front)
			return false
		}
	}
	e.queue.Clear()
	return true
}

// Update advances animation and runs exactly one command from the front of
// the queue, or the behavior's Process hook when the queue is empty.
//
// Postcondition: Stall and an unfinished MoveTo remain at the front; every
// other command is removed in the tick it runs.
func (e *Entity) Update(w World, elapsed float64) error {
	e.anim.Advance(elapsed)
	if e.queue.Len() == 0 {
		if e.behavior == nil {
			return nil
		}
		return e.behavior.Process(e)
	}
	cmd := e.queue.PopFront()
	keep, err := cmd.run(w, e, elapsed)
	if keep {
		e.queue.PushFront(cmd)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %s: %w", e.kind, e.id, cmd.Name(), err)
	}
	return nil
}

// expand pushes primitives for steps onto the front of the queue. steps run
// goal to start, so pushing each to the front leaves them in walking order
// ahead of whatever was already queued.
func (e *Entity) expand(w World, steps path.Path) {
	follow := w.Follows(e)
	for _, s := range steps {
		switch s.Kind {
		case path.Teleport:
			e.queue.PushFront(Teleport{Dest: s.Cell, Follow: follow})
		default:
			e.queue.PushFront(MoveTo{Dest: w.PixelCentre(s.Cell)})
		}
	}
}
