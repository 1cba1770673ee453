package entity

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/floorsim/internal/game/grid"
	"github.com/cory-johannsen/floorsim/internal/game/path"
)

// ArrivalDistance is the distance in pixels at which a MoveTo snaps to its target.
const ArrivalDistance = 1.0

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1

// Command is one queued action. The set of commands is closed: only the types
// in this file implement it.
type Command interface {
	// Name returns the command's display name.
	Name() string
	// run executes the command for one tick on e. keep reports whether the
	// command stays at the front of the queue for the next tick.
	run(w World, e *Entity, elapsed float64) (keep bool, err error)
}

// Stall suspends the entity until its queue is changed from outside.
type Stall struct{}

// Name implements Command.
func (Stall) Name() string { return "Stall" }

func (Stall) run(World, *Entity, float64) (bool, error) { return true, nil }

// MoveTo moves the entity in a straight line toward Dest in map pixels.
type MoveTo struct {
	Dest grid.Vec
}

// Name implements Command.
func (MoveTo) Name() string { return "MoveTo" }

func (c MoveTo) run(w World, e *Entity, elapsed float64) (bool, error) {
	dx, dy := c.Dest.X-e.pos.X, c.Dest.Y-e.pos.Y
	dist := math.Hypot(dx, dy)
	if dist <= ArrivalDistance+epsilon {
		e.SyncPosition(w, c.Dest)
		return false, nil
	}
	step := e.speed * elapsed
	if step >= dist {
		// Never step past the target.
		e.SyncPosition(w, c.Dest)
		return false, nil
	}
	bearing := math.Atan2(dy, dx)
	e.SyncPosition(w, grid.Vec{
		X: e.pos.X + math.Cos(bearing)*step,
		Y: e.pos.Y + math.Sin(bearing)*step,
	})
	return true, nil
}

// Path expands a solved path into MoveTo and Teleport primitives.
type Path struct {
	// Steps runs goal to start, as returned by the solver.
	Steps path.Path
}

// Name implements Command.
func (Path) Name() string { return "Path" }

func (c Path) run(w World, e *Entity, _ float64) (bool, error) {
	e.expand(w, c.Steps)
	return false, nil
}

// PathTo solves a path from the entity's cell to Target when it reaches the
// front of the queue, then expands it like Path. An unreachable target is
// dropped and the entity stays put.
type PathTo struct {
	Target grid.Cell
}

// Name implements Command.
func (PathTo) Name() string { return "PathTo" }

func (c PathTo) run(w World, e *Entity, _ float64) (bool, error) {
	steps, _, ok := w.FindPath(e.coord, path.At(c.Target))
	if ok {
		e.expand(w, steps)
	}
	return false, nil
}

// Teleport relocates the entity to Dest instantly. When Follow is set the
// active floor and the camera follow the entity.
type Teleport struct {
	Dest   grid.Cell
	Follow bool
}

// Name implements Command.
func (Teleport) Name() string { return "Teleport" }

func (c Teleport) run(w World, e *Entity, _ float64) (bool, error) {
	e.SyncCell(w, c.Dest)
	if !c.Follow {
		return false, nil
	}
	if err := w.SwitchFloor(w.FloorOf(c.Dest)); err != nil {
		return false, fmt.Errorf("teleport %s to %s: %w", e.id, c.Dest, err)
	}
	w.CentreView(e)
	return false, nil
}

// Datagram invokes Callback with Arg once, typically queued behind an
// in-flight MoveTo so the callback runs after the hop completes.
type Datagram struct {
	Callback func(arg any) error
	Arg      any
}

// Name implements Command.
func (Datagram) Name() string { return "Datagram" }

func (c Datagram) run(World, *Entity, float64) (bool, error) {
	if c.Callback == nil {
		return false, nil
	}
	return false, c.Callback(c.Arg)
}

// SwitchFloor makes Floor the active floor.
type SwitchFloor struct {
	Floor int
}

// Name implements Command.
func (SwitchFloor) Name() string { return "SwitchFloor" }

func (c SwitchFloor) run(w World, _ *Entity, _ float64) (bool, error) {
	return false, w.SwitchFloor(c.Floor)
}

// CentreView centres the camera on Target, or on the queue's owner when
// Target is nil.
type CentreView struct {
	Target *Entity
}

// Name implements Command.
func (CentreView) Name() string { return "CentreView" }

func (c CentreView) run(w World, e *Entity, _ float64) (bool, error) {
	target := c.Target
	if target == nil {
		target = e
	}
	w.CentreView(target)
	return false, nil
}
