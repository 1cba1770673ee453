package domain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/floorsim/internal/game/entity"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
	"github.com/cory-johannsen/floorsim/internal/game/path"
	"github.com/cory-johannsen/floorsim/internal/observability"
)

// agentBehavior is the per-agent fetch loop: claim the nearest generic item,
// walk to it, then delete it and respawn a fresh one elsewhere.
type agentBehavior struct {
	d       *Manager
	claimed *entity.Entity
}

// Process implements entity.Behavior. With no claim it searches the generic
// group and claims the nearest reachable item by detaching it from the group;
// the item stays drawable while the agent walks. With a claim, the walk is
// over: the item is deleted and a replacement is placed. An agent that finds
// nothing reachable queues nothing and searches again next tick.
func (a *agentBehavior) Process(e *entity.Entity) error {
	d := a.d
	if a.claimed == nil {
		generic := d.objects.Objects(entity.GroupGeneric)
		if len(generic) == 0 {
			return nil
		}
		steps, item, ok := d.FindNearest(e.Coord(), generic)
		if !ok {
			return nil
		}
		d.objects.Remove(entity.GroupGeneric, item)
		a.claimed = item
		e.Command(entity.Path{Steps: steps})
		return nil
	}

	item := a.claimed
	a.claimed = nil
	from := d.grid.FloorOf(item.Coord())
	d.objects.Delete(entity.GroupGeneric, item)

	cell, err := d.respawnCell(from)
	if err != nil {
		// The world keeps running one item short.
		return nil
	}
	d.objects.Add(entity.GroupGeneric, entity.New(d.spec(entity.Generic), d, cell))
	d.logger.Debug("agent delivered item",
		zap.String("agent", e.ID()),
		observability.Cell("at", e.Coord()),
		observability.Cell("respawn", cell),
	)
	return nil
}

// respawnCell picks where a delivered item reappears: on the floor the
// respawn hook names, or anywhere on the map.
func (d *Manager) respawnCell(from int) (grid.Cell, error) {
	if d.hooks != nil {
		if floor, ok := d.hooks.RespawnFloor(from, d.grid.FloorCount()); ok {
			return d.RandomPositionFloor(floor)
		}
	}
	return d.RandomPosition(grid.Rect{X: 0, Y: 0, W: d.grid.Width(), H: d.grid.Height()})
}

// avatarProcess offers the GUI the action the avatar can take where it idles:
// pick up when empty-handed on a pickup, put down when carrying and not on a
// teleporter pad.
func (d *Manager) avatarProcess(e *entity.Entity) error {
	if e.Inventory() == nil {
		if len(d.objects.At(entity.GroupPickups, e.Coord())) > 0 {
			d.gui.SwitchContext(ContextPickUp)
		}
		return nil
	}
	if _, onPad := d.TeleporterAt(e.Coord()); !onPad {
		d.gui.SwitchContext(ContextPutDown)
	}
	return nil
}

// MoveTo redirects the avatar to target. The queue is reset; a hop already
// in flight is kept and the new path is planned by a Datagram queued behind
// it, once the avatar stands on the hop's cell. An unreachable target leaves
// the avatar where the reset left it.
//
// Precondition: target must be a Floor cell.
// Postcondition: Returns an error wrapping ErrNotFloor otherwise; reports
// whether a path or a deferred plan was queued.
func (d *Manager) MoveTo(target grid.Cell) (bool, error) {
	if !d.grid.IsFloor(target) {
		return false, fmt.Errorf("move to %s: %w", target, ErrNotFloor)
	}
	a := d.avatar
	if !a.ResetQueue() {
		a.Command(entity.Datagram{Callback: d.moveGuarded, Arg: target})
		return true, nil
	}
	return d.planMove(target), nil
}

// moveGuarded is the deferred half of MoveTo, run after the kept hop.
func (d *Manager) moveGuarded(arg any) error {
	target, ok := arg.(grid.Cell)
	if !ok {
		return fmt.Errorf("deferred move: unexpected argument %T", arg)
	}
	d.planMove(target)
	return nil
}

func (d *Manager) planMove(target grid.Cell) bool {
	a := d.avatar
	steps, _, ok := d.FindPath(a.Coord(), path.At(target))
	if !ok {
		d.logger.Debug("avatar target unreachable",
			observability.Cell("from", a.Coord()),
			observability.Cell("target", target),
		)
		return false
	}
	d.gui.SwitchContext(ContextDefault)
	a.Command(entity.Path{Steps: steps})
	return true
}

// PickUp moves the first pickup on the avatar's cell into its inventory. The
// item leaves both the pickups group and the drawable collection until put down.
//
// Postcondition: Returns ErrAlreadyHolding or ErrNothingToPickUp when no
// transfer is possible.
func (d *Manager) PickUp() error {
	a := d.avatar
	if a.Inventory() != nil {
		return ErrAlreadyHolding
	}
	items := d.objects.At(entity.GroupPickups, a.Coord())
	if len(items) == 0 {
		return fmt.Errorf("at %s: %w", a.Coord(), ErrNothingToPickUp)
	}
	item := items[0]
	a.SetInventory(item)
	d.objects.Delete(entity.GroupPickups, item)
	d.gui.SwitchContext(ContextDefault)
	d.logger.Info("picked up", zap.String("item", item.ID()), observability.Cell("at", a.Coord()))
	return nil
}

// PutDown places the carried item on the avatar's cell and returns it to the
// pickups group.
//
// Postcondition: Returns ErrNothingHeld when empty-handed and ErrOnTeleporter
// when standing on a pad.
func (d *Manager) PutDown() error {
	a := d.avatar
	item := a.Inventory()
	if item == nil {
		return ErrNothingHeld
	}
	if _, onPad := d.TeleporterAt(a.Coord()); onPad {
		return fmt.Errorf("at %s: %w", a.Coord(), ErrOnTeleporter)
	}
	item.SyncCell(d, a.Coord())
	d.objects.Add(entity.GroupPickups, item)
	a.SetInventory(nil)
	d.gui.SwitchContext(ContextDefault)
	d.logger.Info("put down", zap.String("item", item.ID()), observability.Cell("at", a.Coord()))
	if d.CheckWin() {
		d.logger.Info("win condition met", observability.Cell("at", a.Coord()))
	}
	return nil
}
