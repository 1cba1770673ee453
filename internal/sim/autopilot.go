package sim

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/floorsim/internal/game/domain"
	"github.com/cory-johannsen/floorsim/internal/game/entity"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
	"github.com/cory-johannsen/floorsim/internal/observability"
)

// ErrStuck is returned by Drive when a pickup or the pile cannot be reached.
var ErrStuck = errors.New("autopilot stuck")

// Autopilot plays the avatar through the same controls the GUI uses. It picks
// a pile cell at the first reachable pickup, then ferries every other pickup
// onto it one at a time.
type Autopilot struct {
	d      *domain.Manager
	logger *zap.Logger

	pile    grid.Cell
	hasPile bool
}

// NewAutopilot returns an Autopilot for d.
//
// Precondition: d and logger must be non-nil.
func NewAutopilot(d *domain.Manager, logger *zap.Logger) *Autopilot {
	if d == nil {
		panic("sim.NewAutopilot: domain must not be nil")
	}
	if logger == nil {
		panic("sim.NewAutopilot: logger must not be nil")
	}
	return &Autopilot{d: d, logger: logger}
}

// Pile returns the gathering cell, once chosen.
func (p *Autopilot) Pile() (grid.Cell, bool) { return p.pile, p.hasPile }

// Drive implements Pilot. It acts only while the avatar is idle: put down at
// the pile, pick up at a stray pickup, otherwise walk to the next of those.
//
// Postcondition: Returns an error wrapping ErrStuck when the next destination
// is unreachable.
func (p *Autopilot) Drive() error {
	a := p.d.Avatar()
	if a.Queue().Len() > 0 {
		return nil
	}
	if !p.hasPile {
		pickups := p.d.Objects().Objects(entity.GroupPickups)
		if len(pickups) == 0 {
			return nil
		}
		_, first, ok := p.d.FindNearest(a.Coord(), pickups)
		if !ok {
			return fmt.Errorf("no reachable pickup from %s: %w", a.Coord(), ErrStuck)
		}
		p.pile, p.hasPile = first.Coord(), true
		p.logger.Info("autopilot chose pile", observability.Cell("pile", p.pile))
	}

	if a.Inventory() != nil {
		if a.Coord() == p.pile {
			return p.d.PutDown()
		}
		return p.walk(p.pile)
	}

	var strays []*entity.Entity
	for _, item := range p.d.Objects().Objects(entity.GroupPickups) {
		if item.Coord() != p.pile {
			strays = append(strays, item)
		}
	}
	if len(strays) == 0 {
		return nil
	}
	for _, item := range strays {
		if item.Coord() == a.Coord() {
			return p.d.PickUp()
		}
	}
	_, next, ok := p.d.FindNearest(a.Coord(), strays)
	if !ok {
		return fmt.Errorf("no reachable stray pickup from %s: %w", a.Coord(), ErrStuck)
	}
	return p.walk(next.Coord())
}

func (p *Autopilot) walk(target grid.Cell) error {
	queued, err := p.d.MoveTo(target)
	if err != nil {
		return err
	}
	if !queued {
		return fmt.Errorf("%s unreachable: %w", target, ErrStuck)
	}
	p.logger.Debug("autopilot walking",
		observability.Cell("from", p.d.Avatar().Coord()),
		observability.Cell("to", target),
	)
	return nil
}
