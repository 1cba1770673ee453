// Package sim drives a world headlessly: a fixed-rate tick loop and an
// optional autopilot standing in for the player.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/floorsim/internal/config"
)

// ErrTickLimit is returned by Run when max_ticks elapse without a win.
var ErrTickLimit = errors.New("tick limit reached")

// World is the part of the domain the loop steps.
type World interface {
	Update(elapsed float64) error
	CheckWin() bool
}

// Pilot issues commands ahead of each tick.
type Pilot interface {
	Drive() error
}

// Loop steps a World at a fixed rate. Every tick advances the world by the
// same elapsed time regardless of wall-clock jitter, so a seeded run is
// reproducible.
//
// Loop is not safe for concurrent use.
type Loop struct {
	world    World
	pilot    Pilot
	interval time.Duration
	elapsed  float64
	maxTicks int
	logger   *zap.Logger

	ticks int
	won   bool
}

// NewLoop returns a loop stepping world at cfg.TickRate ticks per second.
// pilot may be nil.
//
// Precondition: world and logger must be non-nil; cfg.TickRate must be > 0.
func NewLoop(world World, pilot Pilot, cfg config.SimConfig, logger *zap.Logger) *Loop {
	if world == nil {
		panic("sim.NewLoop: world must not be nil")
	}
	if logger == nil {
		panic("sim.NewLoop: logger must not be nil")
	}
	if cfg.TickRate <= 0 {
		panic("sim.NewLoop: tick rate must be > 0")
	}
	return &Loop{
		world:    world,
		pilot:    pilot,
		interval: time.Second / time.Duration(cfg.TickRate),
		elapsed:  1 / float64(cfg.TickRate),
		maxTicks: cfg.MaxTicks,
		logger:   logger,
	}
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() int { return l.ticks }

// Won reports whether the last tick ended with the win condition met.
func (l *Loop) Won() bool { return l.won }

// Step runs one tick: the pilot drives, the world updates, the win condition
// is checked.
//
// Postcondition: Returns whether the world is won, or the first error from
// the pilot or the world.
func (l *Loop) Step() (bool, error) {
	if l.pilot != nil {
		if err := l.pilot.Drive(); err != nil {
			return false, fmt.Errorf("tick %d: pilot: %w", l.ticks+1, err)
		}
	}
	if err := l.world.Update(l.elapsed); err != nil {
		return false, fmt.Errorf("tick %d: %w", l.ticks+1, err)
	}
	l.ticks++
	l.won = l.world.CheckWin()
	l.logger.Debug("tick", zap.Int("tick", l.ticks), zap.Bool("won", l.won))
	return l.won, nil
}

// Run steps the world once per tick interval until it is won, the tick limit
// is reached, a step fails, or ctx is cancelled.
//
// Postcondition: Returns nil on a win or cancellation, ErrTickLimit when the
// limit is reached first, or the failing step's error.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	return l.run(ctx, ticker.C)
}

// RunUnpaced is Run without the ticker: ticks execute back to back with the
// same fixed elapsed time.
func (l *Loop) RunUnpaced(ctx context.Context) error {
	return l.run(ctx, nil)
}

func (l *Loop) run(ctx context.Context, tick <-chan time.Time) error {
	start := time.Now()
	l.logger.Info("simulation started",
		zap.Duration("interval", l.interval),
		zap.Int("max_ticks", l.maxTicks),
		zap.Bool("paced", tick != nil),
		zap.Bool("pilot", l.pilot != nil),
	)
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return l.cancelled(start)
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return l.cancelled(start)
		}

		won, err := l.Step()
		if err != nil {
			l.logger.Error("simulation failed", zap.Int("ticks", l.ticks), zap.Error(err))
			return err
		}
		if won {
			l.logger.Info("simulation won",
				zap.Int("ticks", l.ticks),
				zap.Float64("sim_seconds", float64(l.ticks)*l.elapsed),
				zap.Duration("wall", time.Since(start)),
			)
			return nil
		}
		if l.maxTicks > 0 && l.ticks >= l.maxTicks {
			l.logger.Warn("simulation hit tick limit", zap.Int("ticks", l.ticks))
			return fmt.Errorf("after %d ticks: %w", l.ticks, ErrTickLimit)
		}
	}
}

func (l *Loop) cancelled(start time.Time) error {
	l.logger.Info("simulation cancelled",
		zap.Int("ticks", l.ticks),
		zap.Duration("wall", time.Since(start)),
	)
	return nil
}
