// Package main provides the headless floor simulation binary: it builds a
// world from a YAML map and steps it at a fixed tick rate, optionally with
// an autopilot playing the avatar.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/floorsim/internal/config"
	"github.com/cory-johannsen/floorsim/internal/game/dice"
	"github.com/cory-johannsen/floorsim/internal/game/domain"
	"github.com/cory-johannsen/floorsim/internal/game/grid"
	"github.com/cory-johannsen/floorsim/internal/observability"
	"github.com/cory-johannsen/floorsim/internal/scripting"
	"github.com/cory-johannsen/floorsim/internal/server"
	"github.com/cory-johannsen/floorsim/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	autopilot := flag.Bool("autopilot", false, "let the autopilot gather the pickups")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.World.Seed == 0 {
		src = dice.NewCryptoSource()
	} else {
		src = dice.NewSeededSource(cfg.World.Seed)
	}

	mapStart := time.Now()
	m, err := grid.LoadMapFromFile(cfg.World.MapFile)
	if err != nil {
		logger.Fatal("loading map", zap.String("file", cfg.World.MapFile), zap.Error(err))
	}
	logger.Info("map loaded",
		zap.String("name", m.Name),
		zap.Int("width", m.Grid.Width()),
		zap.Int("height", m.Grid.Height()),
		zap.Int("floors", m.Grid.FloorCount()),
		zap.Duration("elapsed", time.Since(mapStart)),
	)

	opts := domain.Options{
		World:  cfg.World,
		View:   cfg.View,
		Source: src,
		Logger: logger.Named("domain"),
	}

	// Initialise scripting engine
	if cfg.Sim.ScriptDir != "" {
		scriptMgr := scripting.NewManager(src, logger.Named("scripting"))
		if err := scriptMgr.LoadDir(cfg.Sim.ScriptDir, cfg.Sim.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading world scripts", zap.String("dir", cfg.Sim.ScriptDir), zap.Error(err))
		}
		defer scriptMgr.Close()
		opts.Hooks = scriptMgr
		logger.Info("scripting engine initialized",
			zap.Bool(scripting.HookPopulation, scriptMgr.HasHook(scripting.HookPopulation)),
			zap.Bool(scripting.HookRespawnFloor, scriptMgr.HasHook(scripting.HookRespawnFloor)),
		)
	}

	world, err := domain.NewManager(m, opts)
	if err != nil {
		logger.Fatal("building world", zap.Error(err))
	}

	var pilot sim.Pilot
	if *autopilot {
		pilot = sim.NewAutopilot(world, logger.Named("autopilot"))
	}
	loop := sim.NewLoop(world, pilot, cfg.Sim, logger.Named("sim"))

	// Wire lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulation", &server.FuncService{
		StartFn: func() error {
			err := loop.Run(ctx)
			if errors.Is(err, sim.ErrTickLimit) {
				return nil
			}
			return err
		},
		StopFn: cancel,
	})

	logger.Info("floor simulation initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("tick_rate", cfg.Sim.TickRate),
		zap.Bool("autopilot", *autopilot),
		zap.Uint64("seed", cfg.World.Seed),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("simulation error", zap.Error(err))
	}
	logger.Info("simulation finished",
		zap.Int("ticks", loop.Ticks()),
		zap.Bool("won", loop.Won()),
	)
}
