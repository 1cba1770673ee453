// Package config provides Viper-based configuration loading for the floor simulation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PopulationConfig holds the per-floor entity counts used when no population
// script overrides them.
type PopulationConfig struct {
	Generic int `mapstructure:"generic"`
	Pickups int `mapstructure:"pickups"`
	Agents  int `mapstructure:"agents"`
}

// WorldConfig holds world construction settings.
type WorldConfig struct {
	// MapFile is the path to the YAML map.
	MapFile string `mapstructure:"map_file"`
	// Seed selects the random source: 0 uses crypto/rand, anything else is deterministic.
	Seed uint64 `mapstructure:"seed"`
	// PlacementAttempts caps rejection sampling for a free floor cell.
	PlacementAttempts int              `mapstructure:"placement_attempts"`
	Population        PopulationConfig `mapstructure:"population"`
	// AgentSpeed and AvatarSpeed are in map pixels per second.
	AgentSpeed  float64 `mapstructure:"agent_speed"`
	AvatarSpeed float64 `mapstructure:"avatar_speed"`
	// AnimationInterval is the seconds between sprite frames.
	AnimationInterval float64 `mapstructure:"animation_interval"`
	// ZoomLevels are the camera multipliers, strictly increasing.
	ZoomLevels []float64 `mapstructure:"zoom_levels"`
	// ZoomIndex is the starting index into ZoomLevels.
	ZoomIndex int `mapstructure:"zoom_index"`
}

// ViewConfig holds the size of the surface the domain is drawn on.
type ViewConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// SimConfig holds headless simulation loop settings.
type SimConfig struct {
	// TickRate is the number of simulation steps per second.
	TickRate int `mapstructure:"tick_rate"`
	// MaxTicks stops the loop after this many steps; 0 runs until won or cancelled.
	MaxTicks int `mapstructure:"max_ticks"`
	// ScriptDir is an optional directory of Lua world hooks.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit caps Lua opcodes per hook call; 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	World   WorldConfig   `mapstructure:"world"`
	View    ViewConfig    `mapstructure:"view"`
	Sim     SimConfig     `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWorld(c.World); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateView(c.View); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if w.MapFile == "" {
		errs = append(errs, "world.map_file must not be empty")
	}
	if w.PlacementAttempts < 1 {
		errs = append(errs, fmt.Sprintf("world.placement_attempts must be >= 1, got %d", w.PlacementAttempts))
	}
	p := w.Population
	if p.Generic < 0 || p.Pickups < 0 || p.Agents < 0 {
		errs = append(errs, fmt.Sprintf("world.population counts must be >= 0, got generic=%d pickups=%d agents=%d",
			p.Generic, p.Pickups, p.Agents))
	}
	if w.AgentSpeed <= 0 {
		errs = append(errs, fmt.Sprintf("world.agent_speed must be > 0, got %g", w.AgentSpeed))
	}
	if w.AvatarSpeed <= 0 {
		errs = append(errs, fmt.Sprintf("world.avatar_speed must be > 0, got %g", w.AvatarSpeed))
	}
	if w.AnimationInterval < 0 {
		errs = append(errs, fmt.Sprintf("world.animation_interval must be >= 0, got %g", w.AnimationInterval))
	}
	if err := validateZoom(w.ZoomLevels, w.ZoomIndex); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateZoom(levels []float64, index int) error {
	if len(levels) == 0 {
		return errors.New("world.zoom_levels must not be empty")
	}
	for i, z := range levels {
		if z <= 0 {
			return fmt.Errorf("world.zoom_levels[%d] must be > 0, got %g", i, z)
		}
		if i > 0 && z <= levels[i-1] {
			return fmt.Errorf("world.zoom_levels must be strictly increasing, got %v", levels)
		}
	}
	if index < 0 || index >= len(levels) {
		return fmt.Errorf("world.zoom_index must be within [0, %d), got %d", len(levels), index)
	}
	return nil
}

func validateView(v ViewConfig) error {
	if v.Width < 1 || v.Height < 1 {
		return fmt.Errorf("view.width and view.height must be >= 1, got %dx%d", v.Width, v.Height)
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.TickRate < 1 {
		errs = append(errs, fmt.Sprintf("sim.tick_rate must be >= 1, got %d", s.TickRate))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, fmt.Sprintf("sim.max_ticks must be >= 0, got %d", s.MaxTicks))
	}
	if s.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("sim.script_instruction_limit must be >= 0, got %d", s.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FLOORSIM_ prefix
	v.SetEnvPrefix("FLOORSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) { setDefaults(v) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("world.map_file", "content/maps/domain.yaml")
	v.SetDefault("world.seed", 0)
	v.SetDefault("world.placement_attempts", 10000)
	v.SetDefault("world.population.generic", 15)
	v.SetDefault("world.population.pickups", 1)
	v.SetDefault("world.population.agents", 8)
	v.SetDefault("world.agent_speed", 64.0)
	v.SetDefault("world.avatar_speed", 64.0)
	v.SetDefault("world.animation_interval", 0.2)
	v.SetDefault("world.zoom_levels", []float64{2, 4, 8})
	v.SetDefault("world.zoom_index", 0)

	v.SetDefault("view.width", 800)
	v.SetDefault("view.height", 600)

	v.SetDefault("sim.tick_rate", 60)
	v.SetDefault("sim.max_ticks", 0)
	v.SetDefault("sim.script_dir", "")
	v.SetDefault("sim.script_instruction_limit", 0)
}
