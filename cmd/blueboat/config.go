// cmd/blueboat/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blueboat-sim/blueboat/log"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/sim"

	"github.com/spf13/viper"
)

// Config holds all of the settings that can come from the config file,
// BLUEBOAT_* environment variables, or command-line flags.
type Config struct {
	LogLevel string  `mapstructure:"log_level"`
	LogDir   string  `mapstructure:"log_dir"`
	Seed     int64   `mapstructure:"seed"` // 0: pick one from the clock
	DT       float64 `mapstructure:"dt"`
	MaxTicks int     `mapstructure:"max_ticks"`

	Boat     nav.Params         `mapstructure:"boat"`
	Scenario sim.ScenarioConfig `mapstructure:"scenario"`
	Batch    BatchSettings      `mapstructure:"batch"`
}

type BatchSettings struct {
	Count       int `mapstructure:"count"`
	Concurrency int `mapstructure:"concurrency"`
}

var ErrInvalidConfig = errors.New("Invalid configuration")

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
	v.SetDefault("seed", 0)
	v.SetDefault("dt", sim.DefaultDT)
	v.SetDefault("max_ticks", sim.DefaultMaxTicks)

	p := nav.DefaultParams()
	v.SetDefault("boat.max_speed", p.MaxSpeed)
	v.SetDefault("boat.turn_rate", p.TurnRate)
	v.SetDefault("boat.lookahead_dist", p.LookaheadDist)
	v.SetDefault("boat.sensor_range", p.SensorRange)
	v.SetDefault("boat.sensor_angle", p.SensorAngle)

	sc := sim.DefaultScenarioConfig()
	v.SetDefault("scenario.width", sc.Width)
	v.SetDefault("scenario.height", sc.Height)
	v.SetDefault("scenario.buoy_margin", sc.BuoyMargin)
	v.SetDefault("scenario.min_separation", sc.MinSeparation)
	v.SetDefault("scenario.max_separation", sc.MaxSeparation)
	v.SetDefault("scenario.edge_clamp", sc.EdgeClamp)
	v.SetDefault("scenario.buoy_radius", sc.BuoyRadius)
	v.SetDefault("scenario.spawn_margin", sc.SpawnMargin)
	v.SetDefault("scenario.obstacles", sc.Obstacles)
	v.SetDefault("scenario.min_obstacle_radius", sc.MinObstacleRadius)
	v.SetDefault("scenario.max_obstacle_radius", sc.MaxObstacleRadius)
	v.SetDefault("scenario.route.num_points", sc.Route.NumPoints)
	v.SetDefault("scenario.route.margin", sc.Route.Margin)

	v.SetDefault("batch.count", 100)
	v.SetDefault("batch.concurrency", 0)
}

// loadConfig reads the config file, if any, and the environment. If path
// is empty, blueboat.{yaml,json,toml} is looked for in the current
// directory and then in the user's config directory; it's fine if there
// isn't one.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blueboat")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "BlueBoat"))
		}
	}

	v.SetEnvPrefix("BLUEBOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.DT <= 0 {
		return fmt.Errorf("dt %g: %w", c.DT, ErrInvalidConfig)
	}
	if c.MaxTicks <= 0 {
		return fmt.Errorf("max_ticks %d: %w", c.MaxTicks, ErrInvalidConfig)
	}
	if err := c.Boat.Validate(); err != nil {
		return err
	}
	return c.Scenario.Validate()
}

// BatchConfig returns the configuration for a batch of missions.
func (c Config) BatchConfig() sim.BatchConfig {
	return sim.BatchConfig{
		Count:       c.Batch.Count,
		Concurrency: c.Batch.Concurrency,
		BaseSeed:    c.Seed,
		DT:          c.DT,
		MaxTicks:    c.MaxTicks,
		Boat:        c.Boat,
		Scenario:    c.Scenario,
	}
}
