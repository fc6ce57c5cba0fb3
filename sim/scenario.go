// sim/scenario.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/rand"
)

// ScenarioConfig describes the window that scenarios are generated in and
// how buoys, obstacles, and the boat are placed within it. All distances
// are in display units.
type ScenarioConfig struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`

	// The first buoy is placed at least this far from every edge.
	BuoyMargin float64 `json:"buoy_margin" mapstructure:"buoy_margin"`
	// The second buoy is placed between MinSeparation and MaxSeparation
	// from the first, then clamped to lie at least EdgeClamp from every
	// edge.
	MinSeparation float64 `json:"min_separation" mapstructure:"min_separation"`
	MaxSeparation float64 `json:"max_separation" mapstructure:"max_separation"`
	EdgeClamp     float64 `json:"edge_clamp" mapstructure:"edge_clamp"`
	BuoyRadius    float64 `json:"buoy_radius" mapstructure:"buoy_radius"`

	// The boat spawns at least SpawnMargin from every edge.
	SpawnMargin float64 `json:"spawn_margin" mapstructure:"spawn_margin"`

	// Additional non-buoy obstacles scattered around the window.
	Obstacles         int     `json:"obstacles" mapstructure:"obstacles"`
	MinObstacleRadius float64 `json:"min_obstacle_radius" mapstructure:"min_obstacle_radius"`
	MaxObstacleRadius float64 `json:"max_obstacle_radius" mapstructure:"max_obstacle_radius"`

	Route nav.LemniscateOptions `json:"route" mapstructure:"route"`
}

func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Width:             1000,
		Height:            700,
		BuoyMargin:        180,
		MinSeparation:     250,
		MaxSeparation:     450,
		EdgeClamp:         100,
		BuoyRadius:        15,
		SpawnMargin:       50,
		MinObstacleRadius: 20,
		MaxObstacleRadius: 50,
		Route:             nav.DefaultLemniscateOptions(),
	}
}

func (c ScenarioConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("window %gx%g: %w", c.Width, c.Height, ErrInvalidScenarioConfig)
	case c.BuoyMargin < 0 || 2*c.BuoyMargin > math.Min(c.Width, c.Height):
		return fmt.Errorf("buoy_margin %g doesn't fit in the window: %w", c.BuoyMargin, ErrInvalidScenarioConfig)
	case c.EdgeClamp < 0 || 2*c.EdgeClamp > math.Min(c.Width, c.Height):
		return fmt.Errorf("edge_clamp %g doesn't fit in the window: %w", c.EdgeClamp, ErrInvalidScenarioConfig)
	case c.SpawnMargin < 0 || 2*c.SpawnMargin > math.Min(c.Width, c.Height):
		return fmt.Errorf("spawn_margin %g doesn't fit in the window: %w", c.SpawnMargin, ErrInvalidScenarioConfig)
	case c.MinSeparation <= 0 || c.MaxSeparation < c.MinSeparation:
		return fmt.Errorf("buoy separation [%g, %g]: %w", c.MinSeparation, c.MaxSeparation, ErrInvalidScenarioConfig)
	case c.BuoyRadius < 0:
		return fmt.Errorf("buoy_radius %g: %w", c.BuoyRadius, ErrInvalidScenarioConfig)
	case c.Obstacles < 0:
		return fmt.Errorf("obstacles %d: %w", c.Obstacles, ErrInvalidScenarioConfig)
	case c.Obstacles > 0 && (c.MinObstacleRadius <= 0 || c.MaxObstacleRadius < c.MinObstacleRadius):
		return fmt.Errorf("obstacle radius [%g, %g]: %w", c.MinObstacleRadius, c.MaxObstacleRadius,
			ErrInvalidScenarioConfig)
	case c.Route.NumPoints < 2:
		return fmt.Errorf("route num_points %d: %w", c.Route.NumPoints, ErrInvalidScenarioConfig)
	}
	return nil
}

// Bounds returns the extent of the window.
func (c ScenarioConfig) Bounds() math.Extent2D {
	return math.Extent2D{P1: math.V2(c.Width, c.Height)}
}

type SpawnKind int

const (
	SpawnCorner SpawnKind = iota
	SpawnRandom
)

func (s SpawnKind) String() string {
	return []string{"corner", "random"}[s]
}

// Scenario is a generated patrol mission: two buoys, the route between
// them, and where the boat starts.
type Scenario struct {
	Buoys     [2]math.Vector2 `json:"buoys"`
	Obstacles []nav.Obstacle  `json:"obstacles"`
	Waypoints []math.Vector2  `json:"waypoints"`

	Spawn        math.Vector2 `json:"spawn"`
	SpawnKind    SpawnKind    `json:"spawn_kind"`
	SpawnHeading float64      `json:"spawn_heading"`

	Config ScenarioConfig `json:"config"`
}

// implements slog.LogValuer
func (s Scenario) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("buoy1", s.Buoys[0].String()),
		slog.String("buoy2", s.Buoys[1].String()),
		slog.Int("obstacles", len(s.Obstacles)),
		slog.Int("waypoints", len(s.Waypoints)),
		slog.String("spawn", s.Spawn.String()),
		slog.String("spawn_kind", s.SpawnKind.String()),
		slog.Float64("spawn_heading", s.SpawnHeading))
}

// GenerateScenario draws a new scenario from r. The configuration is
// assumed to be valid. cache may be nil.
func GenerateScenario(r *rand.Rand, cfg ScenarioConfig, cache *nav.RouteCache) Scenario {
	sc := Scenario{Config: cfg}

	// Buoys
	b1 := math.V2(
		float64(r.IntRange(int(cfg.BuoyMargin), int(cfg.Width-cfg.BuoyMargin))),
		float64(r.IntRange(int(cfg.BuoyMargin), int(cfg.Height-cfg.BuoyMargin))))

	angle := r.Uniform(0, 2*math.Pi)
	dist := r.Uniform(cfg.MinSeparation, cfg.MaxSeparation)
	b2 := b1.Add(math.Unit(angle).Scale(dist))
	b2.X = math.Clamp(b2.X, cfg.EdgeClamp, cfg.Width-cfg.EdgeClamp)
	b2.Y = math.Clamp(b2.Y, cfg.EdgeClamp, cfg.Height-cfg.EdgeClamp)

	sc.Buoys = [2]math.Vector2{b1, b2}
	sc.Obstacles = []nav.Obstacle{
		{Position: b1, Radius: cfg.BuoyRadius, IsBuoy: true},
		{Position: b2, Radius: cfg.BuoyRadius, IsBuoy: true},
	}
	for range cfg.Obstacles {
		sc.Obstacles = append(sc.Obstacles, nav.Obstacle{
			Position: math.V2(
				float64(r.IntRange(int(cfg.EdgeClamp), int(cfg.Width-cfg.EdgeClamp))),
				float64(r.IntRange(int(cfg.EdgeClamp), int(cfg.Height-cfg.EdgeClamp)))),
			Radius: r.Uniform(cfg.MinObstacleRadius, cfg.MaxObstacleRadius),
		})
	}

	// Route
	sc.Waypoints = cache.Lemniscate(b1, b2, cfg.Route)

	// Boat
	sc.SpawnKind = rand.Sample(r, SpawnCorner, SpawnRandom)
	lo := math.V2(cfg.SpawnMargin, cfg.SpawnMargin)
	hi := math.V2(cfg.Width-cfg.SpawnMargin, cfg.Height-cfg.SpawnMargin)
	if sc.SpawnKind == SpawnCorner {
		sc.Spawn = math.V2(rand.Sample(r, lo.X, hi.X), rand.Sample(r, lo.Y, hi.Y))
	} else {
		sc.Spawn = math.V2(float64(r.IntRange(int(lo.X), int(hi.X))), float64(r.IntRange(int(lo.Y), int(hi.Y))))
	}
	sc.SpawnHeading = r.Uniform(0, 2*math.Pi)

	return sc
}
