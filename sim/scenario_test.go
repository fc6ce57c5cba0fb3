// sim/scenario_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"slices"
	"testing"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/rand"
)

func TestScenarioConfigValidate(t *testing.T) {
	if err := DefaultScenarioConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	for _, c := range []struct {
		name string
		mod  func(*ScenarioConfig)
	}{
		{"zero width", func(c *ScenarioConfig) { c.Width = 0 }},
		{"buoy margin too big", func(c *ScenarioConfig) { c.BuoyMargin = 400 }},
		{"negative edge clamp", func(c *ScenarioConfig) { c.EdgeClamp = -1 }},
		{"spawn margin too big", func(c *ScenarioConfig) { c.SpawnMargin = 351 }},
		{"separation inverted", func(c *ScenarioConfig) { c.MinSeparation, c.MaxSeparation = 400, 300 }},
		{"negative obstacles", func(c *ScenarioConfig) { c.Obstacles = -2 }},
		{"bad obstacle radius", func(c *ScenarioConfig) { c.Obstacles, c.MinObstacleRadius = 3, 0 }},
		{"short route", func(c *ScenarioConfig) { c.Route.NumPoints = 1 }},
	} {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultScenarioConfig()
			c.mod(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidScenarioConfig) {
				t.Errorf("got %v, expected ErrInvalidScenarioConfig", err)
			}
		})
	}
}

func TestGenerateScenarioDeterministic(t *testing.T) {
	cfg := DefaultScenarioConfig()
	cfg.Obstacles = 3

	a := GenerateScenario(rand.Make(1234), cfg, nil)
	b := GenerateScenario(rand.Make(1234), cfg, nav.NewRouteCache(4))
	if a.Buoys != b.Buoys || a.Spawn != b.Spawn || a.SpawnHeading != b.SpawnHeading || a.SpawnKind != b.SpawnKind {
		t.Errorf("same seed gave different scenarios: %+v / %+v", a, b)
	}
	if !slices.Equal(a.Obstacles, b.Obstacles) || !slices.Equal(a.Waypoints, b.Waypoints) {
		t.Errorf("same seed gave different obstacles or waypoints")
	}

	c := GenerateScenario(rand.Make(4321), cfg, nil)
	if a.Buoys == c.Buoys && a.Spawn == c.Spawn {
		t.Errorf("different seeds gave the same scenario")
	}
}

func TestGenerateScenarioPlacement(t *testing.T) {
	cfg := DefaultScenarioConfig()
	cfg.Obstacles = 2
	cache := nav.NewRouteCache(0)

	inset := func(margin float64) math.Extent2D {
		return math.Extent2D{P0: math.V2(margin, margin), P1: math.V2(cfg.Width-margin, cfg.Height-margin)}
	}
	buoyBox, clampBox, spawnBox := inset(cfg.BuoyMargin), inset(cfg.EdgeClamp), inset(cfg.SpawnMargin)
	corners := []math.Vector2{spawnBox.P0, spawnBox.P1, math.V2(spawnBox.P0.X, spawnBox.P1.Y),
		math.V2(spawnBox.P1.X, spawnBox.P0.Y)}

	var kinds [2]int
	r := rand.Make(7)
	for range 500 {
		sc := GenerateScenario(r, cfg, cache)

		if !buoyBox.Inside(sc.Buoys[0]) {
			t.Errorf("first buoy %v outside %v", sc.Buoys[0], buoyBox)
		}
		if !clampBox.Inside(sc.Buoys[1]) {
			t.Errorf("second buoy %v outside %v", sc.Buoys[1], clampBox)
		}
		if d := sc.Buoys[0].Distance(sc.Buoys[1]); d > cfg.MaxSeparation+1e-9 {
			t.Errorf("buoys %f apart", d)
		}

		if len(sc.Obstacles) != 2+cfg.Obstacles {
			t.Fatalf("%d obstacles, expected %d", len(sc.Obstacles), 2+cfg.Obstacles)
		}
		for i, o := range sc.Obstacles {
			if i < 2 {
				if !o.IsBuoy || o.Position != sc.Buoys[i] || o.Radius != cfg.BuoyRadius {
					t.Errorf("buoy obstacle %d: %+v", i, o)
				}
			} else if o.IsBuoy || o.Radius < cfg.MinObstacleRadius || o.Radius > cfg.MaxObstacleRadius ||
				!clampBox.Inside(o.Position) {
				t.Errorf("obstacle %d: %+v", i, o)
			}
		}

		if len(sc.Waypoints) != cfg.Route.NumPoints {
			t.Errorf("%d waypoints", len(sc.Waypoints))
		}
		var sum math.Vector2
		for _, p := range sc.Waypoints {
			sum = sum.Add(p)
		}
		if c := sum.Scale(1 / float64(len(sc.Waypoints))); c.Distance(math.Mid(sc.Buoys[0], sc.Buoys[1])) > 1e-6 {
			t.Errorf("route centered at %v, not between the buoys", c)
		}

		if !spawnBox.Inside(sc.Spawn) {
			t.Errorf("spawn %v outside %v", sc.Spawn, spawnBox)
		}
		if sc.SpawnKind == SpawnCorner && !slices.Contains(corners, sc.Spawn) {
			t.Errorf("corner spawn at %v", sc.Spawn)
		}
		if sc.SpawnHeading < 0 || sc.SpawnHeading > 2*math.Pi {
			t.Errorf("spawn heading %f", sc.SpawnHeading)
		}
		kinds[sc.SpawnKind]++
	}

	if kinds[SpawnCorner] == 0 || kinds[SpawnRandom] == 0 {
		t.Errorf("spawn kinds not both generated: %v", kinds)
	}
}
