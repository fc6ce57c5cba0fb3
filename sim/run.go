// sim/run.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
)

const (
	DefaultDT       = 1. / 60
	DefaultMaxTicks = 20000

	// How often Run checks for cancellation.
	cancelCheckTicks = 256
)

// Result summarizes a mission run.
type Result struct {
	Seed      int64     `json:"seed"`
	Ticks     int       `json:"ticks"`
	Elapsed   float64   `json:"elapsed"`
	Completed bool      `json:"completed"`
	SpawnKind SpawnKind `json:"spawn_kind"`
	// Distance travelled, in display units.
	Distance float64 `json:"distance"`
	// Closest approach to any obstacle's surface; negative if the boat
	// entered one and zero if there are no obstacles.
	MinClearance float64 `json:"min_clearance"`
	// Number of ticks spent in each state.
	StateTicks map[nav.BoatState]int `json:"state_ticks"`
	Err        string                `json:"error,omitempty"`
}

func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("seed", r.Seed),
		slog.Int("ticks", r.Ticks),
		slog.Float64("elapsed", r.Elapsed),
		slog.Bool("completed", r.Completed),
		slog.Float64("distance", r.Distance),
		slog.Float64("min_clearance", r.MinClearance),
		slog.Int("avoiding_ticks", r.StateTicks[nav.StateAvoiding]))
}

// missionStats accumulates per-tick statistics.
type missionStats struct {
	ticks        int
	distance     float64
	minClearance float64
	stateTicks   map[nav.BoatState]int
	last         math.Vector2
}

func makeMissionStats(start math.Vector2) missionStats {
	return missionStats{
		minClearance: math.Inf(1),
		stateTicks:   make(map[nav.BoatState]int),
		last:         start,
	}
}

func (s *missionStats) clearance() float64 {
	if math.IsInf(s.minClearance) {
		return 0
	}
	return s.minClearance
}

func (s *missionStats) add(pos math.Vector2, state nav.BoatState, obstacles []nav.Obstacle) {
	s.ticks++
	s.distance += pos.Distance(s.last)
	s.last = pos
	s.stateTicks[state]++
	for _, o := range obstacles {
		s.minClearance = math.Min(s.minClearance, pos.Distance(o.Position)-o.Radius)
	}
}

// Run steps m with a fixed time step until it completes, maxTicks steps
// have been taken, or ctx is canceled. If rec is non-nil, every tick is
// recorded to it. The returned Result is valid even if an error is
// returned.
func Run(ctx context.Context, m *Mission, dt float64, maxTicks int, rec *Recorder) (Result, error) {
	if dt <= 0 {
		return Result{}, fmt.Errorf("dt %g: %w", dt, ErrInvalidTimeStep)
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}

	stats := makeMissionStats(m.Boat().Position)
	result := func() Result {
		return Result{
			Ticks:        m.Ticks(),
			Elapsed:      m.Elapsed(),
			Completed:    m.Completed(),
			SpawnKind:    m.Scenario.SpawnKind,
			Distance:     stats.distance,
			MinClearance: stats.clearance(),
			StateTicks:   stats.stateTicks,
		}
	}

	for i := 0; !m.Completed(); i++ {
		if i == maxTicks {
			return result(), fmt.Errorf("%d ticks: %w", maxTicks, ErrTickLimit)
		}
		if i%cancelCheckTicks == 0 {
			if err := ctx.Err(); err != nil {
				return result(), err
			}
		}

		m.Step(dt)

		b := m.Boat()
		stats.add(b.Position, b.State, m.Scenario.Obstacles)
		rec.Record(m)
	}

	return result(), nil
}
