// sim/batch.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/blueboat-sim/blueboat/log"
	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/rand"

	"github.com/iancoleman/orderedmap"
	"golang.org/x/sync/errgroup"
)

// BatchConfig describes a set of independent, seeded missions.
type BatchConfig struct {
	Count       int   `json:"count" mapstructure:"count"`
	Concurrency int   `json:"concurrency" mapstructure:"concurrency"` // 0: one per CPU
	BaseSeed    int64 `json:"base_seed" mapstructure:"base_seed"`

	DT       float64 `json:"dt" mapstructure:"dt"`
	MaxTicks int     `json:"max_ticks" mapstructure:"max_ticks"`

	Boat     nav.Params     `json:"boat" mapstructure:"boat"`
	Scenario ScenarioConfig `json:"scenario" mapstructure:"scenario"`
}

func (c BatchConfig) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("count %d: %w", c.Count, ErrInvalidBatchConfig)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency %d: %w", c.Concurrency, ErrInvalidBatchConfig)
	}
	if c.DT <= 0 {
		return fmt.Errorf("dt %g: %w", c.DT, ErrInvalidTimeStep)
	}
	if err := c.Boat.Validate(); err != nil {
		return err
	}
	return c.Scenario.Validate()
}

// RunMission generates the scenario for the given seed and flies it to
// completion. Missions that hit the tick limit are reported in the
// Result rather than as an error.
func RunMission(ctx context.Context, seed int64, cfg BatchConfig, cache *nav.RouteCache, lg *log.Logger) (Result, error) {
	sc := GenerateScenario(rand.Make(seed), cfg.Scenario, cache)

	m, err := NewMission(sc, cfg.Boat, NewEventStream(lg), lg)
	if err != nil {
		return Result{Seed: seed}, err
	}
	defer m.Close()

	res, err := Run(ctx, m, cfg.DT, cfg.MaxTicks, nil)
	res.Seed = seed
	if errors.Is(err, ErrTickLimit) {
		lg.Warnf("seed %d: %v after %.1fs", seed, err, res.Elapsed)
		res.Err = err.Error()
		err = nil
	}
	return res, err
}

// RunBatch runs cfg.Count missions, seeded BaseSeed, BaseSeed+1, ...,
// concurrently. Each mission has its own random number generator, boat,
// and event stream, so the results only depend on the configuration.
// They are returned in seed order.
func RunBatch(ctx context.Context, cfg BatchConfig, lg *log.Logger) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limit := cfg.Concurrency
	if limit == 0 {
		limit = runtime.NumCPU()
	}

	cache := nav.NewRouteCache(0)
	results := make([]Result, cfg.Count)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i := range cfg.Count {
		eg.Go(func() error {
			seed := cfg.BaseSeed + int64(i)
			var err error
			results[i], err = RunMission(ctx, seed, cfg, cache, lg.With(slog.Int64("seed", seed)))
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	lg.Debugf("batch of %d missions used %d distinct routes", cfg.Count, cache.Len())

	return results, nil
}

// Summarize returns aggregate statistics about a batch of results. Keys
// are in a fixed order so that the JSON encoding is stable.
func Summarize(results []Result) *orderedmap.OrderedMap {
	s := orderedmap.New()

	var completed, corner int
	var ticks, avoiding []int
	minClearance := math.Inf(1)
	var elapsed, distance float64
	for _, r := range results {
		if r.Completed {
			completed++
			ticks = append(ticks, r.Ticks)
			elapsed += r.Elapsed
			distance += r.Distance
		}
		if r.SpawnKind == SpawnCorner {
			corner++
		}
		avoiding = append(avoiding, r.StateTicks[nav.StateAvoiding])
		if r.Ticks > 0 {
			minClearance = math.Min(minClearance, r.MinClearance)
		}
	}

	s.Set("missions", len(results))
	s.Set("completed", completed)
	s.Set("failed", len(results)-completed)
	if len(results) > 0 {
		s.Set("completion_rate", float64(completed)/float64(len(results)))
	}
	if len(ticks) > 0 {
		lo, hi, sum := ticks[0], ticks[0], 0
		for _, t := range ticks {
			lo, hi, sum = min(lo, t), max(hi, t), sum+t
		}
		s.Set("ticks_min", lo)
		s.Set("ticks_mean", float64(sum)/float64(len(ticks)))
		s.Set("ticks_max", hi)
		s.Set("elapsed_mean", elapsed/float64(len(ticks)))
		s.Set("distance_mean", distance/float64(len(ticks)))
	}
	if len(avoiding) > 0 {
		sum := 0
		for _, a := range avoiding {
			sum += a
		}
		s.Set("avoiding_ticks_mean", float64(sum)/float64(len(avoiding)))
	}
	if !math.IsInf(minClearance) {
		s.Set("min_clearance", minClearance)
	}
	s.Set("spawn_corner", corner)
	s.Set("spawn_random", len(results)-corner)

	return s
}
