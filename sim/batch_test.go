// sim/batch_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/blueboat-sim/blueboat/log"
	"github.com/blueboat-sim/blueboat/nav"
)

func testBatchConfig(count, concurrency int) BatchConfig {
	return BatchConfig{
		Count:       count,
		Concurrency: concurrency,
		BaseSeed:    1000,
		DT:          DefaultDT,
		MaxTicks:    DefaultMaxTicks,
		Boat:        nav.DefaultParams(),
		Scenario:    DefaultScenarioConfig(),
	}
}

func TestBatchConfigValidate(t *testing.T) {
	if err := testBatchConfig(4, 2).Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	cfg := testBatchConfig(0, 1)
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidBatchConfig) {
		t.Errorf("zero count: got %v", err)
	}
	cfg = testBatchConfig(1, -1)
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidBatchConfig) {
		t.Errorf("negative concurrency: got %v", err)
	}
	cfg = testBatchConfig(1, 1)
	cfg.Boat.MaxSpeed = -1
	if _, err := RunBatch(context.Background(), cfg, nil); !errors.Is(err, nav.ErrInvalidParams) {
		t.Errorf("bad boat: got %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	cfg := testBatchConfig(12, 4)
	results, err := RunBatch(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if len(results) != cfg.Count {
		t.Fatalf("%d results, expected %d", len(results), cfg.Count)
	}
	for i, r := range results {
		if r.Seed != cfg.BaseSeed+int64(i) {
			t.Errorf("result %d has seed %d", i, r.Seed)
		}
		if !r.Completed {
			t.Errorf("seed %d didn't complete: %s", r.Seed, r.Err)
		}
	}

	// Results depend only on the seeds, not on the scheduling.
	serial, err := RunBatch(context.Background(), testBatchConfig(12, 1), nil)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if !reflect.DeepEqual(results, serial) {
		t.Errorf("concurrent and serial batches differ")
	}
}

func TestRunMissionTickLimit(t *testing.T) {
	var buf bytes.Buffer
	cfg := testBatchConfig(1, 1)
	cfg.MaxTicks = 5

	res, err := RunMission(context.Background(), cfg.BaseSeed, cfg, nil, log.NewWriter(&buf, "warn"))
	if err != nil {
		t.Fatalf("tick limit should be reported in the result, got %v", err)
	}
	if res.Completed || res.Err == "" || res.Ticks != 5 {
		t.Errorf("unexpected result %+v", res)
	}
	if !strings.Contains(buf.String(), "seed 1000: ") {
		t.Errorf("no warning logged: %q", buf.String())
	}
}

func TestRunBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunBatch(ctx, testBatchConfig(4, 2), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, expected context.Canceled", err)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Ticks: 100, Elapsed: 1, Completed: true, SpawnKind: SpawnCorner, Distance: 10, MinClearance: 5,
			StateTicks: map[nav.BoatState]int{nav.StateTracking: 80, nav.StateAvoiding: 20}},
		{Ticks: 300, Elapsed: 3, Completed: true, SpawnKind: SpawnRandom, Distance: 30, MinClearance: 2,
			StateTicks: map[nav.BoatState]int{nav.StateTracking: 300}},
		{Ticks: 500, Completed: false, SpawnKind: SpawnCorner, MinClearance: 8,
			StateTicks: map[nav.BoatState]int{nav.StateApproaching: 500, nav.StateAvoiding: 40}},
	}

	s := Summarize(results)
	expectedKeys := []string{"missions", "completed", "failed", "completion_rate", "ticks_min", "ticks_mean",
		"ticks_max", "elapsed_mean", "distance_mean", "avoiding_ticks_mean", "min_clearance", "spawn_corner",
		"spawn_random"}
	if !slices.Equal(s.Keys(), expectedKeys) {
		t.Errorf("keys %v, expected %v", s.Keys(), expectedKeys)
	}

	check := func(key string, expected any) {
		t.Helper()
		if v, ok := s.Get(key); !ok || v != expected {
			t.Errorf("%s: got %v, expected %v", key, v, expected)
		}
	}
	check("missions", 3)
	check("completed", 2)
	check("failed", 1)
	check("ticks_min", 100)
	check("ticks_max", 300)
	check("ticks_mean", 200.)
	check("elapsed_mean", 2.)
	check("distance_mean", 20.)
	check("avoiding_ticks_mean", 20.)
	check("min_clearance", 2.)
	check("spawn_corner", 2)
	check("spawn_random", 1)

	if _, err := json.Marshal(s); err != nil {
		t.Errorf("json.Marshal: %v", err)
	}

	empty := Summarize(nil)
	if !slices.Equal(empty.Keys(), []string{"missions", "completed", "failed", "spawn_corner", "spawn_random"}) {
		t.Errorf("empty summary keys %v", empty.Keys())
	}
}
