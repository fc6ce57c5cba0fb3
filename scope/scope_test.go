// scope/scope_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scope

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/rand"
	"github.com/blueboat-sim/blueboat/sim"

	"github.com/gdamore/tcell/v2"
)

type testCanvas struct {
	w, h  int
	cells [][]rune
}

func newTestCanvas(w, h int) *testCanvas {
	c := &testCanvas{w: w, h: h, cells: make([][]rune, h)}
	for y := range c.cells {
		c.cells[y] = make([]rune, w)
	}
	return c
}

func (c *testCanvas) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *testCanvas) Size() (int, int) { return c.w, c.h }

func (c *testCanvas) row(y int) string { return string(c.cells[y]) }

func (c *testCanvas) String() string {
	var rows []string
	for y := range c.cells {
		rows = append(rows, c.row(y))
	}
	return strings.Join(rows, "\n")
}

func TestViewport(t *testing.T) {
	vp := MakeViewport(math.Extent2D{P1: math.V2(1000, 700)}, 100, 35)

	for _, c := range []struct {
		p    math.Vector2
		x, y int
		ok   bool
	}{
		{math.V2(0, 0), 0, 0, true},
		{math.V2(999, 699), 99, 34, true},
		{math.V2(505, 350), 50, 17, true},
		{math.V2(-1, 10), 0, 0, false},
		{math.V2(10, 700), 1, 35, false},
		{math.V2(1000, 10), 100, 0, false},
	} {
		x, y, ok := vp.Cell(c.p)
		if ok != c.ok || (ok && (x != c.x || y != c.y)) {
			t.Errorf("%v: got (%d, %d, %v), expected (%d, %d, %v)", c.p, x, y, ok, c.x, c.y, c.ok)
		}
	}

	for _, cell := range [][2]int{{0, 0}, {17, 9}, {99, 34}} {
		x, y, ok := vp.Cell(vp.Center(cell[0], cell[1]))
		if !ok || x != cell[0] || y != cell[1] {
			t.Errorf("center of %v maps back to (%d, %d, %v)", cell, x, y, ok)
		}
	}
}

func TestBoatGlyph(t *testing.T) {
	for _, c := range []struct {
		heading float64
		glyph   rune
	}{
		{0, '→'},
		{math.Pi / 2, '↓'},
		{math.Pi, '←'},
		{-math.Pi / 2, '↑'},
		{3 * math.Pi / 2, '↑'},
		{math.Pi / 4, '↘'},
		{-0.1, '→'},
	} {
		if g := boatGlyph(c.heading); g != c.glyph {
			t.Errorf("heading %f: got %c, expected %c", c.heading, g, c.glyph)
		}
	}
}

func testMission(t *testing.T) *sim.Mission {
	t.Helper()
	cfg := sim.DefaultScenarioConfig()
	sc := sim.GenerateScenario(rand.Make(3), cfg, nil)
	m, err := sim.NewMission(sc, nav.DefaultParams(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDraw(t *testing.T) {
	m := testMission(t)
	m.Step(sim.DefaultDT)

	c := newTestCanvas(100, 37)
	snap := m.Snapshot()
	Draw(c, snap)

	if !strings.Contains(c.row(0), "State: "+snap.Boat.State.Label()) {
		t.Errorf("HUD state line %q", c.row(0))
	}
	if !strings.Contains(c.row(1), "Progress: ") || strings.Contains(c.row(1), "awaiting") {
		t.Errorf("HUD progress line %q", c.row(1))
	}

	if !strings.Contains(c.row(0), "Heading: ") || !strings.Contains(c.row(0), "Position: ") {
		t.Errorf("HUD state line %q", c.row(0))
	}

	vp := MakeViewport(worldExtent(snap.Scenario), 100, 35)
	x, y, ok := vp.Cell(snap.Boat.Position)
	if !ok {
		t.Fatalf("boat at %v is off screen", snap.Boat.Position)
	}
	if r := c.cells[y+hudRows][x]; r != boatGlyph(snap.Boat.Heading) {
		t.Errorf("got %c at the boat's position\n%s", r, c)
	}
	for _, b := range snap.Scenario.Buoys {
		x, y, _ := vp.Cell(b)
		if r := c.cells[y+hudRows][x]; r != '@' {
			t.Errorf("got %c at buoy %v", r, b)
		}
	}
	if strings.Contains(c.String(), "MISSION COMPLETE") {
		t.Errorf("banner shown for a mission in progress")
	}
}

func TestWorldExtent(t *testing.T) {
	cfg := sim.DefaultScenarioConfig()
	sc := sim.Scenario{Config: cfg}
	if e := worldExtent(sc); e != cfg.Bounds() {
		t.Errorf("extent %v without a route, expected the window %v", e, cfg.Bounds())
	}

	// A stored scenario whose route runs off the window to the upper left.
	sc.Waypoints = nav.GenerateLemniscate(math.V2(-300, -200), math.V2(100, -200), nav.DefaultLemniscateOptions())
	e := worldExtent(sc)
	for _, p := range append(sc.Waypoints, math.V2(0, 0), math.V2(cfg.Width, cfg.Height)) {
		if !e.Inside(p) {
			t.Errorf("%v is outside the drawn extent %v", p, e)
		}
	}
}

func TestDrawTargetOnlyWhenPlanned(t *testing.T) {
	snap := sim.MissionSnapshot{
		Boat: nav.BoatSnapshot{
			Position: math.V2(100, 100),
			Target:   math.V2(500, 350),
		},
		Scenario: sim.Scenario{Config: sim.DefaultScenarioConfig()},
	}

	c := newTestCanvas(100, 37)
	Draw(c, snap)
	if strings.ContainsRune(c.String(), '*') {
		t.Errorf("target drawn before the route was planned:\n%s", c)
	}

	snap.Boat.Planned = true
	c = newTestCanvas(100, 37)
	Draw(c, snap)
	vp := MakeViewport(worldExtent(snap.Scenario), 100, 35)
	x, y, _ := vp.Cell(snap.Boat.Target)
	if r := c.cells[y+hudRows][x]; r != '*' {
		t.Errorf("got %c at the target\n%s", r, c)
	}
}

func TestDrawCompleted(t *testing.T) {
	m := testMission(t)
	if _, err := sim.Run(context.Background(), m, sim.DefaultDT, 0, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	c := newTestCanvas(100, 37)
	Draw(c, m.Snapshot())
	s := c.String()
	if !strings.Contains(s, "MISSION COMPLETE") || !strings.Contains(s, "[n] new route") {
		t.Errorf("no completion banner:\n%s", s)
	}
	if !strings.Contains(c.row(0), "Mission complete") {
		t.Errorf("HUD state line %q", c.row(0))
	}
}

func TestDrawAwaitingArrival(t *testing.T) {
	c := newTestCanvas(80, 20)
	Draw(c, sim.MissionSnapshot{
		Boat:            nav.BoatSnapshot{State: nav.StateTracking, Progress: 0.985},
		Scenario:        sim.Scenario{Config: sim.DefaultScenarioConfig()},
		AwaitingArrival: true,
	})
	if !strings.Contains(c.row(1), "Progress: 98% (awaiting physical arrival...)") {
		t.Errorf("HUD progress line %q", c.row(1))
	}

	// Tiny canvases only get the HUD.
	c = newTestCanvas(10, 1)
	Draw(c, sim.MissionSnapshot{Scenario: sim.Scenario{Config: sim.DefaultScenarioConfig()}})
}

func TestKeyAction(t *testing.T) {
	for _, c := range []struct {
		key tcell.Key
		r   rune
		a   action
	}{
		{tcell.KeyEscape, 0, actionQuit},
		{tcell.KeyRune, 'q', actionQuit},
		{tcell.KeyRune, 'r', actionRestart},
		{tcell.KeyRune, 'n', actionNewRoute},
		{tcell.KeyRune, ' ', actionTogglePause},
		{tcell.KeyRune, 'x', actionNone},
		{tcell.KeyEnter, 0, actionNone},
	} {
		if a := keyAction(c.key, c.r); a != c.a {
			t.Errorf("key %v rune %q: got %v, expected %v", c.key, c.r, a, c.a)
		}
	}
}

func newTestViewer(t *testing.T, screen tcell.Screen) *Viewer {
	t.Helper()
	v, err := NewViewer(screen, nav.DefaultParams(), sim.DefaultScenarioConfig(), sim.DefaultDT, rand.Make(11), nil)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestViewerActions(t *testing.T) {
	v := newTestViewer(t, nil)
	first := v.mission

	if quit, err := v.handle(actionTogglePause); quit || err != nil || !v.paused {
		t.Fatalf("pause: %v %v paused %v", quit, err, v.paused)
	}
	v.step()
	if v.mission.Ticks() != 0 {
		t.Errorf("paused mission stepped")
	}
	v.handle(actionTogglePause)
	v.step()
	if v.mission.Ticks() != 1 {
		t.Errorf("mission has %d ticks, expected 1", v.mission.Ticks())
	}

	// A new route is only offered once the mission is over.
	v.handle(actionNewRoute)
	if v.mission != first {
		t.Errorf("new route started during a mission")
	}

	if _, err := v.handle(actionRestart); err != nil || v.mission == first {
		t.Errorf("restart: %v", err)
	}
	if v.mission.Scenario.Buoys == first.Scenario.Buoys {
		t.Errorf("restart reused the scenario")
	}

	for !v.mission.Completed() {
		v.step()
	}
	done := v.mission
	ticks := done.Ticks()
	v.step()
	if done.Ticks() != ticks {
		t.Errorf("completed mission stepped")
	}
	v.handle(actionNewRoute)
	if v.mission == done {
		t.Errorf("new route not started after completion")
	}

	if quit, _ := v.handle(actionQuit); !quit {
		t.Errorf("quit didn't quit")
	}
}

func TestNewViewerInvalid(t *testing.T) {
	cfg := sim.DefaultScenarioConfig()
	cfg.Width = -1
	if _, err := NewViewer(nil, nav.DefaultParams(), cfg, sim.DefaultDT, rand.Make(1), nil); !errors.Is(err,
		sim.ErrInvalidScenarioConfig) {
		t.Errorf("got %v, expected ErrInvalidScenarioConfig", err)
	}
}

func TestViewerRun(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(100, 37)

	v := newTestViewer(t, screen)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := v.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run returned %v", err)
	}
	if v.mission.Ticks() == 0 {
		t.Errorf("mission never stepped")
	}
}
