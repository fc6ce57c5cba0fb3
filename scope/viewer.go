// scope/viewer.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scope

import (
	"context"
	"time"

	"github.com/blueboat-sim/blueboat/log"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/rand"
	"github.com/blueboat-sim/blueboat/sim"

	"github.com/gdamore/tcell/v2"
)

const FrameRate = 60

type action int

const (
	actionNone action = iota
	actionQuit
	actionRestart
	actionNewRoute
	actionTogglePause
)

func keyAction(key tcell.Key, r rune) action {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return actionQuit
		case 'r', 'R':
			return actionRestart
		case 'n', 'N':
			return actionNewRoute
		case ' ':
			return actionTogglePause
		}
	}
	return actionNone
}

// Viewer flies generated scenarios one after another in a terminal.
type Viewer struct {
	screen   tcell.Screen
	params   nav.Params
	scenario sim.ScenarioConfig
	dt       float64
	r        *rand.Rand
	cache    *nav.RouteCache
	lg       *log.Logger

	mission *sim.Mission
	paused  bool
}

// NewViewer returns a Viewer drawing to screen, which must already be
// initialized. Scenarios are drawn from r.
func NewViewer(screen tcell.Screen, p nav.Params, sc sim.ScenarioConfig, dt float64, r *rand.Rand,
	lg *log.Logger) (*Viewer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if dt <= 0 {
		dt = sim.DefaultDT
	}

	v := &Viewer{
		screen:   screen,
		params:   p,
		scenario: sc,
		dt:       dt,
		r:        r,
		cache:    nav.NewRouteCache(0),
		lg:       lg,
	}
	return v, v.newMission()
}

func (v *Viewer) newMission() error {
	if v.mission != nil {
		v.mission.Close()
	}

	sc := sim.GenerateScenario(v.r, v.scenario, v.cache)
	m, err := sim.NewMission(sc, v.params, sim.NewEventStream(v.lg), v.lg)
	if err != nil {
		return err
	}
	v.mission = m
	v.paused = false
	return nil
}

// handle applies an action and reports whether the viewer should exit.
func (v *Viewer) handle(a action) (bool, error) {
	switch a {
	case actionQuit:
		return true, nil
	case actionRestart:
		return false, v.newMission()
	case actionNewRoute:
		if v.mission.Completed() {
			return false, v.newMission()
		}
	case actionTogglePause:
		v.paused = !v.paused
		v.lg.Debugf("paused: %v", v.paused)
	}
	return false, nil
}

// step advances the current mission by one frame unless it is paused or
// already complete.
func (v *Viewer) step() {
	if v.paused || v.mission.Completed() {
		return
	}
	if v.mission.Step(v.dt) {
		v.lg.Infof("mission complete after %d ticks (%.1fs)", v.mission.Ticks(), v.mission.Elapsed())
	}
}

func (v *Viewer) draw() {
	Draw(v.screen, v.mission.Snapshot())
	v.screen.Show()
}

// Run steps and draws missions at FrameRate until the user quits or ctx
// is canceled.
func (v *Viewer) Run(ctx context.Context) error {
	defer v.mission.Close()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				// The screen was finalized.
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	v.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				v.screen.Sync()
			case *tcell.EventKey:
				quit, err := v.handle(keyAction(ev.Key(), ev.Rune()))
				if quit || err != nil {
					return err
				}
			}
			v.draw()

		case <-ticker.C:
			v.step()
			v.draw()
		}
	}
}
