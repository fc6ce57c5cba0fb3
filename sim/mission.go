// sim/mission.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/blueboat-sim/blueboat/log"
	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"

	"github.com/brunoga/deep"
)

const (
	// Number of recent positions kept for drawing the boat's wake.
	MaxTrajectory = 500
	// Progress fraction past which the boat is waiting to physically reach
	// the finish.
	AwaitingArrivalProgress = 0.98
)

// Mission runs a single boat through a Scenario. To fly the scenario
// again or fly a new one, make a new Mission.
type Mission struct {
	Scenario Scenario

	boat       *nav.Boat
	stream     *EventStream
	logSub     *EventsSubscription
	lg         *log.Logger
	ticks      int
	elapsed    float64
	completed  bool
	trajectory []math.Vector2
}

// NewMission returns a Mission with the boat at the scenario's spawn
// point. Guidance events are posted to stream, if it is non-nil, and are
// forwarded to lg as they arrive.
func NewMission(sc Scenario, p nav.Params, stream *EventStream, lg *log.Logger) (*Mission, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := &Mission{
		Scenario: sc,
		stream:   stream,
		lg:       lg,
	}

	var sink nav.EventSink
	if stream != nil {
		sink = stream
		if lg != nil {
			m.logSub = stream.Subscribe()
		}
	}
	m.boat = nav.NewBoat(sc.Spawn, sc.SpawnHeading, p, sink)

	lg.Info("new mission", slog.Any("scenario", sc))

	return m, nil
}

// Step advances the mission by dt seconds and reports whether it is
// complete. Once the mission completes, further calls do nothing.
func (m *Mission) Step(dt float64) bool {
	if m.completed {
		return true
	}

	arrived := m.boat.Update(m.Scenario.Waypoints, m.Scenario.Obstacles, dt)
	m.ticks++
	m.elapsed += math.Max(dt, 0)

	m.trajectory = append(m.trajectory, m.boat.Position)
	if len(m.trajectory) > MaxTrajectory {
		m.trajectory = m.trajectory[len(m.trajectory)-MaxTrajectory:]
	}

	if arrived {
		m.completed = true
		m.boat.MarkCompleted()
		if m.stream != nil {
			m.stream.Post(nav.Event{
				Type:     nav.MissionCompleteEvent,
				Tick:     m.boat.Ticks(),
				Position: m.boat.Position,
			})
		}
	}

	m.forwardEvents()

	return m.completed
}

func (m *Mission) forwardEvents() {
	if m.logSub == nil {
		return
	}
	for _, e := range m.logSub.Get() {
		switch e.Type {
		case nav.ObstacleAvoidanceEvent:
			m.lg.Debug(e.String(), slog.Any("event", e))
		default:
			m.lg.Info(e.String(), slog.Any("event", e))
		}
	}
}

// Close releases the mission's event subscription.
func (m *Mission) Close() {
	if m.logSub != nil {
		m.forwardEvents()
		m.logSub.Unsubscribe()
		m.logSub = nil
	}
}

func (m *Mission) Boat() *nav.Boat {
	return m.boat
}

func (m *Mission) Ticks() int {
	return m.ticks
}

// Elapsed returns the simulated time in seconds.
func (m *Mission) Elapsed() float64 {
	return m.elapsed
}

func (m *Mission) Completed() bool {
	return m.completed
}

func (m *Mission) Progress() float64 {
	return m.boat.Progress()
}

// AwaitingArrival reports whether the boat has tracked nearly all of its
// route but hasn't yet reached the finish.
func (m *Mission) AwaitingArrival() bool {
	return !m.completed && m.Progress() >= AwaitingArrivalProgress
}

// Trajectory returns up to MaxTrajectory of the boat's most recent
// positions, oldest first.
func (m *Mission) Trajectory() []math.Vector2 {
	return m.trajectory
}

// MissionSnapshot holds everything needed to draw a mission.
type MissionSnapshot struct {
	Boat            nav.BoatSnapshot
	Scenario        Scenario
	Trajectory      []math.Vector2
	Ticks           int
	Elapsed         float64
	Completed       bool
	AwaitingArrival bool
}

// Snapshot returns a copy of the mission's state that shares no memory
// with the Mission.
func (m *Mission) Snapshot() MissionSnapshot {
	return MissionSnapshot{
		Boat:            m.boat.Snapshot(),
		Scenario:        deep.MustCopy(m.Scenario),
		Trajectory:      deep.MustCopy(m.trajectory),
		Ticks:           m.ticks,
		Elapsed:         m.elapsed,
		Completed:       m.completed,
		AwaitingArrival: m.AwaitingArrival(),
	}
}
