// nav/nav.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/blueboat-sim/blueboat/math"

	"github.com/brunoga/deep"
)

const (
	// The pursuit target is this many route samples past the tracking
	// index.
	LookaheadOffset = 4
	// The boat has arrived once it's within this distance of the final
	// route point (and has progressed to the end of the route).
	ArrivalRadius = 25
	// Positions advance by velocity*dt*DisplayScale each tick.
	DisplayScale = 20
	// Avoidance events are posted at most once per this many ticks of
	// continuous avoidance.
	AvoidanceEventTicks = 30
)

// Params holds the boat's performance and sensor characteristics.
type Params struct {
	MaxSpeed      float64 `json:"max_speed" mapstructure:"max_speed"`
	TurnRate      float64 `json:"turn_rate" mapstructure:"turn_rate"` // radians per second
	LookaheadDist float64 `json:"lookahead_dist" mapstructure:"lookahead_dist"`
	SensorRange   float64 `json:"sensor_range" mapstructure:"sensor_range"`
	// SensorAngle is the half-angle of the displayed sensor sector; the
	// avoidance itself uses a fixed forward cone.
	SensorAngle float64 `json:"sensor_angle" mapstructure:"sensor_angle"`
}

func DefaultParams() Params {
	return Params{
		MaxSpeed:      4.0,
		TurnRate:      3.5,
		LookaheadDist: 60,
		SensorRange:   100,
		SensorAngle:   math.Pi / 3,
	}
}

func (p Params) Validate() error {
	switch {
	case p.MaxSpeed <= 0:
		return fmt.Errorf("max_speed %f: %w", p.MaxSpeed, ErrInvalidParams)
	case p.TurnRate <= 0:
		return fmt.Errorf("turn_rate %f: %w", p.TurnRate, ErrInvalidParams)
	case p.LookaheadDist <= 0:
		return fmt.Errorf("lookahead_dist %f: %w", p.LookaheadDist, ErrInvalidParams)
	case p.SensorRange <= 0:
		return fmt.Errorf("sensor_range %f: %w", p.SensorRange, ErrInvalidParams)
	}
	return nil
}

// Boat is the guidance and control model of a single surface vehicle
// patrolling a closed route. Position, Velocity, Heading, State,
// ActivePath, and PathIndex are outputs for display and must not be
// modified by callers; use Snapshot to get a copy that can be held on to.
//
// A Boat plans its route once, on the first Update with a non-empty route
// template; to fly a new mission, make a new Boat.
type Boat struct {
	Position math.Vector2
	Velocity math.Vector2
	Heading  float64 // radians
	State    BoatState

	// ActivePath is the route template rotated to begin at the sample
	// closest to where the boat was when it planned, with that sample
	// repeated at the end to close the loop.
	ActivePath []math.Vector2
	// PathIndex is the tracking index into ActivePath; it never
	// decreases.
	PathIndex int

	Params Params

	planned    bool
	ticks      int
	avoidTicks int
	sink       EventSink
}

// NewBoat returns a Boat at the given position and heading. Events are
// posted to sink, which may be nil.
func NewBoat(pos math.Vector2, heading float64, p Params, sink EventSink) *Boat {
	return &Boat{
		Position: pos,
		Heading:  heading,
		State:    StateIdle,
		Params:   p,
		sink:     sink,
	}
}

// Update advances the boat by dt seconds along the route given by
// template, steering clear of the given obstacles. It returns true when
// the boat has both progressed to the end of its active route and is
// within ArrivalRadius of the route's final point. An empty template
// leaves the boat where it is and returns false.
func (b *Boat) Update(template []math.Vector2, obstacles []Obstacle, dt float64) bool {
	if len(template) == 0 {
		b.State = StateIdle
		return false
	}
	dt = math.Max(dt, 0)
	b.ticks++

	if !b.planned {
		b.planRoute(template)
	}

	target := b.advanceTarget()
	b.State = deriveState(b.Position.Distance(target), b.Params.LookaheadDist)

	navDir := target.Sub(b.Position).Normalize()
	av := Avoid(b.Position, navDir, obstacles, b.Params)
	if av.Active() {
		b.State = StateAvoiding
		b.avoidTicks++
		if b.avoidTicks >= AvoidanceEventTicks {
			b.post(Event{Type: ObstacleAvoidanceEvent, SurfaceDistance: av.NearestSurface})
			b.avoidTicks = 0
		}
	}

	b.steer(av.Direction, dt)

	return b.arrived()
}

// Planned reports whether the active route has been set up.
func (b *Boat) Planned() bool {
	return b.planned
}

// Ticks returns the number of non-trivial calls to Update so far.
func (b *Boat) Ticks() int {
	return b.ticks
}

// TargetPoint returns the point the boat is currently steering toward:
// LookaheadOffset samples past the tracking index, clamped to the end of
// the route. Before a route has been planned, it is the boat's position.
func (b *Boat) TargetPoint() math.Vector2 {
	if len(b.ActivePath) == 0 {
		return b.Position
	}
	return b.ActivePath[min(b.PathIndex+LookaheadOffset, len(b.ActivePath)-1)]
}

// Progress returns the fraction of the active route that has been
// tracked, in [0, 1).
func (b *Boat) Progress() float64 {
	if len(b.ActivePath) == 0 {
		return 0
	}
	return float64(b.PathIndex) / float64(len(b.ActivePath))
}

// MarkCompleted records that the mission is over. Update never sets
// StateCompleted itself.
func (b *Boat) MarkCompleted() {
	b.State = StateCompleted
	b.Velocity = math.Vector2{}
}

// planRoute rotates the template so that it starts at the point closest
// to the boat and closes the loop by repeating that point at the end.
// Ties go to the lowest index.
func (b *Boat) planRoute(template []math.Vector2) {
	if len(template) == 0 {
		return
	}

	entry, closest := 0, math.Inf(1)
	for i, p := range template {
		if d := b.Position.Distance(p); d < closest {
			entry, closest = i, d
		}
	}

	path := make([]math.Vector2, 0, len(template)+1)
	path = append(path, template[entry:]...)
	path = append(path, template[:entry]...)
	path = append(path, template[entry])

	b.ActivePath = path
	b.PathIndex = 0
	b.planned = true

	b.post(Event{Type: RoutePlannedEvent, EntryIndex: entry, RouteLength: len(path)})
}

// advanceTarget moves the tracking index past route points that are
// already within the lookahead distance and returns the pursuit target.
func (b *Boat) advanceTarget() math.Vector2 {
	if len(b.ActivePath) == 0 {
		return b.Position
	}

	last := len(b.ActivePath) - 1
	for b.PathIndex < last && b.Position.Distance(b.ActivePath[b.PathIndex]) < b.Params.LookaheadDist {
		b.PathIndex++
	}
	return b.TargetPoint()
}

// steer turns toward dir, limited by the turn rate, and then moves the
// boat. Speed drops off linearly with the size of the turn being made.
func (b *Boat) steer(dir math.Vector2, dt float64) {
	desired := dir.Angle()
	turn := math.HeadingDifference(b.Heading, desired)
	turn = math.ClampMagnitude(turn, b.Params.TurnRate*dt)
	b.Heading = math.NormalizeAngle(b.Heading + turn)

	speed := b.Params.MaxSpeed * (1 - math.Abs(turn)/math.Pi)
	b.Velocity = math.Unit(b.Heading).Scale(speed)
	b.Position = b.Position.Add(b.Velocity.Scale(dt * DisplayScale))
}

// arrived checks both that the tracking index has reached the end of the
// route and that the boat is physically close to the finish.
func (b *Boat) arrived() bool {
	n := len(b.ActivePath)
	if n == 0 {
		return false
	}
	return b.PathIndex >= n-2 && b.Position.Distance(b.ActivePath[n-1]) < ArrivalRadius
}

func (b *Boat) post(e Event) {
	if b.sink == nil {
		return
	}
	e.Tick = b.ticks
	e.Position = b.Position
	b.sink.PostEvent(e)
}

///////////////////////////////////////////////////////////////////////////
// BoatSnapshot

// BoatSnapshot is an independent copy of a Boat's outputs.
type BoatSnapshot struct {
	Position   math.Vector2
	Velocity   math.Vector2
	Heading    float64
	State      BoatState
	ActivePath []math.Vector2
	PathIndex  int
	Target     math.Vector2
	Progress   float64
	Planned    bool
	Params     Params
}

func (b *Boat) Snapshot() BoatSnapshot {
	return deep.MustCopy(BoatSnapshot{
		Position:   b.Position,
		Velocity:   b.Velocity,
		Heading:    b.Heading,
		State:      b.State,
		ActivePath: b.ActivePath,
		PathIndex:  b.PathIndex,
		Target:     b.TargetPoint(),
		Progress:   b.Progress(),
		Planned:    b.Planned(),
		Params:     b.Params,
	})
}
