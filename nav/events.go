// nav/events.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"log/slog"

	"github.com/blueboat-sim/blueboat/math"
)

type EventType int

const (
	RoutePlannedEvent EventType = iota
	ObstacleAvoidanceEvent
	MissionCompleteEvent
	NumEventTypes
)

func (t EventType) String() string {
	switch t {
	case RoutePlannedEvent:
		return "RoutePlanned"
	case ObstacleAvoidanceEvent:
		return "ObstacleAvoidance"
	case MissionCompleteEvent:
		return "MissionComplete"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is an advisory notification from the guidance. Nothing in the
// guidance depends on whether or how events are consumed.
type Event struct {
	Type     EventType
	Tick     int
	Position math.Vector2

	// RoutePlannedEvent
	EntryIndex  int
	RouteLength int

	// ObstacleAvoidanceEvent: distance to the surface of the nearest
	// obstacle that is being avoided.
	SurfaceDistance float64
}

func (e Event) String() string {
	switch e.Type {
	case RoutePlannedEvent:
		return fmt.Sprintf("%s: entry index %d, active route has %d waypoints", e.Type, e.EntryIndex, e.RouteLength)
	case ObstacleAvoidanceEvent:
		return fmt.Sprintf("%s: avoiding obstacle, distance %.1f", e.Type, e.SurfaceDistance)
	default:
		return fmt.Sprintf("%s: tick %d at %s", e.Type, e.Tick, e.Position)
	}
}

// implements slog.LogValuer
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int("tick", e.Tick),
		slog.String("position", e.Position.String()),
	}
	switch e.Type {
	case RoutePlannedEvent:
		attrs = append(attrs, slog.Int("entry_index", e.EntryIndex), slog.Int("route_length", e.RouteLength))
	case ObstacleAvoidanceEvent:
		attrs = append(attrs, slog.Float64("surface_distance", e.SurfaceDistance))
	}
	return slog.GroupValue(attrs...)
}

// EventSink receives guidance events.
type EventSink interface {
	PostEvent(Event)
}
