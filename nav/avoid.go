// nav/avoid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/blueboat-sim/blueboat/math"
)

const (
	// Obstacles are only threats if the cosine of the angle between the
	// direction to them and the navigation direction exceeds this (about
	// +/-70 degrees).
	forwardConeDot = 0.3
	avoidanceGain  = 3.0
	// Blend between the navigation direction and the avoidance vector;
	// the strong blend applies when any obstacle is closer than half the
	// sensor range.
	strongBlend       = 0.8
	weakBlend         = 0.4
	strongBlendThresh = 0.5
)

// Obstacle is a circular exclusion area.
type Obstacle struct {
	Position math.Vector2 `json:"position" msgpack:"p"`
	Radius   float64      `json:"radius" msgpack:"r"`
	IsBuoy   bool         `json:"is_buoy,omitempty" msgpack:"b"`
}

// Avoidance is the result of scanning obstacles for one tick.
type Avoidance struct {
	// Direction is the unit steering direction after blending in the
	// avoidance vector. It is the navigation direction unchanged when
	// nothing needs avoiding.
	Direction math.Vector2
	// Vector is the accumulated (unnormalized) tangential escape vector.
	Vector math.Vector2
	// MaxStrength is the largest threat strength, in [0, 1].
	MaxStrength float64
	// Threats is the number of obstacles that were in range and ahead.
	Threats int
	// NearestSurface is the smallest surface distance among the threats;
	// it is only meaningful if Threats > 0.
	NearestSurface float64
}

func (a Avoidance) Active() bool {
	return a.Threats > 0
}

// Avoid computes the steering direction for a boat at pos that wants to
// head along the unit vector navDir. Each obstacle whose surface is within
// the sensor range and that lies in the forward cone contributes a
// tangent to the direction toward it, on whichever side deviates least
// from navDir, weighted by how close the obstacle is. The contributions
// are summed and then blended with navDir.
func Avoid(pos, navDir math.Vector2, obstacles []Obstacle, p Params) Avoidance {
	av := Avoidance{Direction: navDir, NearestSurface: math.Inf(1)}

	for _, obs := range obstacles {
		toObs := obs.Position.Sub(pos)
		surface := toObs.Length() - obs.Radius
		if surface >= p.SensorRange {
			continue
		}

		toObsNorm := toObs.Normalize()
		if toObsNorm.Dot(navDir) <= forwardConeDot {
			continue
		}

		// Positive since surface < SensorRange; it would exceed 1 once
		// we're inside the obstacle.
		strength := math.Clamp((p.SensorRange-surface)/p.SensorRange, 0, 1)
		av.MaxStrength = math.Max(av.MaxStrength, strength)

		left, right := toObsNorm.Perp(), toObsNorm.Perp().Scale(-1)
		escape := right
		if left.Dot(navDir) > right.Dot(navDir) {
			escape = left
		}
		av.Vector = av.Vector.Add(escape.Scale(strength * avoidanceGain))

		av.Threats++
		av.NearestSurface = math.Min(av.NearestSurface, surface)
	}

	if !av.Vector.IsZero() {
		blend := weakBlend
		if av.MaxStrength > strongBlendThresh {
			blend = strongBlend
		}
		av.Direction = navDir.Scale(1 - blend).Add(av.Vector.Scale(blend)).Normalize()
	}

	return av
}
