// math/heading.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import gomath "math"

///////////////////////////////////////////////////////////////////////////
// headings

// Headings are in radians, measured from the +x axis toward +y (which is
// clockwise on screen since +y points down).

// NormalizeAngle wraps the given angle into (-pi, pi]. Infinite and NaN
// angles give NaN.
func NormalizeAngle(a float64) float64 {
	a = gomath.Remainder(a, 2*Pi) // [-pi, pi]
	if a <= -Pi {
		a += 2 * Pi
	}
	return a
}

// HeadingDifference returns the signed turn (in (-pi, pi]) that takes
// heading |from| to heading |to| the short way around.
func HeadingDifference(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// ClampMagnitude limits |v| to limit while keeping its sign.
func ClampMagnitude(v, limit float64) float64 {
	if Abs(v) > limit {
		return Sign(v) * limit
	}
	return v
}

// CompassDegrees returns the heading in degrees, in [0, 360).
func CompassDegrees(heading float64) float64 {
	d := Degrees(NormalizeAngle(heading))
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d -= 360
	}
	return d
}
