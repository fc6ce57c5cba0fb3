// math/core.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

const Pi = gomath.Pi

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Thin wrappers so that callers in this module can use a single math
// package without also importing the standard library one under an
// alias.

func Sin(a float64) float64 { return gomath.Sin(a) }
func Cos(a float64) float64 { return gomath.Cos(a) }
func Atan2(y, x float64) float64 { return gomath.Atan2(y, x) }
func Sqrt(a float64) float64 { return gomath.Sqrt(a) }
func Inf(sign int) float64 { return gomath.Inf(sign) }
func IsInf(v float64) bool { return gomath.IsInf(v, 0) }

func Sign(v float64) float64 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}
