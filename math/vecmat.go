// math/vecmat.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "fmt"

///////////////////////////////////////////////////////////////////////////
// Vector2

// Vector2 is a 2D point or vector in simulation (screen) units, with +y
// pointing down as on the display. All operations return new values.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// v+w
func (v Vector2) Add(w Vector2) Vector2 {
	return Vector2{v.X + w.X, v.Y + w.Y}
}

// v-w
func (v Vector2) Sub(w Vector2) Vector2 {
	return Vector2{v.X - w.X, v.Y - w.Y}
}

// v*s
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{s * v.X, s * v.Y}
}

func (v Vector2) Dot(w Vector2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Length returns the magnitude of v.
func (v Vector2) Length() float64 {
	return Sqrt(Sqr(v.X) + Sqr(v.Y))
}

// Normalize returns the unit vector in the direction of v. The zero vector
// normalizes to itself.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return v.Scale(1 / l)
}

// Distance between two points
func (v Vector2) Distance(w Vector2) float64 {
	return v.Sub(w).Length()
}

// Perp returns v rotated by +90 degrees: (-y, x).
func (v Vector2) Perp() Vector2 {
	return Vector2{-v.Y, v.X}
}

// Angle returns atan2(y, x).
func (v Vector2) Angle() float64 {
	return Atan2(v.Y, v.X)
}

func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Point returns integer display coordinates, truncating toward zero.
func (v Vector2) Point() (int, int) {
	return int(v.X), int(v.Y)
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", v.X, v.Y)
}

// Unit returns the unit vector pointing along the given angle (radians).
func Unit(angle float64) Vector2 {
	return Vector2{Cos(angle), Sin(angle)}
}

// midpoint of a and b
func Mid(a, b Vector2) Vector2 {
	return a.Add(b).Scale(0.5)
}

// Rotator returns a function that rotates points by the specified angle
// (given in radians, counter-clockwise in a y-up frame).
func Rotator(angle float64) func(Vector2) Vector2 {
	s, c := Sin(angle), Cos(angle)
	return func(p Vector2) Vector2 {
		return Vector2{c*p.X - s*p.Y, s*p.X + c*p.Y}
	}
}

// Extent2D is a 2D bounding box
type Extent2D struct {
	P0, P1 Vector2
}

func EmptyExtent2D() Extent2D {
	return Extent2D{P0: Vector2{Inf(1), Inf(1)}, P1: Vector2{Inf(-1), Inf(-1)}}
}

func Extent2DFromPoints(pts []Vector2) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = e.Union(p)
	}
	return e
}

func (e Extent2D) Union(p Vector2) Extent2D {
	return Extent2D{
		P0: Vector2{Min(e.P0.X, p.X), Min(e.P0.Y, p.Y)},
		P1: Vector2{Max(e.P1.X, p.X), Max(e.P1.Y, p.Y)},
	}
}

func (e Extent2D) Width() float64 { return e.P1.X - e.P0.X }
func (e Extent2D) Height() float64 { return e.P1.Y - e.P0.Y }

func (e Extent2D) Inside(p Vector2) bool {
	return p.X >= e.P0.X && p.X <= e.P1.X && p.Y >= e.P0.Y && p.Y <= e.P1.Y
}
