// scope/viewport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scope

import (
	"github.com/blueboat-sim/blueboat/math"
)

// Viewport maps the scenario window onto a grid of terminal cells. Both
// use y-down coordinates.
type Viewport struct {
	World      math.Extent2D
	Cols, Rows int
}

func MakeViewport(world math.Extent2D, cols, rows int) Viewport {
	return Viewport{World: world, Cols: max(cols, 1), Rows: max(rows, 1)}
}

// Cell returns the cell containing p and whether it is on the grid.
func (v Viewport) Cell(p math.Vector2) (int, int, bool) {
	w, h := v.World.Width(), v.World.Height()
	if w <= 0 || h <= 0 || !v.World.Inside(p) {
		return 0, 0, false
	}

	x := int((p.X - v.World.P0.X) / w * float64(v.Cols))
	y := int((p.Y - v.World.P0.Y) / h * float64(v.Rows))
	return x, y, x < v.Cols && y < v.Rows
}

// Center returns the world-space point at the center of the given cell.
func (v Viewport) Center(x, y int) math.Vector2 {
	return math.V2(
		v.World.P0.X+(float64(x)+0.5)/float64(v.Cols)*v.World.Width(),
		v.World.P0.Y+(float64(y)+0.5)/float64(v.Rows)*v.World.Height())
}
