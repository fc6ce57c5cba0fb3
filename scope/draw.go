// scope/draw.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scope

import (
	"fmt"

	"github.com/blueboat-sim/blueboat/math"
	"github.com/blueboat-sim/blueboat/nav"
	"github.com/blueboat-sim/blueboat/sim"

	"github.com/gdamore/tcell/v2"
)

// Canvas is the subset of tcell.Screen that drawing uses.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

const hudRows = 2

var (
	styleBackground = tcell.StyleDefault.Background(tcell.NewRGBColor(15, 25, 40))
	styleTemplate   = styleBackground.Foreground(tcell.ColorGray)
	styleActive     = styleBackground.Foreground(tcell.ColorGreen)
	styleWake       = styleBackground.Foreground(tcell.ColorSteelBlue)
	styleFinish     = styleBackground.Foreground(tcell.ColorRed).Bold(true)
	styleBuoy       = styleBackground.Foreground(tcell.ColorOrangeRed).Bold(true)
	styleObstacle   = styleBackground.Foreground(tcell.ColorWhite)
	styleTarget     = styleBackground.Foreground(tcell.ColorAqua).Bold(true)
	styleBoat       = styleBackground.Foreground(tcell.NewRGBColor(255, 200, 50)).Bold(true)
	styleHUD        = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleAwaiting   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 200, 50))
	styleBanner     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(100, 255, 100)).Bold(true).Reverse(true)
)

// Glyphs for the boat, indexed by heading octant starting at +x and
// going clockwise on screen.
var boatGlyphs = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

func boatGlyph(heading float64) rune {
	h := math.NormalizeAngle(heading)
	if h < 0 {
		h += 2 * math.Pi
	}
	return boatGlyphs[int(h/(math.Pi/4)+0.5)%8]
}

// Draw renders the mission to c: the scenario window fills everything but
// the two HUD lines at the top.
func Draw(c Canvas, snap sim.MissionSnapshot) {
	width, height := c.Size()
	for y := range height {
		for x := range width {
			c.SetContent(x, y, ' ', nil, styleBackground)
		}
	}
	if height <= hudRows {
		drawHUD(c, width, snap)
		return
	}

	vp := MakeViewport(worldExtent(snap.Scenario), width, height-hudRows)
	plot := func(p math.Vector2, r rune, style tcell.Style) {
		if x, y, ok := vp.Cell(p); ok {
			c.SetContent(x, y+hudRows, r, nil, style)
		}
	}

	for _, p := range snap.Scenario.Waypoints {
		plot(p, '·', styleTemplate)
	}
	for _, p := range snap.Trajectory {
		plot(p, '~', styleWake)
	}
	for _, p := range snap.Boat.ActivePath {
		plot(p, '+', styleActive)
	}
	if n := len(snap.Boat.ActivePath); n > 0 {
		plot(snap.Boat.ActivePath[n-1], 'X', styleFinish)
	}

	for _, o := range snap.Scenario.Obstacles {
		drawObstacle(c, vp, o)
	}

	if snap.Boat.Planned && !snap.Completed {
		plot(snap.Boat.Target, '*', styleTarget)
	}
	plot(snap.Boat.Position, boatGlyph(snap.Boat.Heading), styleBoat)

	drawHUD(c, width, snap)
	if snap.Completed {
		drawBanner(c, width, height)
	}
}

// worldExtent returns the scenario window, grown if necessary so that
// the whole route is visible; stored scenarios may place it anywhere.
func worldExtent(sc sim.Scenario) math.Extent2D {
	e := sc.Config.Bounds()
	if len(sc.Waypoints) > 0 {
		r := math.Extent2DFromPoints(sc.Waypoints)
		e = e.Union(r.P0).Union(r.P1)
	}
	return e
}

func drawObstacle(c Canvas, vp Viewport, o nav.Obstacle) {
	r, style := 'o', styleObstacle
	if o.IsBuoy {
		r, style = '@', styleBuoy
	}

	x0, y0, _ := vp.Cell(o.Position.Sub(math.V2(o.Radius, o.Radius)))
	x1, y1, _ := vp.Cell(o.Position.Add(math.V2(o.Radius, o.Radius)))
	filled := false
	for y := max(y0, 0); y <= min(y1, vp.Rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, vp.Cols-1); x++ {
			if vp.Center(x, y).Distance(o.Position) <= o.Radius {
				c.SetContent(x, y+hudRows, r, nil, style)
				filled = true
			}
		}
	}
	// Small obstacles may not cover any cell center.
	if !filled {
		if x, y, ok := vp.Cell(o.Position); ok {
			c.SetContent(x, y+hudRows, r, nil, style)
		}
	}
}

func drawHUD(c Canvas, width int, snap sim.MissionSnapshot) {
	x, y := snap.Boat.Position.Point()
	drawText(c, 0, 0, width, styleHUD, fmt.Sprintf(" State: %s   Heading: %03.0f°   Position: %d, %d",
		snap.Boat.State.Label(), math.CompassDegrees(snap.Boat.Heading), x, y))

	pct := int(snap.Boat.Progress * 100)
	if snap.AwaitingArrival {
		drawText(c, 0, 1, width, styleAwaiting,
			fmt.Sprintf(" Progress: %d%% (awaiting physical arrival...)", pct))
	} else {
		drawText(c, 0, 1, width, styleHUD, fmt.Sprintf(" Progress: %d%%", pct))
	}
}

func drawBanner(c Canvas, width, height int) {
	lines := []string{"  MISSION COMPLETE  ", " [n] new route  [q] quit "}
	y := height/2 - 1
	for i, s := range lines {
		x := max(0, (width-len([]rune(s)))/2)
		drawText(c, x, y+i, width-x, styleBanner, s)
	}
}

// drawText draws a string at the given position, clipped to maxWidth.
func drawText(c Canvas, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		c.SetContent(x+col, y, r, nil, style)
		col++
	}
}
