// nav/route.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"slices"

	"github.com/blueboat-sim/blueboat/math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LemniscateOptions controls the sampling and size of a patrol route.
type LemniscateOptions struct {
	NumPoints int     `json:"num_points" mapstructure:"num_points"`
	Margin    float64 `json:"margin" mapstructure:"margin"`
}

func DefaultLemniscateOptions() LemniscateOptions {
	return LemniscateOptions{NumPoints: 120, Margin: 80}
}

// GenerateLemniscate returns opts.NumPoints samples of a closed
// figure-eight whose long axis runs along the line from p1 to p2 and is
// centered at their midpoint. The half-width is half the anchor
// separation plus the margin; the lobes are 0.6 times as tall as the
// curve is wide. The first point is repeated implicitly: the curve closes
// from the last sample back to the first.
func GenerateLemniscate(p1, p2 math.Vector2, opts LemniscateOptions) []math.Vector2 {
	if opts.NumPoints <= 0 {
		return nil
	}

	mid := math.Mid(p1, p2)
	diff := p2.Sub(p1)
	rot := math.Rotator(diff.Angle())

	width := diff.Length()/2 + opts.Margin
	height := width * 0.6

	pts := make([]math.Vector2, opts.NumPoints)
	for i := range pts {
		t := float64(i) / float64(opts.NumPoints) * 2 * math.Pi
		local := math.V2(width*math.Cos(t), height*math.Sin(2*t)/2)
		pts[i] = mid.Add(rot(local))
	}
	return pts
}

///////////////////////////////////////////////////////////////////////////
// RouteCache

type routeKey struct {
	p1, p2 math.Vector2
	opts   LemniscateOptions
}

// RouteCache memoizes generated route templates. It hands out copies, so
// callers are free to modify what they get back. It is safe for
// concurrent use.
type RouteCache struct {
	cache *lru.Cache[routeKey, []math.Vector2]
}

func NewRouteCache(size int) *RouteCache {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New[routeKey, []math.Vector2](size)
	if err != nil {
		// Only returned for a non-positive size, which was handled above.
		panic(err)
	}
	return &RouteCache{cache: c}
}

// Lemniscate returns the route GenerateLemniscate would return for the
// given arguments. A nil *RouteCache generates the route every time.
func (rc *RouteCache) Lemniscate(p1, p2 math.Vector2, opts LemniscateOptions) []math.Vector2 {
	if rc == nil {
		return GenerateLemniscate(p1, p2, opts)
	}

	key := routeKey{p1: p1, p2: p2, opts: opts}
	if pts, ok := rc.cache.Get(key); ok {
		return slices.Clone(pts)
	}

	pts := GenerateLemniscate(p1, p2, opts)
	rc.cache.Add(key, pts)
	return slices.Clone(pts)
}

func (rc *RouteCache) Len() int {
	if rc == nil {
		return 0
	}
	return rc.cache.Len()
}
