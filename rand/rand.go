// rand/rand.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a seedable PCG32 generator. Scenario generation takes a *Rand
// explicitly so that runs are reproducible from their seed; there is no
// package-level generator.
type Rand struct {
	r *pcg.PCG32
}

func New() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// Make returns a generator seeded with the given value.
func Make(seed int64) *Rand {
	r := New()
	r.Seed(seed)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

// Intn returns a uniform value in [0, n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.r.Bounded(uint32(n)))
}

// IntRange returns a uniform value in [lo, hi], inclusive of both ends.
func (r *Rand) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.Intn(hi-lo+1)
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

// Float64 returns a value in [0, 1].
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / (1<<32 - 1)
}

// Uniform returns a value in [lo, hi].
func (r *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}

func Sample[T any](r *Rand, t ...T) T {
	return SampleSlice(r, t)
}
