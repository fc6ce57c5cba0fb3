// rand/rand_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import "testing"

func TestSeedReproducible(t *testing.T) {
	a, b := Make(42), Make(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Uint32(), b.Uint32(); x != y {
			t.Fatalf("step %d: %d != %d for identical seeds", i, x, y)
		}
	}

	c := Make(43)
	same := 0
	a = Make(42)
	for i := 0; i < 100; i++ {
		if a.Uint32() == c.Uint32() {
			same++
		}
	}
	if same > 5 {
		t.Errorf("different seeds produced %d identical values", same)
	}
}

func TestRanges(t *testing.T) {
	r := Make(7)
	for i := 0; i < 10000; i++ {
		if v := r.Intn(10); v < 0 || v >= 10 {
			t.Fatalf("Intn(10) = %d", v)
		}
		if v := r.IntRange(50, 950); v < 50 || v > 950 {
			t.Fatalf("IntRange(50, 950) = %d", v)
		}
		if v := r.Float64(); v < 0 || v > 1 {
			t.Fatalf("Float64() = %f", v)
		}
		if v := r.Uniform(250, 450); v < 250 || v > 450 {
			t.Fatalf("Uniform(250, 450) = %f", v)
		}
	}
	if r.Intn(0) != 0 {
		t.Errorf("Intn(0) should be 0")
	}
}

func TestIntRangeCoversEndpoints(t *testing.T) {
	r := Make(1)
	var counts [3]int
	for i := 0; i < 3000; i++ {
		counts[r.IntRange(0, 2)]++
	}
	slop := 150
	for i, c := range counts {
		if c < 1000-slop || c > 1000+slop {
			t.Errorf("value %d sampled %d times; expected roughly 1000", i, c)
		}
	}
}

func TestSample(t *testing.T) {
	r := Make(3)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[Sample(r, "corner", "random")] = true
		if v := SampleSlice(r, []int{5}); v != 5 {
			t.Fatalf("SampleSlice of single element returned %d", v)
		}
	}
	if !seen["corner"] || !seen["random"] {
		t.Errorf("Sample never returned one of the options: %v", seen)
	}
}
