package engine

import (
	"testing"

	"tileloom/catalog"
)

// A grass tile and a rock tile that only pair with themselves: once macro
// seeding pins any cell to grass, propagation must spread grass-only
// domains across the whole grid.
func grassRockDefs() []catalog.TileDef {
	return []catalog.TileDef{
		uniformTile("grass", "g"),
		uniformTile("rock", "r"),
	}
}

func TestMacroSeedPropagates(t *testing.T) {
	opts := Options{
		Seed:        7,
		MaxRestarts: 0,
		Macro: MacroOptions{
			Continents:    1,
			RadiusMinFrac: 0.5,
			RadiusMaxFrac: 0.5,
			GrassChar:     'g',
			CoreMinCount:  1,
			RimMinCount:   1,
		},
	}
	e := newTestEngine(t, grassRockDefs(), 6, 6, opts)

	// The seed pinned at least the disk center to grass-only before any
	// Step ran.
	seeded := 0
	for c := 0; c < e.Cells(); c++ {
		if e.domain.PopCount(c) == 1 {
			seeded++
		}
	}
	if seeded == 0 {
		t.Fatal("expected macro seeding to restrict at least one cell")
	}

	// A zero-budget Step drains the seeding queue; grass-only must have
	// propagated to every cell, since rock can never border grass.
	events := e.Step(0)
	for _, ev := range events {
		if errEv, ok := ev.(ErrorEvent); ok {
			t.Fatalf("unexpected error draining macro seeds: %v", errEv)
		}
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			v, ok := e.CollapsedVariantAt(x, y)
			if !ok {
				t.Fatalf("cell (%d,%d) not reduced by macro propagation, popcount=%d", x, y, e.PopCountAt(x, y))
			}
			if e.variants[v].Def.ID != "grass" {
				t.Errorf("cell (%d,%d) propagated to %q, want grass", x, y, e.variants[v].Def.ID)
			}
		}
	}
}

// With a zero core threshold every variant is
// grass-like, so seeding intersects each cell with all variants and changes
// nothing.
func TestMacroZeroThresholdIsIdentity(t *testing.T) {
	opts := Options{
		Seed:        12345,
		MaxRestarts: 0,
		Macro: MacroOptions{
			Continents:    3,
			RadiusMinFrac: 0.08,
			RadiusMaxFrac: 0.22,
			GrassChar:     'g',
			CoreMinCount:  0,
			RimMinCount:   0,
		},
	}
	defs := grassRockDefs()
	e := newTestEngine(t, defs, 5, 5, opts)

	for c := 0; c < e.Cells(); c++ {
		if e.domain.PopCount(c) != len(defs) {
			t.Fatalf("cell %d changed by all-variants seeding: popcount=%d, want %d", c, e.domain.PopCount(c), len(defs))
		}
	}
	if e.QueueLen() != 0 {
		t.Errorf("expected no cells enqueued by identity seeding, queue=%d", e.QueueLen())
	}
}

// After done, every pair of adjacent collapsed cells
// is compatible in the direction joining them.
func TestCollapsedNeighborsCompatible(t *testing.T) {
	a := catalog.TileDef{ID: "a", File: "a.png", Weight: 1, Edges: [4][]catalog.EdgeRule{
		{{Key: "x", Weight: 1}}, {{Key: "u", Weight: 1}}, {{Key: "y", Weight: 1}}, {{Key: "v", Weight: 1}},
	}}
	b := catalog.TileDef{ID: "b", File: "b.png", Weight: 1, Edges: [4][]catalog.EdgeRule{
		{{Key: "y", Weight: 1}}, {{Key: "v", Weight: 1}}, {{Key: "x", Weight: 1}}, {{Key: "u", Weight: 1}},
	}}

	opts := Options{Seed: 4242, MaxRestarts: 5, Macro: noMacro()}
	e := newTestEngine(t, []catalog.TileDef{a, b}, 4, 4, opts)

	for !e.Terminal() {
		e.Step(4)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := y*4 + x
			vc, ok := e.CollapsedVariantAt(x, y)
			if !ok {
				t.Fatalf("cell (%d,%d) not collapsed after done", x, y)
			}
			for d := catalog.Side(0); d < 4; d++ {
				nb, inGrid := e.neighbor(c, d)
				if !inGrid {
					continue
				}
				vn, ok := e.CollapsedVariantAt(nb%4, nb/4)
				if !ok {
					t.Fatalf("neighbor cell %d not collapsed after done", nb)
				}
				if !e.compat.Test(d, vc, vn) {
					t.Errorf("adjacent cells %d and %d hold incompatible variants %d/%d across %v", c, nb, vc, vn, d)
				}
			}
		}
	}
}
