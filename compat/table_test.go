package compat

import (
	"testing"

	"tileloom/catalog"
)

func edgeAll(key string) [4][]catalog.EdgeRule {
	var e [4][]catalog.EdgeRule
	for s := range e {
		e[s] = []catalog.EdgeRule{{Key: key, Weight: 1}}
	}
	return e
}

func TestBuildSymmetry(t *testing.T) {
	defs := []catalog.TileDef{
		{ID: "a", File: "a.png", Weight: 1, Edges: edgeAll("x")},
		{ID: "b", File: "b.png", Weight: 1, Edges: edgeAll("y")},
	}
	variants := catalog.Prepare(defs, false)
	table := Build(variants)

	// b in compat[d][a] iff a in compat[opp(d)][b].
	for d := catalog.Side(0); d < 4; d++ {
		for a := 0; a < table.Variants(); a++ {
			for b := 0; b < table.Variants(); b++ {
				got := table.Test(d, a, b)
				want := table.Test(d.Opposite(), b, a)
				if got != want {
					t.Errorf("symmetry violated at d=%v a=%d b=%d: Test(d,a,b)=%v Test(opp,b,a)=%v", d, a, b, got, want)
				}
			}
		}
	}
}

func TestBuildIncompatibleKeys(t *testing.T) {
	defs := []catalog.TileDef{
		{ID: "a", File: "a.png", Weight: 1, Edges: edgeAll("x")},
		{ID: "b", File: "b.png", Weight: 1, Edges: edgeAll("y")},
	}
	variants := catalog.Prepare(defs, false)
	table := Build(variants)

	for d := catalog.Side(0); d < 4; d++ {
		if table.Test(d, 0, 1) {
			t.Errorf("expected variant 0 (%q) and variant 1 (%q) incompatible on side %v", "x", "y", d)
		}
	}
}

func TestBuildEmptySideIncompatible(t *testing.T) {
	defs := []catalog.TileDef{
		{ID: "a", File: "a.png", Weight: 1, Edges: [4][]catalog.EdgeRule{{{Key: "x", Weight: 1}}}},
	}
	variants := catalog.Prepare(defs, false)
	table := Build(variants)

	// An empty key set on either side makes the pair incompatible, even with itself.
	if table.Test(catalog.SideE, 0, 0) {
		t.Error("expected incompatibility when one side has no edge rules")
	}
}
