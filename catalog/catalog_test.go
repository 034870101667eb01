package catalog

import (
	"reflect"
	"testing"
)

func symmetricEdges(key string) [numSides][]EdgeRule {
	var edges [numSides][]EdgeRule
	for side := range edges {
		edges[side] = []EdgeRule{{Key: key, Weight: 1}}
	}
	return edges
}

func TestPrepareNoRotation(t *testing.T) {
	defs := []TileDef{
		{ID: "a", File: "a.png", Weight: 1, Edges: symmetricEdges("x")},
		{ID: "b", File: "b.png", Weight: 1, Edges: symmetricEdges("y")},
	}

	variants := Prepare(defs, false)
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	for _, v := range variants {
		if v.Rotation != 0 {
			t.Errorf("expected rotation 0 with allowRotate=false, got %d", v.Rotation)
		}
	}
}

func TestPrepareRotationDedupSymmetric(t *testing.T) {
	// A tile whose edges are identical on every side is 4-fold symmetric:
	// enabling rotation must not grow the variant set.
	defs := []TileDef{
		{ID: "a", File: "a.png", Weight: 1, Edges: symmetricEdges("x")},
	}

	withoutRotation := Prepare(defs, false)
	withRotation := Prepare(defs, true)

	if len(withRotation) != len(withoutRotation) {
		t.Fatalf("rotation dedup failed: got %d variants, want %d", len(withRotation), len(withoutRotation))
	}
}

func TestPrepareRotationProducesDistinctVariants(t *testing.T) {
	var edges [numSides][]EdgeRule
	edges[SideN] = []EdgeRule{{Key: "road", Weight: 1}}
	edges[SideE] = []EdgeRule{{Key: "grass", Weight: 1}}
	edges[SideS] = []EdgeRule{{Key: "grass", Weight: 1}}
	edges[SideW] = []EdgeRule{{Key: "grass", Weight: 1}}

	defs := []TileDef{{ID: "road-end", File: "road.png", Weight: 1, Edges: edges}}

	variants := Prepare(defs, true)
	if len(variants) != 4 {
		t.Fatalf("expected 4 distinct rotations, got %d", len(variants))
	}

	// Rotation rule: N-side of a 90deg-CW-rotated tile equals the original
	// W-side. After one rotation, the "road" key should have moved from N to E.
	if variants[1].Edges[SideE][0].Key != "road" {
		t.Errorf("rotation rule violated: expected road key on E side after one CW rotation, got %v", variants[1].Edges[SideE])
	}
}

func TestPrepareDropsEmptyKeysAndCoercesWeight(t *testing.T) {
	var edges [numSides][]EdgeRule
	edges[SideN] = []EdgeRule{{Key: "  X  ", Weight: 2}, {Key: "   ", Weight: 1}}

	defs := []TileDef{{ID: "a", File: "a.png", Weight: -5, Edges: edges}}
	variants := Prepare(defs, false)

	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	v := variants[0]
	if v.Def.Weight != 1 {
		t.Errorf("expected non-positive weight coerced to 1, got %g", v.Def.Weight)
	}
	if len(v.Edges[SideN]) != 1 || v.Edges[SideN][0].Key != "x" {
		t.Errorf("expected normalized single key 'x', got %v", v.Edges[SideN])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	def := TileDef{ID: "a", File: "a.png", Weight: -1, Edges: symmetricEdges("  X ")}
	once := def.Normalize()
	twice := once.Normalize()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize is not idempotent: once=%+v twice=%+v", once, twice)
	}
}
