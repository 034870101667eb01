package catalog

import (
	"fmt"
	"strings"
)

// Variant is a concrete placeable unit: a base tile plus a fixed rotation
// in {0,1,2,3}, measured in 90-degree clockwise turns. Edges holds the
// already-rotated per-side rule lists, so downstream packages never need
// to reapply the rotation rule themselves.
type Variant struct {
	Def      TileDef
	Rotation int
	Edges    [numSides][]EdgeRule
}

// EdgeKeyMap maps an edge key to the maximum EdgeRule weight seen for that
// key on one side of one variant. Two sides are compatible iff their key
// maps share at least one key.
type EdgeKeyMap map[string]float64

// KeyMaps holds the four per-side EdgeKeyMaps for a single variant, indexed
// by Side.
type KeyMaps [numSides]EdgeKeyMap

// rotateEdgesCW applies one 90-degree clockwise rotation to a side array: the
// new N is the old W, new E is old N, new S is old E, new W is old S.
func rotateEdgesCW(edges [numSides][]EdgeRule) [numSides][]EdgeRule {
	var out [numSides][]EdgeRule
	out[SideN] = edges[SideW]
	out[SideE] = edges[SideN]
	out[SideS] = edges[SideE]
	out[SideW] = edges[SideS]
	return out
}

// dedupKey builds the (file, n-edges, e-edges, s-edges, w-edges) string used
// to suppress duplicate variants.
func dedupKey(file string, edges [numSides][]EdgeRule) string {
	var b strings.Builder
	b.WriteString(file)
	for side := range edges {
		b.WriteByte('|')
		for i, rule := range edges[side] {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%s:%g", rule.Key, rule.Weight)
		}
	}
	return b.String()
}

// Prepare expands a sequence of TileDefs into the ordered list of Variants
// that defines all bit positions for the rest of the engine.
//
// Ordering is stable: variants appear in the order they were first
// generated. When allowRotate is false, each TileDef yields exactly one
// variant at rotation 0. When true, rotation 0-3 are each considered in
// turn and (file, edges-tuple) duplicates are suppressed, earliest
// occurrence wins.
func Prepare(defs []TileDef, allowRotate bool) []Variant {
	seen := make(map[string]bool)
	variants := make([]Variant, 0, len(defs))

	for _, raw := range defs {
		def := raw.Normalize()
		edges := def.Edges

		rotations := 1
		if allowRotate {
			rotations = numSides
		}

		for r := 0; r < rotations; r++ {
			key := dedupKey(def.File, edges)
			if !seen[key] {
				seen[key] = true
				variants = append(variants, Variant{Def: def, Rotation: r, Edges: edges})
			}
			edges = rotateEdgesCW(edges)
		}
	}

	return variants
}

// KeyMapsFor builds the per-side EdgeKeyMap for one variant: for each side,
// the map from edge key to the maximum weight seen for that key.
func KeyMapsFor(v Variant) KeyMaps {
	var maps KeyMaps
	for side := range v.Edges {
		m := make(EdgeKeyMap)
		for _, rule := range v.Edges[side] {
			if cur, ok := m[rule.Key]; !ok || rule.Weight > cur {
				m[rule.Key] = rule.Weight
			}
		}
		maps[side] = m
	}
	return maps
}
