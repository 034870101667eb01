// Package catalog builds the ordered list of placeable tile Variants that
// defines every bit position used by the rest of the engine.
package catalog

import "strings"

// Side indexes the four edges of a tile, in the order N, E, S, W.
type Side int

const (
	SideN Side = iota
	SideE
	SideS
	SideW
)

// numSides is the number of edges a tile has.
const numSides = 4

// String returns the lowercase name of the side.
func (s Side) String() string {
	switch s {
	case SideN:
		return "n"
	case SideE:
		return "e"
	case SideS:
		return "s"
	case SideW:
		return "w"
	default:
		return "unknown"
	}
}

// Opposite returns the side facing the other way across a shared edge.
func (s Side) Opposite() Side {
	return (s + 2) % numSides
}

// EdgeRule is one accepted socket on a tile side: a normalized key and the
// weight it contributes when matched against a neighbor's opposite side.
type EdgeRule struct {
	Key    string
	Weight float64
}

// normalizeKey trims and lowercases an edge key. Rules with an empty key
// after normalization are dropped by the caller.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// TileDef is a base tile definition: identity, artwork reference, a
// positive weight, and one EdgeRule list per side.
type TileDef struct {
	ID     string
	File   string
	Weight float64
	Edges  [numSides][]EdgeRule
}

// normalizedWeight coerces a non-positive weight to 1, per the catalog's
// ingestion rule.
func normalizedWeight(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// normalizedEdges trims/lowercases every rule key and drops rules whose key
// is empty after normalization.
func normalizedEdges(edges [numSides][]EdgeRule) [numSides][]EdgeRule {
	var out [numSides][]EdgeRule
	for side := range edges {
		for _, rule := range edges[side] {
			key := normalizeKey(rule.Key)
			if key == "" {
				continue
			}
			out[side] = append(out[side], EdgeRule{Key: key, Weight: rule.Weight})
		}
	}
	return out
}

// Normalize returns a TileDef with a coerced weight and normalized edge
// rules. Normalize is idempotent: Normalize(Normalize(t)) == Normalize(t).
func (t TileDef) Normalize() TileDef {
	return TileDef{
		ID:     t.ID,
		File:   t.File,
		Weight: normalizedWeight(t.Weight),
		Edges:  normalizedEdges(t.Edges),
	}
}
