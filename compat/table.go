// Package compat builds the four-directional tile compatibility table: for
// every (direction, tile) pair, the bitset of tile variants that may sit on
// that side.
package compat

import (
	"math/bits"

	"tileloom/catalog"
)

// wordBits is the width of one word in a compatibility/domain bitset.
const wordBits = 32

// words returns how many uint32 words are needed to hold n bits.
func words(n int) int {
	return (n + wordBits - 1) / wordBits
}

// Table holds, for each of the four directions, one bitset per variant:
// compat[d][a] is the set of variant indices that may sit on the d-side of
// variant a.
type Table struct {
	variants int
	wordsPer int
	// rows[d] is a flat array of wordsPer-word bitsets, one per variant.
	rows [4][]uint32
}

// Variants returns the number of variants the table was built over.
func (t *Table) Variants() int { return t.variants }

// WordsPerRow returns the number of uint32 words in one variant's bitset.
func (t *Table) WordsPerRow() int { return t.wordsPer }

// row returns the bitset slice for variant a in direction d.
func (t *Table) row(d catalog.Side, a int) []uint32 {
	off := a * t.wordsPer
	return t.rows[d][off : off+t.wordsPer]
}

// Allowed returns the bitset of variants that may sit on the d-side of
// variant a.
func (t *Table) Allowed(d catalog.Side, a int) []uint32 {
	return t.row(d, a)
}

// Test reports whether variant b may sit on the d-side of variant a.
func (t *Table) Test(d catalog.Side, a, b int) bool {
	row := t.row(d, a)
	return row[b/wordBits]&(1<<(uint(b)%wordBits)) != 0
}

// sharesKey reports whether two EdgeKeyMaps have at least one key in
// common.
func sharesKey(a, b catalog.EdgeKeyMap) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// Build computes compat[d][a] for every direction and every variant.
//
// Pairwise test: variants a and b are compatible across direction d iff the
// edge key sets of a.sides[d] and b.sides[opp(d)] intersect. This is
// O(|V|^2 * 4); |V| is small relative to grid cells.
func Build(variants []catalog.Variant) *Table {
	n := len(variants)
	w := words(n)

	keyMaps := make([]catalog.KeyMaps, n)
	for i, v := range variants {
		keyMaps[i] = catalog.KeyMapsFor(v)
	}

	t := &Table{variants: n, wordsPer: w}
	for d := 0; d < 4; d++ {
		t.rows[d] = make([]uint32, n*w)
	}

	for a := 0; a < n; a++ {
		for d := catalog.Side(0); d < 4; d++ {
			opp := d.Opposite()
			rowA := t.row(d, a)
			for b := 0; b < n; b++ {
				if sharesKey(keyMaps[a][d], keyMaps[b][opp]) {
					rowA[b/wordBits] |= 1 << (uint(b) % wordBits)
				}
			}
		}
	}

	return t
}

// PopCount returns the number of set bits in a bitset row.
func PopCount(row []uint32) int {
	n := 0
	for _, w := range row {
		n += bits.OnesCount32(w)
	}
	return n
}
