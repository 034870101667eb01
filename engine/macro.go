package engine

import (
	"math"
	"strings"
	"unicode"
)

// MacroOptions configures the macro bias pre-seeding step.
type MacroOptions struct {
	// Continents is the number K of disk regions carved per seeding pass.
	Continents int
	// RadiusMinFrac, RadiusMaxFrac bound the seed radius as a fraction of
	// min(width, height).
	RadiusMinFrac, RadiusMaxFrac float64
	// GrassChar is the designated character whose count in a variant's
	// base identifier decides how "grass-like" it is.
	GrassChar rune
	// CoreMinCount is the strict threshold: a variant belongs to the core
	// mask if its ID contains at least this many GrassChar runes.
	CoreMinCount int
	// RimMinCount is the loose threshold for the rim mask. It should be <=
	// CoreMinCount.
	RimMinCount int
}

// DefaultMacroOptions returns a reasonable macro seeding configuration.
func DefaultMacroOptions() MacroOptions {
	return MacroOptions{
		Continents:    3,
		RadiusMinFrac: 0.08,
		RadiusMaxFrac: 0.22,
		GrassChar:     'g',
		CoreMinCount:  2,
		RimMinCount:   1,
	}
}

// grassCount returns how many times ch appears in id, case-insensitively.
func grassCount(id string, ch rune) int {
	lower := strings.ToLower(id)
	ch = unicode.ToLower(ch)
	n := 0
	for _, r := range lower {
		if r == ch {
			n++
		}
	}
	return n
}

// buildGrassMasks precomputes the core (strict) and rim (loose) bitmasks
// over variants whose base identifier contains at least the threshold
// number of opts.GrassChar.
func buildGrassMasks(ids []string, wordsPer int, opts MacroOptions) (core, rim []uint32) {
	core = make([]uint32, wordsPer)
	rim = make([]uint32, wordsPer)
	ch := opts.GrassChar
	if ch == 0 {
		ch = 'g'
	}
	for i, id := range ids {
		count := grassCount(id, ch)
		if count >= opts.CoreMinCount {
			core[i/32] |= 1 << uint(i%32)
		}
		if count >= opts.RimMinCount {
			rim[i/32] |= 1 << uint(i%32)
		}
	}
	return core, rim
}

// macroSeed carves Continents disk-shaped regions into the domain grid,
// intersecting each with the core or rim grass mask depending on distance
// from the disk center. It never creates a contradiction: the
// per-cell intersect is the non-emptying variant from tiledomain.
//
// Cells whose domain changed are enqueued for propagation.
func (e *Engine) macroSeed() {
	opts := e.macroOpts
	if opts.Continents <= 0 {
		return
	}
	minDim := e.width
	if e.height < minDim {
		minDim = e.height
	}

	for k := 0; k < opts.Continents; k++ {
		cx := e.rng.intn(e.width)
		cy := e.rng.intn(e.height)

		rFrac := opts.RadiusMinFrac + e.rng.float64()*(opts.RadiusMaxFrac-opts.RadiusMinFrac)
		r := rFrac * float64(minDim)
		coreR := math.Floor(r * 0.85)

		minX, maxX := clampInt(cx-int(r), 0, e.width-1), clampInt(cx+int(r), 0, e.width-1)
		minY, maxY := clampInt(cy-int(r), 0, e.height-1), clampInt(cy+int(r), 0, e.height-1)

		hasCore := len(e.grassCore) > 0 && popAny(e.grassCore)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				dx, dy := float64(x-cx), float64(y-cy)
				dist := dx*dx + dy*dy
				if dist > r*r {
					continue
				}

				c := y*e.width + x
				var mask []uint32
				if dist <= coreR*coreR && hasCore {
					mask = e.grassCore
				} else {
					mask = e.grassRim
				}

				if e.domain.IntersectIfNonEmpty(c, mask) {
					e.domVer[c]++
					e.queue.push(c)
				}
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func popAny(mask []uint32) bool {
	for _, w := range mask {
		if w != 0 {
			return true
		}
	}
	return false
}
