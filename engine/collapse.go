package engine

import "tileloom/catalog"

// findMinEntropyCell scans all cells starting from a random offset, tracking
// the uncollapsed cell with the smallest domain popcount, breaking ties by
// first-seen from the random start. A cell propagation already narrowed to a
// single variant still counts: it is finalized by an explicit collapse, so
// every cell produces exactly one collapse event over a full run. The scan
// early-exits at popcount 1, since nothing scores lower. ok is false if
// every cell is already collapsed, meaning generation is complete.
func (e *Engine) findMinEntropyCell() (cell int, ok bool) {
	n := e.width * e.height
	start := e.rng.intn(n)

	best := -1
	bestCount := 0

	for i := 0; i < n; i++ {
		c := (start + i) % n
		if e.isCollapsed[c] {
			continue
		}
		count := e.domain.PopCount(c)
		if best == -1 || count < bestCount {
			best = c
			bestCount = count
			if count == 1 {
				break
			}
		}
	}

	if best == -1 {
		return 0, false
	}
	return best, true
}

// neighborWeight returns the weight rule.Key contributes when matched
// against the opposite side of variant index nv's precomputed key map.
func (e *Engine) neighborWeight(nv int, opp catalog.Side, key string) float64 {
	return e.keyMaps[nv][opp][key]
}

// scoreVariant computes the sampling score for a candidate tile t in a
// cell's domain:
//
//	score(t) = max(t.weight, 0) * prod over collapsed neighbors n in
//	           direction d of (1 + sum over rules r in t.sides[d] of
//	           r.weight * key-weight-in-neighbor's-opposite-side(r.key))
func (e *Engine) scoreVariant(cell int, v catalog.Variant) float64 {
	weight := v.Def.Weight
	if weight < 0 {
		weight = 0
	}
	score := weight

	for d := catalog.Side(0); d < 4; d++ {
		nb, ok := e.neighbor(cell, d)
		if !ok {
			continue
		}
		if e.domain.PopCount(nb) != 1 {
			continue
		}
		vs := e.domain.SurvivingVariants(nb, e.scratchNeighbor[:0])
		e.scratchNeighbor = vs
		nv := vs[0]

		sum := 0.0
		for _, rule := range v.Edges[d] {
			sum += rule.Weight * e.neighborWeight(nv, d.Opposite(), rule.Key)
		}
		score *= 1 + sum
	}

	return score
}

// collapseOne picks a weighted tile for the cell and restricts it to that
// one variant. It returns the chosen variant index.
func (e *Engine) collapseOne(cell int) int {
	e.scratchVariants = e.domain.SurvivingVariants(cell, e.scratchVariants[:0])
	candidates := e.scratchVariants

	e.scratchScores = e.scratchScores[:0]
	total := 0.0
	for _, t := range candidates {
		s := e.scoreVariant(cell, e.variants[t])
		e.scratchScores = append(e.scratchScores, s)
		total += s
	}
	scores := e.scratchScores

	var chosenIdx int
	if total <= 0 {
		// Fall back to uniform selection over the domain.
		chosenIdx = e.rng.intn(len(candidates))
	} else {
		draw := e.rng.float64() * total
		acc := 0.0
		chosenIdx = len(candidates) - 1
		for i, s := range scores {
			acc += s
			if draw < acc {
				chosenIdx = i
				break
			}
		}
	}

	variant := candidates[chosenIdx]
	if len(candidates) > 1 {
		// A cell already narrowed to one variant has had its constraint
		// propagated; only a real restriction needs another drain.
		e.domain.RestrictToOne(cell, variant)
		e.domVer[cell]++
		e.queue.push(cell)
	}
	e.isCollapsed[cell] = true
	e.collapsed++
	return variant
}
