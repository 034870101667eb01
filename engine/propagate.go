package engine

import "tileloom/catalog"

// drainResult carries the outcome of draining the propagation queue.
type drainResult struct {
	contradiction  bool
	propagations   int
	cellsTouched   int
	optionsCleared int
	maxEntropyDrop int
}

// drain pops cells from the work queue until it empties or a contradiction
// is found. This is AC-3 arc consistency specialized to the four-direction
// grid: allowed[d] is the union over surviving t of tiles that may sit at
// the d-side of t, so any neighbor tile outside it pairs with nothing.
func (e *Engine) drain() drainResult {
	var res drainResult
	e.drainCount++
	stamp := e.drainCount

	for {
		c, ok := e.queue.pop()
		if !ok {
			break
		}
		if e.propVer[c] == e.domVer[c] {
			// No new information since we last processed c.
			continue
		}
		e.propVer[c] = e.domVer[c]
		res.propagations++
		e.cumPropagations++
		if e.touchedStamp[c] != stamp {
			e.touchedStamp[c] = stamp
			res.cellsTouched++
		}

		e.computeAllowed(c)

		for d := catalog.Side(0); d < 4; d++ {
			nb, ok := e.neighbor(c, d)
			if !ok {
				continue
			}

			changed, before, after := e.domain.AndMask(nb, e.allowed[d])
			if !changed {
				continue
			}
			drop := before - after
			res.optionsCleared += drop
			e.cumOptionsCleared += drop
			if drop > res.maxEntropyDrop {
				res.maxEntropyDrop = drop
			}
			if drop > e.cumMaxEntropyDrop {
				e.cumMaxEntropyDrop = drop
			}

			if after == 0 {
				res.contradiction = true
				e.cumCellsTouched += res.cellsTouched
				return res
			}

			e.domVer[nb]++
			e.queue.push(nb)
		}
	}

	e.cumCellsTouched += res.cellsTouched
	return res
}

// computeAllowed fills e.allowed[d] for every direction with the union of
// compat[d][t] over every surviving variant t in cell c's domain, in a
// single scan.
func (e *Engine) computeAllowed(c int) {
	for d := range e.allowed {
		row := e.allowed[d]
		for i := range row {
			row[i] = 0
		}
	}

	e.scratchVariants = e.domain.SurvivingVariants(c, e.scratchVariants[:0])
	for _, t := range e.scratchVariants {
		for d := catalog.Side(0); d < 4; d++ {
			allowedRow := e.allowed[d]
			compatRow := e.compat.Allowed(d, t)
			for i := range allowedRow {
				allowedRow[i] |= compatRow[i]
			}
		}
	}
}

// neighbor returns the cell index adjacent to c in direction d, and false
// if that neighbor is off-grid.
func (e *Engine) neighbor(c int, d catalog.Side) (int, bool) {
	x, y := c%e.width, c/e.width
	switch d {
	case catalog.SideN:
		y--
	case catalog.SideE:
		x++
	case catalog.SideS:
		y++
	case catalog.SideW:
		x--
	}
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return 0, false
	}
	return y*e.width + x, true
}
