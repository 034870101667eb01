package engine

// restartDecision is the outcome of handling a contradiction: either the
// engine reset and should continue, or the restart cap was exceeded and the
// session is terminally failed.
type restartDecision struct {
	exceeded bool
	attempt  int
}

// handleContradiction increments the attempt counter and, if it is still
// within maxRestarts, resets all mutable state and reapplies macro seeds.
// The PRNG is never reseeded, so successive attempts diverge.
func (e *Engine) handleContradiction() restartDecision {
	e.attempts++
	if e.attempts > e.maxRestarts {
		e.terminal = true
		return restartDecision{exceeded: true, attempt: e.attempts}
	}

	e.domain.FillAll()
	e.queue.reset()
	e.collapsed = 0
	for i := range e.domVer {
		e.domVer[i] = 0
		e.propVer[i] = 0
		e.isCollapsed[i] = false
	}

	e.macroSeed()

	return restartDecision{exceeded: false, attempt: e.attempts}
}
