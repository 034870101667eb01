package engine

import "fmt"

// Step performs, in order:
//
//  1. Drain the propagation queue fully, or until a contradiction triggers
//     a restart or a terminal error.
//  2. Up to maxCollapses times: select the minimum-entropy cell, collapse
//     it, and drain the queue again.
//
// It returns the ordered event sequence produced by this call. The
// returned slice is reused across calls and is only valid until the next
// call to Step.
//
// If the engine is already in a terminal state (Done or Error), Step
// returns an empty slice and does not mutate any state.
func (e *Engine) Step(maxCollapses int) []Event {
	e.eventBuf = e.eventBuf[:0]
	if e.terminal {
		return e.eventBuf
	}

	if e.drainUntilStable() {
		return e.eventBuf
	}

	for i := 0; i < maxCollapses; i++ {
		cell, ok := e.findMinEntropyCell()
		if !ok {
			e.eventBuf = append(e.eventBuf, DoneEvent{})
			e.terminal = true
			return e.eventBuf
		}

		variant := e.collapseOne(cell)
		e.eventBuf = append(e.eventBuf, CollapseEvent{Cell: cell, Variant: variant})

		if e.drainUntilStable() {
			return e.eventBuf
		}
	}

	return e.eventBuf
}

// drainUntilStable drains the propagation queue, handling contradictions by
// resetting and retrying, until the queue empties or the restart cap is
// exceeded. It appends RestartEvent/ErrorEvent to e.eventBuf as it goes and
// reports whether it stopped in a terminal error state.
func (e *Engine) drainUntilStable() (terminalError bool) {
	for {
		res := e.drain()
		if !res.contradiction {
			return false
		}

		decision := e.handleContradiction()
		if decision.exceeded {
			e.eventBuf = append(e.eventBuf, ErrorEvent{
				Message: fmt.Sprintf("generation failed after %d restarts.", e.maxRestarts),
			})
			return true
		}

		e.eventBuf = append(e.eventBuf, RestartEvent{Attempt: decision.attempt})
		// Domain, queue, and versions were just reset and macro-reseeded;
		// loop to drain whatever the reseed enqueued.
	}
}
