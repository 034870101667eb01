package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tileloom/catalog"
	"tileloom/engine"
)

// progressInterval throttles ProgressMsg emission to roughly one message
// per window. Progress is advisory only, so coalescing is fine.
const progressInterval = 100 * time.Millisecond

// stepChunk is the step() budget used by the run loop between yields. Kept
// at one collapse so pause and reinitialize stay responsive.
const stepChunk = 1

// Runner owns exactly one *engine.Engine and serializes all host commands
// through Handle, running the engine's chunked loop on a background
// goroutine managed by an errgroup.Group. A context derived per
// generation implements the "generation token": Init and a fresh Run both
// cancel whatever loop preceded them.
type Runner struct {
	mu   sync.Mutex
	eng  *engine.Engine
	mode Mode

	group  *errgroup.Group
	cancel context.CancelFunc

	out chan any

	log *logrus.Entry
}

// New creates a Runner with no engine yet constructed. Send an InitCmd via
// Handle before Run/Pause/Step.
func New(log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.New()
	}
	return &Runner{
		mode: ModePaused,
		out:  make(chan any, 64),
		log:  log.WithField("component", "runner"),
	}
}

// Out returns the channel the runner publishes StateMsg/BatchMsg/
// ProgressMsg/RestartMsg/DoneMsg/ErrorMsg values to. The host is expected
// to drain it continuously.
func (r *Runner) Out() <-chan any { return r.out }

// Handle dispatches one host->engine command. Unknown command
// types are logged and ignored.
func (r *Runner) Handle(cmd any) {
	switch c := cmd.(type) {
	case InitCmd:
		r.handleInit(c)
	case RunCmd:
		r.handleRun()
	case PauseCmd:
		r.handlePause()
	case StepCmd:
		r.handleStep(c)
	default:
		r.log.WithField("type", fmt.Sprintf("%T", cmd)).Warn("ignoring unknown host command")
	}
}

func toMacroOptions(m *MacroOpts) engine.MacroOptions {
	if m == nil {
		return engine.MacroOptions{}
	}
	ch := 'g'
	for _, r := range m.GrassChar {
		ch = r
		break
	}
	return engine.MacroOptions{
		Continents:    m.Continents,
		RadiusMinFrac: m.RadiusMinFrac,
		RadiusMaxFrac: m.RadiusMaxFrac,
		GrassChar:     ch,
		CoreMinCount:  m.CoreMinCount,
		RimMinCount:   m.RimMinCount,
	}
}

func (r *Runner) handleInit(c InitCmd) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancelLocked()

	variants := catalog.Prepare(c.Tiles, c.Opts.AllowRotate)
	opts := engine.Options{
		Seed:        c.Opts.Seed,
		MaxRestarts: c.Opts.MaxRestarts,
		Macro:       toMacroOptions(c.Opts.MacroGrass),
	}

	eng, err := engine.New(variants, c.GridW, c.GridH, opts)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"gridW": c.GridW, "gridH": c.GridH, "tiles": len(c.Tiles),
		}).WithError(err).Error("engine init failed")
		r.eng = nil
		r.mode = ModeError
		r.publish(ErrorMsg{Message: err.Error()})
		return
	}

	r.eng = eng
	r.mode = ModePaused
	r.log.WithFields(logrus.Fields{
		"gridW": c.GridW, "gridH": c.GridH, "variants": len(variants),
	}).Info("engine initialized")
	r.publish(StateMsg{Mode: ModePaused})
}

func (r *Runner) handleRun() {
	r.mu.Lock()
	if r.eng == nil || r.eng.Terminal() {
		r.mu.Unlock()
		return
	}
	r.cancelLocked()

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mode = ModeRunning
	group, gctx := errgroup.WithContext(ctx)
	r.group = group
	r.mu.Unlock()

	r.publish(StateMsg{Mode: ModeRunning})
	group.Go(func() error {
		r.runLoop(gctx)
		return nil
	})
}

// runLoop performs the chunked step(1) loop: it checks ctx.Err() between
// chunks (never inside a step call) and stops as soon as the
// generation token is cancelled, the mode is no longer running, or the
// engine reaches a terminal state.
func (r *Runner) runLoop(ctx context.Context) {
	lastProgress := time.Time{}
	for {
		if ctx.Err() != nil {
			return
		}

		r.mu.Lock()
		if ctx.Err() != nil || r.mode != ModeRunning || r.eng == nil {
			r.mu.Unlock()
			return
		}
		events := r.eng.Step(stepChunk)
		terminal := r.eng.Terminal()
		stats := r.statsLocked()
		diag := toDiag(r.eng.Progress())
		r.mu.Unlock()

		r.emitEvents(events, stats)

		if terminal {
			r.mu.Lock()
			if r.mode == ModeRunning {
				r.mode = ModeDone
			}
			r.mu.Unlock()
			return
		}

		if time.Since(lastProgress) >= progressInterval {
			lastProgress = time.Now()
			r.publish(ProgressMsg{Diag: diag, Stats: &stats})
		}
	}
}

func (r *Runner) handlePause() {
	r.mu.Lock()
	if r.mode != ModeRunning {
		r.mu.Unlock()
		return
	}
	r.cancelLocked()
	r.mode = ModePaused
	group := r.group
	r.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}
	r.publish(StateMsg{Mode: ModePaused})
}

func (r *Runner) handleStep(c StepCmd) {
	n := c.Collapses
	if n <= 0 {
		n = 1
	}

	r.mu.Lock()
	r.cancelLocked()
	group := r.group
	r.mu.Unlock()
	if group != nil {
		_ = group.Wait()
	}

	r.mu.Lock()
	if r.eng == nil || r.eng.Terminal() {
		r.mu.Unlock()
		return
	}
	r.mode = ModeStepping
	events := r.eng.Step(n)
	terminal := r.eng.Terminal()
	stats := r.statsLocked()
	if terminal {
		r.mode = ModeDone
	} else {
		r.mode = ModePaused
	}
	r.mu.Unlock()

	r.emitEvents(events, stats)
	if !terminal {
		r.publish(StateMsg{Mode: ModePaused})
	}
}

// statsLocked snapshots the engine-facing batch stats. Callers hold mu and
// have already checked r.eng is non-nil.
func (r *Runner) statsLocked() BatchStats {
	return BatchStats{
		Collapsed: r.eng.Collapsed(),
		Cells:     r.eng.Cells(),
		Variants:  len(r.eng.Variants()),
		QueueSize: r.eng.QueueLen(),
		Remaining: r.eng.Cells() - r.eng.Collapsed(),
	}
}

// toDiag converts the engine's lifetime counters into the wire diagnostic
// payload.
func toDiag(p engine.ProgressEvent) ProgressDiag {
	return ProgressDiag{
		Propagations:   p.Propagations,
		CellsTouched:   p.CellsTouched,
		OptionsCleared: p.OptionsCleared,
		MaxEntropyDrop: p.MaxEntropyDrop,
	}
}

// emitEvents translates an engine.Event slice into host-facing messages.
func (r *Runner) emitEvents(events []engine.Event, stats BatchStats) {
	batch := BatchMsg{Stats: stats}
	for _, ev := range events {
		switch e := ev.(type) {
		case engine.CollapseEvent:
			batch.Collapsed = append(batch.Collapsed, CollapsedTile{Cell: e.Cell, Tile: e.Variant})
		case engine.RestartEvent:
			if len(batch.Collapsed) > 0 {
				r.publish(batch)
				batch = BatchMsg{Stats: stats}
			}
			r.log.WithField("attempt", e.Attempt).Info("restart")
			r.publish(RestartMsg{Attempt: e.Attempt})
		case engine.DoneEvent:
			if len(batch.Collapsed) > 0 {
				r.publish(batch)
				batch = BatchMsg{Stats: stats}
			}
			r.log.Info("done")
			r.publish(DoneMsg{})
		case engine.ErrorEvent:
			if len(batch.Collapsed) > 0 {
				r.publish(batch)
				batch = BatchMsg{Stats: stats}
			}
			r.log.WithField("message", e.Message).Error("terminal error")
			r.publish(ErrorMsg{Message: e.Message})
		}
	}
	if len(batch.Collapsed) > 0 {
		r.publish(batch)
	}
}

// publish sends msg to Out, dropping it if the host isn't draining fast
// enough rather than blocking the engine's execution context.
func (r *Runner) publish(msg any) {
	select {
	case r.out <- msg:
	default:
		r.log.Warn("output channel full, dropping message")
	}
}

// cancelLocked cancels the current generation token. Callers must hold mu.
func (r *Runner) cancelLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
