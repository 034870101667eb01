// Package engine implements the tile collapse generation engine: the
// catalog-driven compatibility table, per-cell bitset domains, propagation,
// weighted collapse, macro seeding, and the cooperative stepping protocol
// a host drives between yields.
package engine

import (
	"fmt"

	"tileloom/catalog"
	"tileloom/compat"
	"tileloom/tiledomain"
)

// ConfigError is returned by New when the engine cannot be constructed: a
// non-positive grid dimension or an empty variant catalog. No
// partial state is left behind.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: invalid configuration: %s", e.Reason)
}

// Options configures engine construction.
type Options struct {
	Seed        uint32
	MaxRestarts int
	Macro       MacroOptions
}

// DefaultOptions returns a reasonable engine configuration.
func DefaultOptions() Options {
	return Options{
		Seed:        12345,
		MaxRestarts: 10,
		Macro:       DefaultMacroOptions(),
	}
}

// Engine owns all per-generation state: the immutable catalog/compatibility
// table built at construction, and the mutable domain/queue/version arrays
// reinitialized on construction and on every restart.
type Engine struct {
	width, height int
	variants      []catalog.Variant
	keyMaps       []catalog.KeyMaps
	compat        *compat.Table

	domain      *tiledomain.Grid
	queue       *workQueue
	domVer      []int
	propVer     []int
	isCollapsed []bool

	rng         *rng
	attempts    int
	maxRestarts int
	macroOpts   MacroOptions
	grassCore   []uint32
	grassRim    []uint32

	// Preallocated scratch, never reallocated on the hot path.
	allowed         [4][]uint32
	scratchVariants []int
	scratchNeighbor []int
	scratchScores   []float64
	touchedStamp    []int
	eventBuf        []Event

	collapsed  int
	drainCount int
	terminal   bool

	// Lifetime propagation counters, exposed via Progress for a host's
	// diagnostic channel. Never reset by a restart: they describe work done
	// by this engine instance, not this attempt.
	cumPropagations   int
	cumCellsTouched   int
	cumOptionsCleared int
	cumMaxEntropyDrop int
}

// New constructs an Engine for the given variant catalog and grid
// dimensions. It fails with a *ConfigError for a non-positive grid or an
// empty catalog; no partial state is left behind in that case.
func New(variants []catalog.Variant, width, height int, opts Options) (*Engine, error) {
	if width <= 0 || height <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("grid dimensions must be positive, got %dx%d", width, height)}
	}
	if len(variants) == 0 {
		return nil, &ConfigError{Reason: "catalog must contain at least one variant"}
	}

	cells := width * height
	compatTable := compat.Build(variants)

	keyMaps := make([]catalog.KeyMaps, len(variants))
	ids := make([]string, len(variants))
	for i, v := range variants {
		keyMaps[i] = catalog.KeyMapsFor(v)
		ids[i] = v.Def.ID
	}

	wordsPer := compatTable.WordsPerRow()
	grassCore, grassRim := buildGrassMasks(ids, wordsPer, opts.Macro)

	e := &Engine{
		width:       width,
		height:      height,
		variants:    variants,
		keyMaps:     keyMaps,
		compat:      compatTable,
		domain:      tiledomain.New(cells, len(variants)),
		queue:       newWorkQueue(cells),
		domVer:      make([]int, cells),
		propVer:     make([]int, cells),
		isCollapsed: make([]bool, cells),
		rng:         newRNG(opts.Seed),
		maxRestarts: opts.MaxRestarts,
		macroOpts:   opts.Macro,
		grassCore:   grassCore,
		grassRim:    grassRim,
	}
	e.touchedStamp = make([]int, cells)
	for d := range e.allowed {
		e.allowed[d] = make([]uint32, wordsPer)
	}
	e.scratchVariants = make([]int, 0, len(variants))
	e.scratchNeighbor = make([]int, 0, len(variants))
	e.scratchScores = make([]float64, 0, len(variants))
	e.eventBuf = make([]Event, 0, 16)

	e.macroSeed()

	return e, nil
}

// Width returns the grid width in cells.
func (e *Engine) Width() int { return e.width }

// Height returns the grid height in cells.
func (e *Engine) Height() int { return e.height }

// Cells returns the total number of grid cells.
func (e *Engine) Cells() int { return e.width * e.height }

// Attempts returns the number of contradictions encountered so far.
func (e *Engine) Attempts() int { return e.attempts }

// Collapsed returns the number of explicit collapses performed in the
// current attempt. It resets to zero on restart.
func (e *Engine) Collapsed() int { return e.collapsed }

// QueueLen returns the number of cells pending propagation.
func (e *Engine) QueueLen() int { return e.queue.len() }

// Terminal reports whether the engine has reached a Done or Error state.
// Subsequent Step calls are no-ops.
func (e *Engine) Terminal() bool { return e.terminal }

// Variants returns the catalog this engine was built with.
func (e *Engine) Variants() []catalog.Variant { return e.variants }

// Progress reports this engine's lifetime propagation counters as a
// ProgressEvent, for a host that wants to poll diagnostics independently
// of the per-Step event sequence.
func (e *Engine) Progress() ProgressEvent {
	return ProgressEvent{
		Propagations:   e.cumPropagations,
		CellsTouched:   e.cumCellsTouched,
		OptionsCleared: e.cumOptionsCleared,
		MaxEntropyDrop: e.cumMaxEntropyDrop,
	}
}

// PopCountAt returns the number of surviving variants at cell (x, y).
func (e *Engine) PopCountAt(x, y int) int {
	return e.domain.PopCount(y*e.width + x)
}

// CollapsedVariantAt returns the surviving variant index at (x, y) and
// whether the cell is collapsed (popcount exactly 1).
func (e *Engine) CollapsedVariantAt(x, y int) (int, bool) {
	c := y*e.width + x
	if e.domain.PopCount(c) != 1 {
		return 0, false
	}
	vs := e.domain.SurvivingVariants(c, nil)
	return vs[0], true
}
