// Package runner drives an *engine.Engine from a background execution
// context and exchanges the host<->engine command/message protocol with
// it. Every message type carries json tags so a future wire
// transport could marshal it unchanged, even though this repository passes
// these values over Go channels in-process.
package runner

import "tileloom/catalog"

// Mode is the engine's externally-visible lifecycle state.
type Mode string

const (
	ModePaused   Mode = "paused"
	ModeRunning  Mode = "running"
	ModeStepping Mode = "stepping"
	ModeDone     Mode = "done"
	ModeError    Mode = "error"
)

// InitCmd rebuilds the engine from scratch and cancels any in-flight run
// loop, leaving the runner paused.
type InitCmd struct {
	Tiles []catalog.TileDef `json:"tiles"`
	GridW int               `json:"gridW"`
	GridH int               `json:"gridH"`
	Opts  InitOpts          `json:"opts"`
}

// InitOpts mirrors init's opts{seed, maxRestarts, macroGrass?} object.
type InitOpts struct {
	Seed        uint32     `json:"seed"`
	MaxRestarts int        `json:"maxRestarts"`
	AllowRotate bool       `json:"allowRotate"`
	MacroGrass  *MacroOpts `json:"macroGrass,omitempty"`
}

// MacroOpts mirrors engine.MacroOptions over the wire; a nil *MacroGrass on
// InitOpts disables macro seeding entirely (Continents defaults to 0).
type MacroOpts struct {
	Continents    int     `json:"continents"`
	RadiusMinFrac float64 `json:"radiusMinFrac"`
	RadiusMaxFrac float64 `json:"radiusMaxFrac"`
	GrassChar     string  `json:"grassChar"`
	CoreMinCount  int     `json:"coreMinCount"`
	RimMinCount   int     `json:"rimMinCount"`
}

// RunCmd starts a chunked loop of step(1) calls interleaved with yields
// .
type RunCmd struct{}

// PauseCmd requests the run loop stop at the next chunk boundary.
type PauseCmd struct{}

// StepCmd stops any run loop and performs exactly one step(Collapses) call
// . Collapses defaults to 1 when zero.
type StepCmd struct {
	Collapses int `json:"collapses,omitempty"`
}

// StateMsg reports the engine's current lifecycle state.
type StateMsg struct {
	Mode            Mode   `json:"mode"`
	TargetCollapses int    `json:"targetCollapses,omitempty"`
	Message         string `json:"message,omitempty"`
}

// CollapsedTile is one entry of BatchMsg.Collapsed.
type CollapsedTile struct {
	Cell int `json:"cell"`
	Tile int `json:"tile"`
}

// BatchStats summarizes a completed chunk.
type BatchStats struct {
	Collapsed int `json:"collapsed"`
	Cells     int `json:"cells"`
	Variants  int `json:"variants"`
	QueueSize int `json:"queueSize"`
	Remaining int `json:"remaining"`
}

// BatchMsg reports the collapses performed during one chunk.
type BatchMsg struct {
	Collapsed []CollapsedTile `json:"collapsed"`
	Stats     BatchStats      `json:"stats"`
}

// ProgressDiag is the diagnostic payload of a ProgressMsg.
type ProgressDiag struct {
	Propagations   int `json:"propagations"`
	CellsTouched   int `json:"cellsTouched"`
	OptionsCleared int `json:"optionsCleared"`
	MaxEntropyDrop int `json:"maxEntropyDrop"`
}

// ProgressMsg is advisory-only and may be coalesced or throttled by the
// runner.
type ProgressMsg struct {
	Diag  ProgressDiag `json:"diag"`
	Stats *BatchStats  `json:"stats,omitempty"`
}

// RestartMsg tells the host to discard any in-flight collapse draws.
type RestartMsg struct {
	Attempt int `json:"attempt"`
}

// DoneMsg reports terminal success.
type DoneMsg struct{}

// ErrorMsg reports terminal failure.
type ErrorMsg struct {
	Message string `json:"message"`
}
