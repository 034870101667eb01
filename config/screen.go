// Package config holds the default grid and viewer layout constants shared
// by cmd/generate and cmd/viewer, so a bare invocation of either has a
// reasonable size without flags.
package config

const (
	// CellPixels is the viewer's flat-rect edge length per grid cell.
	CellPixels = 12

	// DefaultGridWidth, DefaultGridHeight size a generation run when the
	// host doesn't override them via flags.
	DefaultGridWidth  = 48
	DefaultGridHeight = 32
)

// DefaultWindowSize returns the viewer window dimensions in pixels for a
// grid of the given size.
func DefaultWindowSize(gridW, gridH int) (width, height int) {
	return gridW * CellPixels, gridH * CellPixels
}
