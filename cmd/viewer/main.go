// Command viewer is a thin ebiten-based observer host: it drives a
// tileloom engine on a background execution context through a
// runner.Runner and paints each collapsed cell a flat color. It has no
// camera, no zoom, and no editing controls — it exists to give the
// host<->engine protocol a real second execution context to talk to.
package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sirupsen/logrus"

	"tileloom/catalog"
	"tileloom/catalogio"
	"tileloom/config"
	"tileloom/runner"
)

const cellPixels = config.CellPixels

var (
	undecidedColor = color.RGBA{60, 60, 60, 255}
	errorColor     = color.RGBA{180, 40, 40, 255}
)

// viewerGame implements ebiten.Game. It owns no engine state directly: all
// generation state lives behind the runner and is mirrored into cellTile
// as BatchMsg values arrive.
type viewerGame struct {
	r *runner.Runner

	gridW, gridH int
	cellTile     []int // -1 until collapsed
	palette      map[int]color.RGBA
	ids          []string

	done   bool
	failed string
}

func newViewerGame(r *runner.Runner, gridW, gridH int, ids []string) *viewerGame {
	g := &viewerGame{
		r:        r,
		gridW:    gridW,
		gridH:    gridH,
		cellTile: make([]int, gridW*gridH),
		palette:  make(map[int]color.RGBA),
		ids:      ids,
	}
	for i := range g.cellTile {
		g.cellTile[i] = -1
	}
	for i, id := range ids {
		g.palette[i] = colorForID(id)
	}
	return g
}

// colorForID derives a stable flat color from a tile identifier, so the
// same catalog always renders with the same palette regardless of run
// order.
func colorForID(id string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum32()
	return color.RGBA{
		R: uint8(sum),
		G: uint8(sum >> 8),
		B: uint8(sum >> 16),
		A: 255,
	}
}

func (g *viewerGame) Update() error {
	for {
		select {
		case msg := <-g.r.Out():
			g.apply(msg)
		default:
			return nil
		}
	}
}

func (g *viewerGame) apply(msg any) {
	switch m := msg.(type) {
	case runner.BatchMsg:
		for _, c := range m.Collapsed {
			if c.Cell >= 0 && c.Cell < len(g.cellTile) {
				g.cellTile[c.Cell] = c.Tile
			}
		}
	case runner.RestartMsg:
		for i := range g.cellTile {
			g.cellTile[i] = -1
		}
	case runner.DoneMsg:
		g.done = true
	case runner.ErrorMsg:
		g.done = true
		g.failed = m.Message
	}
}

func (g *viewerGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 20, 255})

	for y := 0; y < g.gridH; y++ {
		for x := 0; x < g.gridW; x++ {
			tile := g.cellTile[y*g.gridW+x]
			clr := undecidedColor
			if tile >= 0 {
				clr = g.palette[tile]
			}
			vector.DrawFilledRect(screen,
				float32(x*cellPixels), float32(y*cellPixels),
				float32(cellPixels-1), float32(cellPixels-1),
				clr, false)
		}
	}

	status := "running"
	if g.done {
		status = "done"
	}
	if g.failed != "" {
		status = "error: " + g.failed
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("tileloom viewer - %s", status))
}

func (g *viewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.gridW * cellPixels, g.gridH * cellPixels
}

func main() {
	catalogPath := flag.String("catalog", "", "path to a tileset catalog JSON file")
	width := flag.Int("w", config.DefaultGridWidth, "grid width in cells")
	height := flag.Int("h", config.DefaultGridHeight, "grid height in cells")
	seed := flag.Uint("seed", 12345, "PRNG seed")
	maxRestarts := flag.Int("max-restarts", 20, "contradiction restart budget")
	allowRotate := flag.Bool("rotate", false, "allow 90-degree tile rotations when preparing the catalog")
	flag.Parse()

	if *catalogPath == "" {
		log.Fatal("-catalog is required")
	}

	logger := logrus.New()
	cat, err := catalogio.Load(*catalogPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load catalog")
	}
	if len(cat.Tiles) == 0 {
		logger.WithField("path", *catalogPath).Fatal("catalog is empty after load")
	}

	variants := catalog.Prepare(cat.Tiles, *allowRotate)
	ids := make([]string, len(variants))
	for i, v := range variants {
		ids[i] = v.Def.ID
	}

	r := runner.New(logger)
	r.Handle(runner.InitCmd{
		Tiles: cat.Tiles,
		GridW: *width,
		GridH: *height,
		Opts: runner.InitOpts{
			Seed:        uint32(*seed),
			MaxRestarts: *maxRestarts,
			AllowRotate: *allowRotate,
			MacroGrass: &runner.MacroOpts{
				Continents:    3,
				RadiusMinFrac: 0.08,
				RadiusMaxFrac: 0.22,
				GrassChar:     "g",
				CoreMinCount:  2,
				RimMinCount:   1,
			},
		},
	})
	r.Handle(runner.RunCmd{})

	game := newViewerGame(r, *width, *height, ids)
	ebiten.SetWindowSize(config.DefaultWindowSize(*width, *height))
	ebiten.SetWindowTitle("tileloom viewer")
	if err := ebiten.RunGame(game); err != nil {
		logger.WithError(err).Fatal("viewer exited with error")
	}
}
