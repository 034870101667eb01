// Command generate is a headless CLI driver: it loads a tileset catalog,
// builds an engine over a grid of the requested size, runs it to
// completion or failure, and prints the final grid.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"tileloom/catalog"
	"tileloom/catalogio"
	"tileloom/config"
	"tileloom/engine"
)

const stepBudget = 256

func main() {
	catalogPath := flag.String("catalog", "", "path to a tileset catalog JSON file")
	width := flag.Int("w", config.DefaultGridWidth, "grid width in cells")
	height := flag.Int("h", config.DefaultGridHeight, "grid height in cells")
	seed := flag.Uint("seed", 12345, "PRNG seed")
	maxRestarts := flag.Int("max-restarts", 20, "contradiction restart budget")
	allowRotate := flag.Bool("rotate", false, "allow 90-degree tile rotations when preparing the catalog")
	macro := flag.Bool("macro", true, "enable macro region seeding with default options")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *catalogPath == "" {
		log.Fatal("-catalog is required")
	}

	cat, err := catalogio.Load(*catalogPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load catalog")
	}
	if len(cat.Tiles) == 0 {
		log.WithField("path", *catalogPath).Fatal("catalog is empty after load (check for an archived .bad- sibling)")
	}

	variants := catalog.Prepare(cat.Tiles, *allowRotate)
	log.WithFields(logrus.Fields{
		"tiles":    len(cat.Tiles),
		"variants": len(variants),
		"rotate":   *allowRotate,
	}).Info("catalog prepared")

	opts := engine.DefaultOptions()
	opts.Seed = uint32(*seed)
	opts.MaxRestarts = *maxRestarts
	if !*macro {
		opts.Macro = engine.MacroOptions{}
	}

	eng, err := engine.New(variants, *width, *height, opts)
	if err != nil {
		log.WithError(err).Fatal("engine construction failed")
	}

	log.WithFields(logrus.Fields{"w": *width, "h": *height, "seed": opts.Seed}).Info("generation started")

	var terminalErr string
	for !eng.Terminal() {
		events := eng.Step(stepBudget)
		for _, ev := range events {
			switch e := ev.(type) {
			case engine.RestartEvent:
				log.WithField("attempt", e.Attempt).Warn("restart")
			case engine.ErrorEvent:
				terminalErr = e.Message
			}
		}
	}

	if terminalErr != "" {
		log.WithField("attempts", eng.Attempts()).Error(terminalErr)
		printGrid(eng)
		os.Exit(1)
	}

	log.WithField("attempts", eng.Attempts()).Info("generation finished")
	printGrid(eng)
}

func printGrid(eng *engine.Engine) {
	variants := eng.Variants()
	for y := 0; y < eng.Height(); y++ {
		for x := 0; x < eng.Width(); x++ {
			if x > 0 {
				fmt.Print(" ")
			}
			if v, ok := eng.CollapsedVariantAt(x, y); ok {
				fmt.Print(variants[v].Def.ID)
			} else {
				fmt.Print(".")
			}
		}
		fmt.Println()
	}
}
