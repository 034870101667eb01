// Package catalogio loads and saves the persisted tileset catalog format.
// It is a thin shell around the engine: the engine never imports it, it
// only ever consumes an already-prepared []catalog.TileDef.
package catalogio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tileloom/catalog"
)

// catalogVersion is the only meta.version this loader accepts.
const catalogVersion = 2

// defaultTileSize is used when meta.tileSize is zero or absent.
const defaultTileSize = 16

// fileMeta mirrors the "meta" object of the persisted format.
type fileMeta struct {
	Version  int `json:"version"`
	TileSize int `json:"tileSize"`
}

// fileEdgeRule mirrors one entry of an edges.{n,e,s,w} array.
type fileEdgeRule struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// fileEdges mirrors the "edges" object of a tile entry.
type fileEdges struct {
	N []fileEdgeRule `json:"n"`
	E []fileEdgeRule `json:"e"`
	S []fileEdgeRule `json:"s"`
	W []fileEdgeRule `json:"w"`
}

// fileTile mirrors one entry of the "tiles" array.
type fileTile struct {
	ID     string    `json:"id"`
	File   string    `json:"file"`
	Weight float64   `json:"weight"`
	Edges  fileEdges `json:"edges"`
}

// fileCatalog mirrors the top-level persisted document.
type fileCatalog struct {
	Meta  fileMeta   `json:"meta"`
	Tiles []fileTile `json:"tiles"`
}

// Catalog is the in-memory result of a Load: the tile definitions plus the
// tile size the catalog was authored against.
type Catalog struct {
	TileSize int
	Tiles    []catalog.TileDef
}

// Load reads and parses the catalog JSON file at path.
//
// Catalog-format errors (wrong version, unreadable/malformed JSON) never
// surface as a returned error: Load archives the offending
// file alongside itself with a timestamped suffix and returns an empty
// Catalog and a nil error. Only a failure to perform the archive itself
// (e.g. a read-only directory) is returned as an error.
func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Catalog{TileSize: defaultTileSize}, nil
		}
		return archiveAndEmpty(path, err)
	}

	var fc fileCatalog
	if err := json.Unmarshal(raw, &fc); err != nil {
		return archiveAndEmpty(path, err)
	}
	if fc.Meta.Version != catalogVersion {
		return archiveAndEmpty(path, fmt.Errorf("unsupported catalog version %d", fc.Meta.Version))
	}

	tileSize := fc.Meta.TileSize
	if tileSize <= 0 {
		tileSize = defaultTileSize
	}

	defs := make([]catalog.TileDef, 0, len(fc.Tiles))
	for _, t := range fc.Tiles {
		if strings.TrimSpace(t.ID) == "" {
			continue
		}
		def := catalog.TileDef{
			ID:     t.ID,
			File:   strings.ReplaceAll(t.File, `\`, "/"),
			Weight: t.Weight,
			Edges: [4][]catalog.EdgeRule{
				toEdgeRules(t.Edges.N),
				toEdgeRules(t.Edges.E),
				toEdgeRules(t.Edges.S),
				toEdgeRules(t.Edges.W),
			},
		}
		defs = append(defs, def.Normalize())
	}

	return Catalog{TileSize: tileSize, Tiles: defs}, nil
}

// Save writes cat to path in the persisted catalog format.
func Save(path string, cat Catalog) error {
	tileSize := cat.TileSize
	if tileSize <= 0 {
		tileSize = defaultTileSize
	}

	fc := fileCatalog{
		Meta:  fileMeta{Version: catalogVersion, TileSize: tileSize},
		Tiles: make([]fileTile, len(cat.Tiles)),
	}
	for i, def := range cat.Tiles {
		fc.Tiles[i] = fileTile{
			ID:     def.ID,
			File:   def.File,
			Weight: def.Weight,
			Edges: fileEdges{
				N: toFileRules(def.Edges[catalog.SideN]),
				E: toFileRules(def.Edges[catalog.SideE]),
				S: toFileRules(def.Edges[catalog.SideS]),
				W: toFileRules(def.Edges[catalog.SideW]),
			},
		}
	}

	raw, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("catalogio: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("catalogio: write %s: %w", path, err)
	}
	return nil
}

// archiveAndEmpty renames the bad file at path to a timestamped sibling
// and returns an empty catalog. cause appears only in the error returned
// when the rename itself fails; otherwise it is discarded.
func archiveAndEmpty(path string, cause error) (Catalog, error) {
	archivePath := fmt.Sprintf("%s.bad-%d%s",
		strings.TrimSuffix(path, filepath.Ext(path)),
		archiveTimestamp(),
		filepath.Ext(path))

	if _, statErr := os.Stat(path); statErr == nil {
		if err := os.Rename(path, archivePath); err != nil {
			return Catalog{}, fmt.Errorf("catalogio: archive %s after %v: %w", path, cause, err)
		}
	}

	return Catalog{TileSize: defaultTileSize}, nil
}

func archiveTimestamp() int64 {
	return time.Now().UnixNano()
}

func toEdgeRules(rules []fileEdgeRule) []catalog.EdgeRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]catalog.EdgeRule, len(rules))
	for i, r := range rules {
		out[i] = catalog.EdgeRule{Key: r.Key, Weight: r.Weight}
	}
	return out
}

func toFileRules(rules []catalog.EdgeRule) []fileEdgeRule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]fileEdgeRule, len(rules))
	for i, r := range rules {
		out[i] = fileEdgeRule{Key: r.Key, Weight: r.Weight}
	}
	return out
}
