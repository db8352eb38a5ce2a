// Package manifest defines the persisted JSON document a viewer reads to
// discover which tiles exist and what each one covers (spec.md §6).
package manifest

import (
	"github.com/google/uuid"

	"github.com/lodforge/pcdlod/internal/pointcloud"
)

// Version is the manifest schema version written to Meta.Version.
const Version = "1.0.0"

// Coordinates is the per-level catalog of emitted cells and their bounding
// boxes: lod -> "x-y-z" -> BoundingBox.
type Coordinates map[uint32]map[string]pointcloud.BoundingBox

// Add registers bbox under lod and key, without overwriting an existing
// entry — mirrors the original's HashMap::entry(...).or_insert, so the
// first box computed for a cell wins if Add is ever called twice for it.
func (c Coordinates) Add(lod uint32, key string, bbox pointcloud.BoundingBox) {
	level, ok := c[lod]
	if !ok {
		level = make(map[string]pointcloud.BoundingBox)
		c[lod] = level
	}
	if _, exists := level[key]; !exists {
		level[key] = bbox
	}
}

// Clone returns a deep-enough copy for a callback snapshot: the per-level
// maps are copied so a later Add cannot mutate a snapshot already handed to
// a callback (spec.md §5: "the manifest is grown monotonically").
func (c Coordinates) Clone() Coordinates {
	out := make(Coordinates, len(c))
	for lod, level := range c {
		lvl := make(map[string]pointcloud.BoundingBox, len(level))
		for k, v := range level {
			lvl[k] = v
		}
		out[lod] = lvl
	}
	return out
}

// Meta is the top-level manifest document.
type Meta struct {
	Version     string      `json:"version"`
	RunID       string      `json:"run_id"`
	LOD         uint32      `json:"lod"`
	Bounds      pointcloud.BoundingBox `json:"bounds"`
	Coordinates Coordinates `json:"coordinates"`
}

// New builds a Meta with a fresh run ID, per spec.md §6's manifest schema
// plus the run correlation ID added in SPEC_FULL.md §4.
func New(lod uint32, bounds pointcloud.BoundingBox, coordinates Coordinates) Meta {
	return Meta{
		Version:     Version,
		RunID:       uuid.NewString(),
		LOD:         lod,
		Bounds:      bounds,
		Coordinates: coordinates,
	}
}
