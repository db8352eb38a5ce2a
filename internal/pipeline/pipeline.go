// Package pipeline drives the LOD construction loop described in
// SPEC_FULL.md §6.7: build the root map, sample-or-passthrough each level,
// and recurse until no bucket exceeds the per-cell budget.
package pipeline

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lodforge/pcdlod/internal/manifest"
	"github.com/lodforge/pcdlod/internal/octree"
	"github.com/lodforge/pcdlod/internal/pcderrors"
	"github.com/lodforge/pcdlod/internal/pointcloud"
	"github.com/lodforge/pcdlod/internal/sampling"
)

// PerUnit is invoked once per emitted cell, after sampling and bounding-box
// computation. Implementations use it to write image files.
type PerUnit func(ctx context.Context, bbox pointcloud.BoundingBox, points []pointcloud.Point, lod uint32, x, y, z int32) error

// PerLevel is invoked once all cells at a level have been emitted, with a
// manifest snapshot that includes every prior level plus the current one.
type PerLevel func(ctx context.Context, lodPlusOne uint32, bounds pointcloud.BoundingBox, coords manifest.Coordinates) error

// Options configures one pipeline run.
type Options struct {
	// Threshold is the per-cell point budget (spec.md §4.5).
	Threshold int
	// UseParallelSampler selects the partitioned sampler over the serial
	// one for levels beyond the root (spec.md §4.5 step 2: "using the
	// parallel sampler when available").
	UseParallelSampler bool
	// Seed deterministically orders the parallel sampler's partitions.
	Seed uint32
	// RadiusConstant multiplies the sampling-radius formula's denominator;
	// 0 is treated as 1.0 (config.Default()'s value).
	RadiusConstant float64
	// Logger receives one line per completed level and, at debug level,
	// one line per sampler invocation.
	Logger *zap.Logger
}

// Run executes the full pipeline loop over points within bounds, invoking
// perUnit for every emitted cell and perLevel after every completed level.
// It returns the first error either callback produces, wrapped as
// pcderrors.ErrCallbackFailure, or a divide/sampler failure wrapped with a
// short context message.
func Run(ctx context.Context, bounds pointcloud.BoundingBox, points []pointcloud.Point, opts Options, perUnit PerUnit, perLevel PerLevel) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	radiusConstant := opts.RadiusConstant
	if radiusConstant == 0 {
		radiusConstant = 1.0
	}
	maxSize := bounds.MaxSize()
	side := math.Sqrt(float64(opts.Threshold)) * radiusConstant
	radiusForLOD := func(lod uint32) float64 {
		unitSize := maxSize / math.Pow(2, float64(lod))
		return unitSize / side
	}

	coords := make(manifest.Coordinates)

	root := octree.Root(bounds, points)
	rootPts := root.Bucket[octree.Key{}]

	var sampled []pointcloud.Point
	if len(rootPts) <= opts.Threshold {
		sampled = rootPts
	} else {
		logger.Debug("sampling root level", zap.Int("points", len(rootPts)))
		sampled = sampling.Serial(rootPts, radiusForLOD(0))
	}

	bbox := pointcloud.FromPoints(sampled)
	rootKey := octree.Key{}
	coords.Add(0, rootKey.String(), bbox)
	logger.Debug("emitting cell",
		zap.Uint32("lod", 0),
		zap.String("key", rootKey.String()),
		zap.Uint64("key_hash", rootKey.Hash()),
		zap.Int("points", len(sampled)))
	if err := perUnit(ctx, bbox, sampled, 0, 0, 0, 0); err != nil {
		return errors.Wrap(pcderrors.ErrCallbackFailure, err.Error())
	}
	if err := perLevel(ctx, root.LOD+1, bounds, coords.Clone()); err != nil {
		return errors.Wrap(pcderrors.ErrCallbackFailure, err.Error())
	}
	logger.Info("level complete", zap.Uint32("lod", root.LOD))
	if len(rootPts) <= opts.Threshold {
		return nil
	}

	parent := root
	for {
		next, err := parent.Divide(ctx, opts.Threshold)
		if err != nil {
			return errors.Wrap(err, "divide")
		}

		hasOverThreshold := next.AnyOverThreshold(opts.Threshold)
		radius := radiusForLOD(next.LOD)

		for k, pts := range next.Bucket {
			var emitted []pointcloud.Point
			if !hasOverThreshold {
				emitted = pts
			} else {
				logger.Debug("sampling level", zap.Uint32("lod", next.LOD), zap.Int("points", len(pts)))
				if opts.UseParallelSampler {
					emitted, err = sampling.ParallelSample(ctx, opts.Seed, pts, radius)
					if err != nil {
						return errors.Wrap(err, "parallel sample")
					}
				} else {
					emitted = sampling.Serial(pts, radius)
				}
			}

			cellBBox := pointcloud.FromPoints(emitted)
			coords.Add(next.LOD, k.String(), cellBBox)
			logger.Debug("emitting cell",
				zap.Uint32("lod", next.LOD),
				zap.String("key", k.String()),
				zap.Uint64("key_hash", k.Hash()),
				zap.Int("points", len(emitted)))
			if err := perUnit(ctx, cellBBox, emitted, next.LOD, k.X, k.Y, k.Z); err != nil {
				return errors.Wrap(pcderrors.ErrCallbackFailure, err.Error())
			}
		}

		if err := perLevel(ctx, next.LOD+1, bounds, coords.Clone()); err != nil {
			return errors.Wrap(pcderrors.ErrCallbackFailure, err.Error())
		}
		logger.Info("level complete", zap.Uint32("lod", next.LOD))

		if !hasOverThreshold {
			return nil
		}
		parent = next
	}
}
