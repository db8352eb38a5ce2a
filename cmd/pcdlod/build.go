package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lodforge/pcdlod/internal/config"
	"github.com/lodforge/pcdlod/internal/encode"
	"github.com/lodforge/pcdlod/internal/ingest"
	"github.com/lodforge/pcdlod/internal/manifest"
	"github.com/lodforge/pcdlod/internal/pcderrors"
	"github.com/lodforge/pcdlod/internal/pipeline"
	"github.com/lodforge/pcdlod/internal/pointcloud"
)

type buildFlags struct {
	inputFile        string
	outputDirectory  string
	globalShift      int
	cloudComparePath string
	configPath       string
	threshold        int
	parallel         bool
	seed             uint32
	encode32Bit      bool
	encodeQuad       bool
	quadAlphaColor   bool
	verbose          bool
}

func newBuildCmd() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a LOD tile set and manifest from a whitespace-text point cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.inputFile, "input-file", "", "path to the whitespace-text point stream (required)")
	flags.StringVar(&f.outputDirectory, "output-directory", "", "directory to write tiles and meta.json into (required)")
	flags.IntVar(&f.globalShift, "global-shift", 0, "0 or 1; accepted but not used: build reads an already-converted text file")
	flags.StringVar(&f.cloudComparePath, "cloud-compare-path", "", "external converter's executable path; accepted but not used: build does not run the converter")
	flags.StringVar(&f.configPath, "config", "", "optional pcdlod.toml overriding the point budget and sampler options")
	flags.IntVar(&f.threshold, "threshold", 0, "per-cell point budget; 0 uses the config/default (16384)")
	flags.BoolVar(&f.parallel, "parallel", true, "use the partitioned parallel sampler below the root level")
	flags.Uint32Var(&f.seed, "seed", 1, "deterministic seed for the parallel sampler's partition order")
	flags.BoolVar(&f.encode32Bit, "encode-32bit", false, "also write 32-bit float position tiles")
	flags.BoolVar(&f.encodeQuad, "encode-quad", false, "also write 8-bit quad-encoded position tiles")
	flags.BoolVar(&f.quadAlphaColor, "quad-alpha-color", false, "pack color into the quad image's alpha channel")
	flags.BoolVar(&f.verbose, "verbose", false, "enable debug logging")

	_ = cmd.MarkFlagRequired("input-file")
	_ = cmd.MarkFlagRequired("output-directory")

	return cmd
}

func runBuild(cmd *cobra.Command, f buildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(f.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load(f.configPath)
	if err != nil {
		printErr(cmd, err)
		return err
	}
	if f.threshold > 0 {
		cfg.Threshold = f.threshold
	}
	if f.quadAlphaColor {
		cfg.QuadAlphaAsColor = true
	}

	if err := ensureOutputDirectory(f.outputDirectory); err != nil {
		printErr(cmd, err)
		return err
	}

	points, err := ingest.ReadPointsFromFile(f.inputFile)
	if err != nil {
		printErr(cmd, err)
		return err
	}
	bounds := pointcloud.FromPoints(points)

	logger.Info("ingested point cloud",
		zap.Int("points", len(points)),
		zap.Int("threshold", cfg.Threshold))

	opts := pipeline.Options{
		Threshold:          cfg.Threshold,
		UseParallelSampler: f.parallel,
		Seed:               f.seed,
		RadiusConstant:     cfg.RadiusConstant,
		Logger:             logger,
	}

	writer := tileWriter{
		outDir:      f.outputDirectory,
		cfg:         cfg,
		encode32Bit: f.encode32Bit,
		encodeQuad:  f.encodeQuad,
	}

	perUnit := func(_ context.Context, bbox pointcloud.BoundingBox, pts []pointcloud.Point, lod uint32, x, y, z int32) error {
		return writer.write(bbox, pts, lod, x, y, z)
	}

	perLevel := func(_ context.Context, lodPlusOne uint32, bounds pointcloud.BoundingBox, coords manifest.Coordinates) error {
		return writeManifest(f.outputDirectory, lodPlusOne, bounds, coords)
	}

	if err := pipeline.Run(ctx, bounds, points, opts, perUnit, perLevel); err != nil {
		printErr(cmd, err)
		return err
	}

	logger.Info("build complete")
	return nil
}

// printErr satisfies spec.md §6: "the error message is printed once to
// standard output" — regardless of how cobra itself would otherwise print
// a RunE error (to stderr, possibly with usage text).
func printErr(cmd *cobra.Command, err error) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	fmt.Fprintln(cmd.OutOrStdout(), err.Error())
}

func ensureOutputDirectory(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(pcderrors.ErrOutputNotADirectory, err.Error())
		}
		return nil
	case err != nil:
		return errors.Wrap(pcderrors.ErrOutputNotADirectory, err.Error())
	case !info.IsDir():
		return errors.Wrapf(pcderrors.ErrOutputNotADirectory, "%s", dir)
	default:
		return nil
	}
}

// tileWriter renders one cell's sampled points into the <lod>/<x>-<y>-<z>
// tile layout described by spec.md §6.
type tileWriter struct {
	outDir      string
	cfg         config.Config
	encode32Bit bool
	encodeQuad  bool
}

func (w tileWriter) write(bbox pointcloud.BoundingBox, pts []pointcloud.Point, lod uint32, x, y, z int32) error {
	levelDir := filepath.Join(w.outDir, fmt.Sprintf("%d", lod))
	if err := os.MkdirAll(levelDir, 0o755); err != nil {
		return err
	}
	base := fmt.Sprintf("%d-%d-%d", x, y, z)

	enc := encode.New(pts, bbox)

	position, col := enc.Encode8Bit()
	if err := writePNG(filepath.Join(levelDir, base+".png"), position); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(levelDir, base+"-color.png"), col); err != nil {
		return err
	}

	if w.encodeQuad {
		quad := enc.Encode8BitQuad(w.cfg.QuadAlphaAsColor)
		if err := writePNG(filepath.Join(levelDir, base+"-quad.png"), quad); err != nil {
			return err
		}
	}

	if w.encode32Bit {
		position32, col32 := enc.Encode32Bit()
		if err := writeRaw32(filepath.Join(levelDir, base+"-32.bin"), position32); err != nil {
			return err
		}
		if err := writePNG(filepath.Join(levelDir, base+"-32-color.png"), col32); err != nil {
			return err
		}
	}

	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// writeRaw32 persists a 32-bit float position image as raw little-endian
// float32 values, row-major with R,G,B,A interleaved per pixel: image/png has
// no 32-bit-float encoder, so this tile is a
// flat binary blob the viewer reads directly rather than decodes as a PNG.
func writeRaw32(path string, img *encode.Rgba32FImage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, len(img.Pix)*4)
	for i, v := range img.Pix {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	_, err = f.Write(buf)
	return err
}

func writeManifest(outDir string, lod uint32, bounds pointcloud.BoundingBox, coords manifest.Coordinates) error {
	meta := manifest.New(lod, bounds, coords)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "meta.json"), data, 0o644)
}
