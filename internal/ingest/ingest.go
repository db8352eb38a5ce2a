// Package ingest is the thin shim around the external point-cloud format
// converter (spec.md §1: "out of scope... the core receives a stream of
// parsed points"). It does not attempt to read PCD/LAS/PLY/etc. itself —
// that conversion is the external collaborator's job — it only reads the
// whitespace-text stream the converter produces and, optionally, shells
// out to invoke that converter first.
package ingest

import (
	"bufio"
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/lodforge/pcdlod/internal/pcderrors"
	"github.com/lodforge/pcdlod/internal/pointcloud"
)

// ReadPoints reads whitespace-delimited point records from r, skipping any
// line that fails to parse (spec.md §7: InvalidPointFormat is recovered
// locally).
func ReadPoints(r io.Reader) ([]pointcloud.Point, error) {
	var points []pointcloud.Point
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		p, err := pointcloud.ParsePoint(scanner.Text())
		if err != nil {
			continue
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(pcderrors.ErrIngesterFailure, err.Error())
	}
	return points, nil
}

// ReadPointsFromFile opens path and parses every point it contains.
func ReadPointsFromFile(path string) ([]pointcloud.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(pcderrors.ErrInputNotFound, "%s", path)
		}
		return nil, errors.Wrap(pcderrors.ErrIngesterFailure, err.Error())
	}
	defer f.Close()
	return ReadPoints(f)
}

// Converter wraps the external command-line format converter (e.g.
// CloudCompare). Neither the pipeline core nor the pcdlod build command
// calls it; build reads an input that is already plain text.
type Converter struct {
	// ExecPath overrides the default executable name, which is resolved
	// through PATH.
	ExecPath string
}

// Convert runs the converter against inputPath, writing the whitespace
// text form to outputPath. dropGlobalShift controls whether the
// converter's coordinate-accuracy global shift is kept (spec.md §6's
// --global-shift flag) or discarded in the output.
func (c Converter) Convert(inputPath, outputPath string, dropGlobalShift bool) error {
	args := []string{"-SILENT", "-AUTO_SAVE", "OFF", "-O", "-GLOBAL_SHIFT", "AUTO", inputPath,
		"-C_EXPORT_FMT", "ASC", "-SEP", "SPACE"}
	if dropGlobalShift {
		args = append(args, "-DROP_GLOBAL_SHIFT")
	}
	args = append(args, "-MERGE_CLOUDS", "-SAVE_CLOUDS", "FILE", outputPath)

	cmd := exec.Command(c.execPath(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(pcderrors.ErrIngesterFailure, "%s: %s", err, out)
	}
	return nil
}

func (c Converter) execPath() string {
	if c.ExecPath != "" {
		return c.ExecPath
	}
	return defaultConverterPath()
}
