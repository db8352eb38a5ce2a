package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/pcdlod/internal/pcderrors"
)

func TestReadPointsSkipsInvalidLines(t *testing.T) {
	input := strings.NewReader("1 2 3\nnot a point\n4 5 6 255 0 0\n")
	points, err := ReadPoints(input)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestReadPointsFromFileMissing(t *testing.T) {
	_, err := ReadPointsFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pcderrors.ErrInputNotFound)
}

func TestReadPointsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 0 0\n1 1 1\n"), 0o644))

	points, err := ReadPointsFromFile(path)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}
