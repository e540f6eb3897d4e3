package hdrstack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("raw"), 0o600))
}

func TestAddZeroBased(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, n := range []string{"img0.dng", "img1.dng", "img2.dng"} {
		touch(t, filepath.Join(dir, n))
	}

	s := NewSeries()
	s.Add(filepath.Join(dir, "img%d.dng"))

	require.Len(t, s.Exposures, 3)
	assert.Equal(t, filepath.Join(dir, "img0.dng"), s.Exposures[0].Filename)
	assert.Equal(t, filepath.Join(dir, "img2.dng"), s.Exposures[2].Filename)
}

func TestAddOneBased(t *testing.T) {
	t.Parallel()

	// Some cameras start bracket numbering at 1.
	dir := t.TempDir()
	for _, n := range []string{"img1.dng", "img2.dng", "img3.dng"} {
		touch(t, filepath.Join(dir, n))
	}

	s := NewSeries()
	s.Add(filepath.Join(dir, "img%d.dng"))

	require.Len(t, s.Exposures, 3)
	assert.Equal(t, filepath.Join(dir, "img1.dng"), s.Exposures[0].Filename)
}

func TestAddSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "single.dng")
	touch(t, p)

	s := NewSeries()
	s.Add(p)

	require.Len(t, s.Exposures, 1)
	assert.Equal(t, p, s.Exposures[0].Filename)
}

func TestAddNothingFound(t *testing.T) {
	t.Parallel()

	s := NewSeries()
	s.Add(filepath.Join(t.TempDir(), "img%d.dng"))
	assert.Empty(t, s.Exposures)
}

func TestAddFilesMissing(t *testing.T) {
	t.Parallel()

	s := NewSeries()
	err := s.AddFiles(filepath.Join(t.TempDir(), "nope.dng"))
	assert.ErrorIs(t, err, ErrFileAccess)
}

func TestFindRawFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.NEF"))
	touch(t, filepath.Join(dir, "a.dng"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden", "c.dng"))

	files, err := FindRawFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.dng"),
		filepath.Join(dir, "b.NEF"),
	}, files)
}

func TestScanDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.dng"))
	touch(t, filepath.Join(dir, "b.dng"))

	s := NewSeries()
	require.NoError(t, s.ScanDir(dir))
	assert.Len(t, s.Exposures, 2)
}
