package hdrstack

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePreviews(t *testing.T) {
	t.Parallel()

	s := NewSeries()
	s.Exposures = []*Exposure{{
		Filename: "/photos/frame.dng",
		Width:    2,
		Height:   2,
		Image:    []float32{-0.5, 0, 0.5, 2.0},
	}}

	dir := t.TempDir()
	require.NoError(t, s.WritePreviews(dir))

	f, err := os.Open(filepath.Join(dir, "frame.png"))
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	// clamped below, clamped above, midpoint rounded
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r>>8)
	r, _, _, _ = img.At(1, 1).RGBA()
	assert.Equal(t, uint32(255), r>>8)
	r, _, _, _ = img.At(0, 1).RGBA()
	assert.Equal(t, uint32(128), r>>8)
}
