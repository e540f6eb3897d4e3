package hdrstack

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectKth(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	t.Run("permutation", func(t *testing.T) {
		t.Parallel()

		buf := make([]float32, 2000)
		for i := range buf {
			buf[i] = float32(i)
		}
		rng := rand.New(rand.NewSource(2))
		rng.Shuffle(len(buf), func(i, j int) { buf[i], buf[j] = buf[j], buf[i] })

		assert.Equal(t, float32(1998), selectKth(buf, 1998))
	})

	t.Run("matches full sort", func(t *testing.T) {
		t.Parallel()

		buf := make([]float32, 1001)
		for i := range buf {
			buf[i] = rng.Float32()
		}
		want := make([]float32, len(buf))
		copy(want, buf)
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

		for _, k := range []int{0, 1, 500, 999, 1000} {
			work := make([]float32, len(buf))
			copy(work, buf)
			assert.Equal(t, want[k], selectKth(work, k), "rank %d", k)
		}
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, float32(7), selectKth([]float32{7}, 0))

		equal := []float32{3, 3, 3, 3, 3}
		assert.Equal(t, float32(3), selectKth(equal, 4))

		asc := []float32{1, 2, 3, 4, 5, 6}
		assert.Equal(t, float32(5), selectKth(asc, 4))

		desc := []float32{6, 5, 4, 3, 2, 1}
		assert.Equal(t, float32(2), selectKth(desc, 1))
	})
}

func TestEstimateSaturationRank(t *testing.T) {
	t.Parallel()

	const n = 2000
	img := make([]float32, n)
	for i := range img {
		img[i] = float32(i) / n
	}
	rng := rand.New(rand.NewSource(3))
	rng.Shuffle(n, func(i, j int) { img[i], img[j] = img[j], img[i] })

	orig := make([]float32, n)
	copy(orig, img)

	s := NewSeries()
	s.Exposures = []*Exposure{{Filename: "a.dng", Width: 50, Height: 40, Image: img}}

	sat := s.EstimateSaturation()

	// rank floor(2000*0.999) = 1998 of 0/n .. 1999/n
	assert.Equal(t, float32(1998)/n, sat)
	assert.Equal(t, sat, s.Saturation)
	require.Equal(t, orig, img, "the frame's buffer must not be mutated")
}

func TestEstimateSaturationEmpty(t *testing.T) {
	t.Parallel()

	s := NewSeries()
	assert.Equal(t, float32(0), s.EstimateSaturation())
}
