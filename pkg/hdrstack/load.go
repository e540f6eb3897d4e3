package hdrstack

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/aknutsen/hdrstack/pkg/rawdec"
)

// DecodeFunc turns one raw file's bytes into a decoded sensor image.
type DecodeFunc func(data []byte, table *rawdec.Table) (*rawdec.Image, error)

// Load decodes every exposure's raw data and normalizes it into the
// exposure's float buffer. Frames are processed by a bounded worker
// pool; each worker reads its own file and writes only its own
// exposure, and the first failure aborts the batch. The series
// dimensions are taken from the first exposure and are assumed, not
// verified, to hold for all frames.
//
// A nil decode uses the registered rawdec decoders. The calibration
// table is read-only and shared across workers.
func (s *Series) Load(table *rawdec.Table, decode DecodeFunc) error {
	if decode == nil {
		decode = rawdec.Decode
	}

	klog.Infof("loading raw image data from %d %s ...", len(s.Exposures), plural(len(s.Exposures), "file"))

	var done atomic.Int32
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, exp := range s.Exposures {
		exp := exp
		g.Go(func() error {
			data, err := os.ReadFile(exp.Filename)
			if err != nil {
				return fmt.Errorf("%q: %v: %w", exp.Filename, err, ErrFileAccess)
			}

			raw, err := decode(data, table)
			if err != nil {
				return fmt.Errorf("%q: %v: %w", exp.Filename, err, ErrDecode)
			}

			if raw.SubsamplingX != 1 || raw.SubsamplingY != 1 {
				return fmt.Errorf("%q: subsampled RAW images are currently not supported: %w",
					exp.Filename, ErrUnsupportedFormat)
			}
			if raw.SampleType != rawdec.SampleUint16 {
				return fmt.Errorf("%q: only RAW data in 16-bit format is currently supported: %w",
					exp.Filename, ErrUnsupportedFormat)
			}
			if !raw.CFA {
				return fmt.Errorf("%q: only sensors with a color filter array are currently supported: %w",
					exp.Filename, ErrUnsupportedFormat)
			}

			exp.normalize(raw)

			n := done.Add(1)
			klog.Infof("decoded %q (%d/%d)", exp.Filename, n, len(s.Exposures))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.Width = s.Exposures[0].Width
	s.Height = s.Exposures[0].Height

	mib := float64(s.Width*s.Height*4*len(s.Exposures)) / (1024 * 1024)
	klog.Infof("done (%dx%d, using %.1f MiB of memory)", s.Width, s.Height, mib)
	return nil
}

// normalize converts raw sensor samples to linear floats, mapping the
// camera's black level to 0 and its white point to 1. The decoder's row
// pitch is consumed here; the output buffer is packed row-major.
func (e *Exposure) normalize(raw *rawdec.Image) {
	black := float32(raw.BlackLevel)
	span := float32(raw.WhitePoint - raw.BlackLevel)

	img := make([]float32, raw.Width*raw.Height)
	for y := 0; y < raw.Height; y++ {
		src := raw.Data[y*raw.Pitch : y*raw.Pitch+raw.Width]
		dst := img[y*raw.Width : (y+1)*raw.Width]
		for x, v := range src {
			dst[x] = (float32(v) - black) / span
		}
	}

	e.Width = raw.Width
	e.Height = raw.Height
	e.Image = img
}
